package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/spf13/cobra"
)

var (
	usersDir     = filepath.Join("testdata", "manifests", "users")
	danglingYAML = filepath.Join("testdata", "manifests", "dangling.yaml")
	invalidYAML  = filepath.Join("testdata", "manifests", "invalid.yaml")
	cycleYAML    = filepath.Join("testdata", "manifests", "cycle.yaml")
)

// execute runs cmd with args and returns stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// assertGolden compares output against testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/cli -update
func assertGolden(t *testing.T, name, output string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(output))
}
