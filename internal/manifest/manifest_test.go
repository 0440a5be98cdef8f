package manifest

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ordo/internal/builder"
	"github.com/roach88/ordo/internal/listener"
	"github.com/roach88/ordo/internal/order"
)

const usersCUE = `
package test

listener: audit: {
	type:     "user.created"
	function: "audit.Log"
	priority: -10
}

listener: "mailer-send": {
	type:    "user.created"
	service: "mailer"
	method:  "Send"
	before:  "audit"
}

listener: metrics: {
	id:       "Metrics::count"
	type:     "user.created"
	class:    "Metrics"
	method:   "count"
	priority: 5
}
`

const usersYAML = `listeners:
  - id: audit
    type: user.created
    function: audit.Log
  - type: user.created
    service: mailer
    method: Send
    after: audit
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newBuilder() *builder.Builder {
	return builder.New(builder.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "users.cue", usersCUE)

	decls, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, decls, 3)

	assert.Equal(t, "audit", decls[0].ID)
	assert.Equal(t, "audit.Log", decls[0].Function)
	assert.Equal(t, -10, decls[0].Priority)

	assert.Equal(t, "mailer-send", decls[1].ID, "label is the default id")
	assert.Equal(t, "audit", decls[1].Before)

	assert.Equal(t, "Metrics::count", decls[2].ID, "explicit id wins over the label")
	assert.Equal(t, 5, decls[2].Priority)

	assert.True(t, decls[0].Pos.IsValid())
	assert.Equal(t, "users.cue", filepath.Base(decls[0].Pos.File))
}

func TestLoadDir_Errors(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, IsDeclError(err))

	empty := t.TempDir()
	_, err = LoadDir(empty)
	assert.ErrorContains(t, err, "no CUE files found")

	tests := []struct {
		name string
		src  string
	}{
		{"unknown field", "package test\nlistener: typo: {type: \"t\", function: \"f\", prority: 3}\n"},
		{"missing type", "package test\nlistener: untyped: {function: \"f\"}\n"},
		{"wrong kind", "package test\nlistener: bad: {type: \"t\", function: \"f\", priority: \"high\"}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "bad.cue", tt.src)
			_, err := LoadDir(dir)
			require.Error(t, err)
			var de *DeclError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, "cue", de.Field)
		})
	}

	dir := t.TempDir()
	writeFile(t, dir, "syntax.cue", "package test\nlistener: {\n")
	_, err = LoadDir(dir)
	assert.True(t, IsDeclError(err))
}

func TestLoadDir_NoListeners(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.cue", "package test\nother: 1\n")
	decls, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, decls)
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "listeners.yaml", usersYAML)

	decls, err := LoadYAMLFile(path)
	require.NoError(t, err)
	require.Len(t, decls, 2)

	assert.Equal(t, Decl{ID: "audit", Type: "user.created", Function: "audit.Log", Pos: Position{File: path, Line: 2, Column: 5}}, decls[0])
	assert.Equal(t, "", decls[1].ID)
	assert.Equal(t, "audit", decls[1].After)
	assert.Equal(t, 5, decls[1].Pos.Line)
}

func TestParseYAML_Errors(t *testing.T) {
	_, err := ParseYAML("bad.yaml", []byte("listeners:\n  - type: t\n    prio: 3\n"))
	assert.True(t, IsDeclError(err))
	assert.ErrorContains(t, err, "prio")

	_, err = ParseYAML("bad.yaml", []byte("listeners: [\n"))
	assert.True(t, IsDeclError(err))

	_, err = LoadYAMLFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, IsDeclError(err))
}

func TestLoad_DispatchesOnPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "users.cue", usersCUE)
	decls, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, decls, 3)

	yamlPath := writeFile(t, t.TempDir(), "listeners.yml", usersYAML)
	decls, err = Load(yamlPath)
	require.NoError(t, err)
	assert.Len(t, decls, 2)

	_, err = Load(writeFile(t, t.TempDir(), "listeners.toml", ""))
	assert.ErrorContains(t, err, "unsupported manifest")
}

func TestDecl_Target(t *testing.T) {
	tests := []struct {
		name    string
		decl    Decl
		want    listener.Target
		wantErr string
	}{
		{"function", Decl{Function: "f"}, listener.Function{Name: "f"}, ""},
		{"static", Decl{Class: "C", Method: "m"}, listener.StaticMethod{Class: "C", Method: "m"}, ""},
		{"service", Decl{Service: "s", Method: "m"}, listener.ServiceProxy{Service: "s", Method: "m"}, ""},
		{"none", Decl{}, nil, "one of function, class or service is required"},
		{"function plus method", Decl{Function: "f", Method: "m"}, nil, "cannot be combined"},
		{"class and service", Decl{Class: "C", Service: "s", Method: "m"}, nil, "mutually exclusive"},
		{"class without method", Decl{Class: "C"}, nil, "needs a method"},
		{"service without method", Decl{Service: "s"}, nil, "needs a method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.decl.Target()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecl_Validate(t *testing.T) {
	assert.ErrorContains(t, Decl{Function: "f"}.Validate(), "type is required")
	assert.ErrorContains(t, Decl{Type: "t", Function: "f", Before: "a", After: "b"}.Validate(), "mutually exclusive")
	assert.NoError(t, Decl{Type: "t", Function: "f"}.Validate())

	err := Decl{ID: "x", Pos: Position{File: "a.cue", Line: 3, Column: 2}}.Validate()
	assert.EqualError(t, err, "a.cue:3:2: type: listener x: type is required")
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "users.cue", usersCUE)
	decls, err := LoadDir(dir)
	require.NoError(t, err)

	b := newBuilder()
	require.NoError(t, Apply(b, decls))

	regs, err := b.Registrations()
	require.NoError(t, err)
	var ids []string
	for _, r := range regs {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"Metrics::count", "mailer-send", "audit"}, ids)
}

func TestApply_DefaultIDsFromTargets(t *testing.T) {
	decls, err := ParseYAML("l.yaml", []byte(usersYAML))
	require.NoError(t, err)

	b := newBuilder()
	require.NoError(t, Apply(b, decls))
	regs, err := b.Registrations()
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "audit", regs[0].ID)
	assert.Equal(t, "mailer-Send", regs[1].ID)
}

func TestApply_ReportsEveryFailure(t *testing.T) {
	decls := []Decl{
		{ID: "a", Type: "t", Function: "f"},
		{ID: "a", Type: "t", Function: "g", Pos: Position{File: "m.yaml", Line: 4, Column: 5}},
		{ID: "untyped", Function: "h"},
		{ID: "ok", Type: "t", Function: "i"},
	}
	b := newBuilder()
	err := Apply(b, decls)
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	require.Len(t, joined.Unwrap(), 2)

	var de *DeclError
	require.True(t, errors.As(joined.Unwrap()[0], &de))
	assert.Equal(t, 4, de.Pos.Line)
	assert.True(t, order.IsDuplicateError(err))

	assert.Equal(t, 2, b.Len(), "valid declarations are still applied")
}

func TestLoadDir_ReportsEveryInvalidDeclaration(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mixed.cue", `package test

listener: good: {type: "t", function: "f"}
listener: bad1: {function: "f"}
listener: bad2: {type: "t", function: "f", extra: true}
`)

	decls, err := LoadDir(dir)
	require.Error(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "good", decls[0].ID)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	errs := joined.Unwrap()
	require.Len(t, errs, 2)

	var de *DeclError
	require.True(t, errors.As(errs[0], &de))
	assert.Equal(t, "bad1", de.ID)
	require.True(t, errors.As(errs[1], &de))
	assert.Equal(t, "bad2", de.ID)
}
