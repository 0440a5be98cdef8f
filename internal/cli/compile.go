package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/ordo/internal/builder"
	"github.com/roach88/ordo/internal/ir"
	"github.com/roach88/ordo/internal/listener"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path, .json or .yaml
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <manifest>",
		Short: "Compile a listener manifest to a registration set",
		Long: `Compile a listener manifest (a CUE package directory or a YAML file)
into an ordered registration set.

The set lists every listener in resolved order with a content digest.
Use --output to write it as JSON (.json) or YAML (.yaml, .yml).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // errors are reported by the formatter
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (.json|.yaml)")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.Verbose, formatter.GetErrWriter())

	result, err := LoadManifests(path, logger)
	if err != nil {
		return formatter.Abort(loadErrorCode(err), err)
	}
	formatter.VerboseLog("Loaded %d declaration(s) from %s", len(result.Decls), path)

	if len(result.Issues) > 0 {
		return outputCompileIssues(formatter, result.Issues)
	}

	set, err := result.Builder.Compile()
	if err != nil {
		return outputCompileIssues(formatter, []Issue{cycleIssue(err)})
	}

	if opts.Output != "" {
		if err := writeSet(result.Builder, opts.Output); err != nil {
			return formatter.Abort(ErrCodeWriteFailed, fmt.Errorf("writing output file: %w", err))
		}
	}

	return outputCompileSuccess(formatter, set, opts.Output)
}

// writeSet writes the compiled set in the format named by the extension.
func writeSet(b *builder.Builder, filename string) error {
	write := b.WriteJSON
	switch filepath.Ext(filename) {
	case ".json":
	case ".yaml", ".yml":
		write = b.WriteYAML
	default:
		return fmt.Errorf("unsupported output extension %q: want .json or .yaml", filepath.Ext(filename))
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// outputCompileSuccess prints the resolved order.
func outputCompileSuccess(formatter *OutputFormatter, set *ir.RegistrationSet, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(set)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d listener(s)\n\n", len(set.Registrations))
	if len(set.Registrations) > 0 {
		fmt.Fprintln(w, "Order:")
		for i, reg := range set.Registrations {
			fmt.Fprintf(w, "  %d. %s [%s] %s (%s)\n", i+1, reg.ID, reg.Type, describeTarget(reg.Target), describeConstraint(reg))
		}
		fmt.Fprintln(w)
	}
	if outputFile != "" {
		fmt.Fprintf(w, "Wrote registration set to %s\n", outputFile)
	}
	return nil
}

func describeTarget(t ir.Target) string {
	target, err := listener.FromIR(t)
	if err != nil {
		return string(t.Kind)
	}
	return target.Describe()
}

func describeConstraint(reg ir.Registration) string {
	switch {
	case reg.Before != "":
		return "before " + reg.Before
	case reg.After != "":
		return "after " + reg.After
	default:
		return fmt.Sprintf("priority %d", reg.Priority)
	}
}


// outputCompileIssues outputs every invalid declaration.
func outputCompileIssues(formatter *OutputFormatter, issues []Issue) error {
	if err := formatter.Failure("Compilation failed", issues, issues, nil); err != nil {
		return err
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(issues)))
}
