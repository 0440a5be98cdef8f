package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool    `json:"valid"`
	Listeners int     `json:"listeners"`
	Errors    []Issue `json:"errors,omitempty"`
	Warnings  []Issue `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Check a listener manifest without compiling it",
		Long: `Check a listener manifest for invalid declarations, duplicate ids
and before/after cycles.

Listeners positioned relative to an id that is never declared are
reported as warnings; they are ordered as priority 0.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result, err := ValidateManifest(path, newLogger(opts.Verbose, formatter.GetErrWriter()))
	if err != nil {
		return formatter.Abort(loadErrorCode(err), err)
	}
	formatter.VerboseLog("Checked %d listener(s) in %s", result.Listeners, path)

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// ValidateManifest loads the manifest at path and reports its errors and
// warnings. The error is non-nil only when the manifest cannot be read.
func ValidateManifest(path string, logger *slog.Logger) (*ValidationResult, error) {
	loaded, err := LoadManifests(path, logger)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{
		Listeners: loaded.Builder.Len(),
		Errors:    loaded.Issues,
	}
	if _, err := loaded.Builder.Registrations(); err != nil {
		result.Errors = append(result.Errors, cycleIssue(err))
	}
	for _, reg := range loaded.Builder.Dangling() {
		side, pivot := "before", reg.Before
		if reg.After != "" {
			side, pivot = "after", reg.After
		}
		result.Warnings = append(result.Warnings, Issue{
			Code:    WarnCodeDanglingPivot,
			ID:      reg.ID,
			Message: fmt.Sprintf("listener %s is %s %s, which is not declared; ordered as priority 0", reg.ID, side, pivot),
		})
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result *ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.encode(CLIResponse{Status: "ok", Data: result, Warnings: cliErrors(result.Warnings)})
	}

	fmt.Fprintf(formatter.Writer, "✓ %d listener(s) valid\n", result.Listeners)
	formatter.Warnings(result.Warnings)
	return nil
}


// outputValidationErrors outputs every finding.
func outputValidationErrors(formatter *OutputFormatter, result *ValidationResult) error {
	if err := formatter.Failure("Validation failed", result, result.Errors, result.Warnings); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}
