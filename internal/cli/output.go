package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation failure (cycles, invalid declarations)
	ExitCommandError = 2 // Command error (missing paths, unreadable manifests, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an
// ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose and diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status   string     `json:"status"`             // "ok" or "error"
	Data     any        `json:"data,omitempty"`     // success payload
	Error    *CLIError  `json:"error,omitempty"`    // first error
	Warnings []CLIError `json:"warnings,omitempty"` // non-fatal findings
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "W201", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Abort reports an error that stopped a command and returns it wrapped in
// an ExitCommandError carrying its code.
func (f *OutputFormatter) Abort(code string, err error) error {
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// It writes to ErrWriter when set so JSON output stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Failure reports the issues that failed a command. JSON output is an
// error response carrying data, with the first issue as its error; text
// output is the headline followed by every issue and warning.
func (f *OutputFormatter) Failure(headline string, data any, issues, warnings []Issue) error {
	if f.Format == "json" {
		resp := CLIResponse{Status: "error", Data: data, Warnings: cliErrors(warnings)}
		if len(issues) > 0 {
			resp.Error = &CLIError{Code: issues[0].Code, Message: issues[0].Message}
		}
		return f.encode(resp)
	}

	fmt.Fprintf(f.Writer, "✗ %s\n\n", headline)
	f.Issues(issues)
	f.Warnings(warnings)
	return nil
}

// Issues prints each issue under its source location, when known.
func (f *OutputFormatter) Issues(issues []Issue) {
	for _, issue := range issues {
		if loc := issue.Location(); loc != "" {
			fmt.Fprintln(f.Writer, loc)
		}
		msg := issue.Message
		if issue.ID != "" {
			msg = fmt.Sprintf("listener %s: %s", issue.ID, msg)
		}
		fmt.Fprintf(f.Writer, "  %s: %s\n\n", issue.Code, msg)
	}
}

// Warnings prints a Warnings section; nothing when there are none.
func (f *OutputFormatter) Warnings(warnings []Issue) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(f.Writer)
	fmt.Fprintln(f.Writer, "Warnings:")
	for _, w := range warnings {
		fmt.Fprintf(f.Writer, "  %s: %s\n", w.Code, w.Message)
	}
}

func cliErrors(issues []Issue) []CLIError {
	if len(issues) == 0 {
		return nil
	}
	out := make([]CLIError, len(issues))
	for i, issue := range issues {
		out[i] = CLIError{Code: issue.Code, Message: issue.Message}
	}
	return out
}
