package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/ordo/internal/builder"
	"github.com/roach88/ordo/internal/manifest"
	"github.com/roach88/ordo/internal/order"
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE or YAML load failed
	ErrCodeNotFound    = "E005" // Path not found or unsupported
	ErrCodeReadFailed  = "E006" // Compiled set unreadable
	ErrCodeWriteFailed = "E007" // File write error

	// Declaration errors
	ErrCodeMissingType      = "E101" // No event type
	ErrCodeInvalidTarget    = "E102" // Not exactly one target shape
	ErrCodeConflictingPivot = "E103" // Both before and after
	ErrCodeDuplicateID      = "E104" // Id already registered
	ErrCodeSchema           = "E105" // CUE schema violation

	// Ordering errors
	ErrCodeCycle = "E110" // Before/after constraints form a cycle

	// Warnings
	WarnCodeDanglingPivot = "W201" // Pivot never registered
)

// Issue is one finding about a manifest.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// Location returns "file:line:col", or "" when unknown.
func (i Issue) Location() string {
	if i.Line == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", i.File, i.Line, i.Column)
}

// LoadResult contains a loaded manifest applied to a builder.
type LoadResult struct {
	Source  string
	Decls   []manifest.Decl
	Builder *builder.Builder

	// Issues are invalid declarations. They were not registered.
	Issues []Issue
}

// LoadManifests reads the manifest at path and applies every valid
// declaration to a new builder. The error is non-nil only when the
// manifest itself cannot be read.
func LoadManifests(path string, logger *slog.Logger) (*LoadResult, error) {
	decls, err := manifest.Load(path)
	result := &LoadResult{
		Source:  path,
		Decls:   decls,
		Builder: builder.New(builder.WithLogger(logger)),
	}
	for _, e := range flatten(err) {
		var de *manifest.DeclError
		if !errors.As(e, &de) || de.ID == "" {
			return nil, e
		}
		result.Issues = append(result.Issues, issueFor(e))
	}

	for _, e := range flatten(manifest.Apply(result.Builder, decls)) {
		result.Issues = append(result.Issues, issueFor(e))
	}
	return result, nil
}

// flatten splits a joined error into its parts.
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// issueFor converts a declaration error into an Issue.
func issueFor(err error) Issue {
	var de *manifest.DeclError
	if !errors.As(err, &de) {
		return Issue{Code: ErrCodeGeneric, Message: err.Error()}
	}
	code := MapFieldToErrorCode(de.Field)
	if order.IsDuplicateError(err) {
		code = ErrCodeDuplicateID
	}
	return Issue{
		Code:    code,
		Message: de.Message,
		ID:      de.ID,
		File:    de.Pos.File,
		Line:    de.Pos.Line,
		Column:  de.Pos.Column,
	}
}

// cycleIssue describes an unresolvable order.
func cycleIssue(err error) Issue {
	var ue *order.UnresolvableOrderError
	if errors.As(err, &ue) {
		return Issue{Code: ErrCodeCycle, Message: ue.Error()}
	}
	return Issue{Code: ErrCodeGeneric, Message: err.Error()}
}

// MapFieldToErrorCode maps a manifest error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "path":
		return ErrCodeNotFound
	case "files":
		return ErrCodeNoFiles
	case "load":
		return ErrCodeScanError
	case "yaml":
		return ErrCodeLoadFailed
	case "cue":
		return ErrCodeSchema
	case "type":
		return ErrCodeMissingType
	case "target", "method":
		return ErrCodeInvalidTarget
	case "before", "after":
		return ErrCodeConflictingPivot
	case "id":
		return ErrCodeDuplicateID
	default:
		return ErrCodeGeneric
	}
}

// loadErrorCode maps an error that stopped loading to an error code.
func loadErrorCode(err error) string {
	var de *manifest.DeclError
	if !errors.As(err, &de) {
		return ErrCodeGeneric
	}
	if de.Field == "cue" {
		// a package that fails to build, as opposed to one bad declaration
		return ErrCodeLoadFailed
	}
	return MapFieldToErrorCode(de.Field)
}
