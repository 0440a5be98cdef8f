package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ordo/internal/builder"
	"github.com/roach88/ordo/internal/event"
	"github.com/roach88/ordo/internal/ir"
	"github.com/roach88/ordo/internal/listener"
)

// MatchOptions holds flags for the match command.
type MatchOptions struct {
	*RootOptions
	Declare []string // child=parent subtype declarations
}

// MatchResult lists the listeners a compiled set yields for an event type.
type MatchResult struct {
	Type      string            `json:"type"`
	Listeners []ir.Registration `json:"listeners"`
}

// namedEvent is an event known only by its TypeID.
type namedEvent event.TypeID

func (e namedEvent) EventType() event.TypeID { return event.TypeID(e) }

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match <registration-set> <event-type>",
		Short: "List the listeners a compiled set yields for an event type",
		Long: `Load a registration set written by "ordo compile --output" and list,
in dispatch order, the listeners an event of the given type would reach.

Subtypes are declared with --declare child=parent; a listener for a
parent type also receives events of its child types.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Declare, "declare", nil, "subtype declaration child=parent (repeatable)")

	return cmd
}

func runMatch(opts *MatchOptions, setPath, typ string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	set, err := readSet(setPath)
	if err != nil {
		return formatter.Abort(ErrCodeReadFailed, err)
	}

	// targets are never bound here, so empty tables are enough
	p, err := listener.NewFromSet(set,
		listener.WithLocator(listener.NewMapLocator()),
		listener.WithSymbols(listener.NewSymbolTable()),
		listener.WithLogger(newLogger(opts.Verbose, formatter.GetErrWriter())),
	)
	if err != nil {
		return formatter.Abort(ErrCodeReadFailed, err)
	}

	for _, decl := range opts.Declare {
		child, parent, ok := strings.Cut(decl, "=")
		if !ok || child == "" || parent == "" {
			return formatter.Abort(ErrCodeGeneric, fmt.Errorf("invalid --declare %q: want child=parent", decl))
		}
		p.Hierarchy().Declare(event.TypeID(child), event.TypeID(parent))
		formatter.VerboseLog("Declared %s as a subtype of %s", child, parent)
	}

	ids, err := p.MatchingIDs(namedEvent(typ))
	if err != nil {
		return outputValidationErrors(formatter, &ValidationResult{Errors: []Issue{cycleIssue(err)}})
	}

	byID := make(map[string]ir.Registration, len(set.Registrations))
	for _, reg := range set.Registrations {
		byID[reg.ID] = reg
	}
	result := MatchResult{Type: typ, Listeners: make([]ir.Registration, len(ids))}
	for i, id := range ids {
		result.Listeners[i] = byID[id]
	}

	return outputMatch(formatter, result)
}

// readSet loads a compiled set by file extension.
func readSet(path string) (*ir.RegistrationSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch filepath.Ext(path) {
	case ".json":
		return builder.ReadJSON(f)
	case ".yaml", ".yml":
		return builder.ReadYAML(f)
	default:
		return nil, fmt.Errorf("unsupported registration set %s: want .json or .yaml", path)
	}
}

func outputMatch(formatter *OutputFormatter, result MatchResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if len(result.Listeners) == 0 {
		fmt.Fprintf(w, "No listeners for %s\n", result.Type)
		return nil
	}
	fmt.Fprintf(w, "%d listener(s) for %s:\n", len(result.Listeners), result.Type)
	for i, reg := range result.Listeners {
		fmt.Fprintf(w, "  %d. %s [%s] %s\n", i+1, reg.ID, reg.Type, describeTarget(reg.Target))
	}
	return nil
}
