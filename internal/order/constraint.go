package order

import "fmt"

// Position is the side of a pivot a relative entry sits on.
type Position int

const (
	// Before places the entry immediately before its pivot.
	Before Position = iota + 1

	// After places the entry immediately after its pivot.
	After
)

// String returns "before", "after" or "".
func (p Position) String() string {
	switch p {
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return ""
	}
}

// Constraint is an entry's ordering rule: a priority, or a position
// relative to a pivot id. The zero value is priority 0.
type Constraint struct {
	Priority int
	Pivot    string
	Position Position
}

// Priority returns a priority constraint.
func Priority(p int) Constraint {
	return Constraint{Priority: p}
}

// BeforeID returns a constraint placing an entry immediately before pivot.
func BeforeID(pivot string) Constraint {
	return Constraint{Pivot: pivot, Position: Before}
}

// AfterID returns a constraint placing an entry immediately after pivot.
func AfterID(pivot string) Constraint {
	return Constraint{Pivot: pivot, Position: After}
}

// Relative reports whether the constraint is pivot-based.
func (c Constraint) Relative() bool {
	return c.Position == Before || c.Position == After
}

func (c Constraint) String() string {
	if c.Relative() {
		return fmt.Sprintf("%s %s", c.Position, c.Pivot)
	}
	return fmt.Sprintf("priority %d", c.Priority)
}

// Entry is a stored value with its id, constraint and insertion sequence.
type Entry[T any] struct {
	ID    string
	Value T
	Seq   int64
	Constraint
}

// Insertion describes one entry to add with AddAll.
// An empty ID asks the collection to generate one.
type Insertion[T any] struct {
	ID    string
	Value T
	Constraint
}
