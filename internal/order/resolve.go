package order

import (
	"cmp"
	"slices"
)

// resolve computes the total order of entries.
//
// The algorithm:
//  1. Entries with a priority constraint, or whose pivot is absent, are
//     anchors. Anchors sort by descending priority, then ascending seq.
//     A dangling relative entry counts as priority 0.
//  2. Every other entry hangs off its pivot, on the before or after side,
//     in ascending seq order.
//  3. A depth-first walk from each anchor emits before-children, the
//     node itself, then after-children. This is a topological order of the
//     explicit edges in which explicit edges win over priority.
//  4. Entries the walk never reaches hang off a cycle and are reported.
func resolve[T any](entries map[string]*Entry[T]) ([]*Entry[T], error) {
	var anchors []*Entry[T]
	befores := make(map[string][]*Entry[T])
	afters := make(map[string][]*Entry[T])

	for _, e := range entries {
		if !e.Relative() {
			anchors = append(anchors, e)
			continue
		}
		if _, ok := entries[e.Pivot]; !ok {
			anchors = append(anchors, e)
			continue
		}
		if e.Position == Before {
			befores[e.Pivot] = append(befores[e.Pivot], e)
		} else {
			afters[e.Pivot] = append(afters[e.Pivot], e)
		}
	}

	slices.SortFunc(anchors, func(a, b *Entry[T]) int {
		if c := cmp.Compare(effectivePriority(b), effectivePriority(a)); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	for _, group := range befores {
		slices.SortFunc(group, bySeq[T])
	}
	for _, group := range afters {
		slices.SortFunc(group, bySeq[T])
	}

	out := make([]*Entry[T], 0, len(entries))
	var place func(e *Entry[T])
	place = func(e *Entry[T]) {
		for _, b := range befores[e.ID] {
			place(b)
		}
		out = append(out, e)
		for _, a := range afters[e.ID] {
			place(a)
		}
	}
	for _, a := range anchors {
		place(a)
	}

	if len(out) == len(entries) {
		return out, nil
	}
	return nil, unresolvable(entries, out)
}

// effectivePriority is the priority used to sort an anchor. Relative
// entries only become anchors when their pivot is missing.
func effectivePriority[T any](e *Entry[T]) int {
	if e.Relative() {
		return 0
	}
	return e.Priority
}

func bySeq[T any](a, b *Entry[T]) int {
	return cmp.Compare(a.Seq, b.Seq)
}

// unresolvable builds the error for the entries resolve could not place.
// Every unplaced entry has a present pivot, so following pivots from any of
// them must end in a cycle.
func unresolvable[T any](entries map[string]*Entry[T], placed []*Entry[T]) error {
	done := make(map[string]bool, len(placed))
	for _, e := range placed {
		done[e.ID] = true
	}

	graph := make(constraintGraph)
	var unplaced []string
	for id, e := range entries {
		if done[id] {
			continue
		}
		unplaced = append(unplaced, id)
		if graph[id] == nil {
			graph[id] = []string{}
		}
		// Edge direction follows "precedes": id before pivot is id → pivot,
		// id after pivot is pivot → id.
		if e.Position == Before {
			graph[id] = append(graph[id], e.Pivot)
		} else {
			graph[e.Pivot] = append(graph[e.Pivot], id)
		}
	}
	slices.Sort(unplaced)

	cycles, ids := findCycles(graph)

	return &UnresolvableOrderError{
		IDs:      ids,
		Cycles:   cycles,
		Unplaced: unplaced,
	}
}
