package order

import (
	"cmp"
	"iter"
	"log/slog"
	"slices"
	"sync"
)

// Collection orders values of type T by priority and relative constraints.
// Create one with New; the zero value is not usable.
type Collection[T any] struct {
	mu      sync.Mutex
	entries map[string]*Entry[T]
	clock   Sequencer
	ids     IDGenerator
	logger  *slog.Logger

	// resolved is the cached order; valid only while dirty is false.
	resolved   []*Entry[T]
	resolveErr error
	dirty      bool
}

// New creates an empty collection.
func New[T any](opts ...Option) *Collection[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Collection[T]{
		entries: make(map[string]*Entry[T]),
		clock:   cfg.clock,
		ids:     cfg.ids,
		logger:  cfg.logger,
		dirty:   true,
	}
}

// Add inserts value with a priority constraint and returns its id.
// An empty id is replaced by a generated one.
func (c *Collection[T]) Add(value T, priority int, id string) (string, error) {
	return c.insert(value, Priority(priority), id)
}

// AddBefore inserts value immediately before pivot. The pivot need not
// exist yet.
func (c *Collection[T]) AddBefore(pivot string, value T, id string) (string, error) {
	return c.insert(value, BeforeID(pivot), id)
}

// AddAfter inserts value immediately after pivot. The pivot need not
// exist yet.
func (c *Collection[T]) AddAfter(pivot string, value T, id string) (string, error) {
	return c.insert(value, AfterID(pivot), id)
}

func (c *Collection[T]) insert(value T, cons Constraint, id string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == "" {
		id = c.ids.Generate()
	}
	if _, exists := c.entries[id]; exists {
		return "", &DuplicateIDError{ID: id}
	}
	c.storeLocked(id, value, cons)
	return id, nil
}

// AddAll inserts a batch atomically: if any id collides with a stored id
// or with another id in the batch, nothing is stored.
// Returns the ids in batch order.
func (c *Collection[T]) AddAll(batch []Insertion[T]) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, len(batch))
	seen := make(map[string]bool, len(batch))
	for i, ins := range batch {
		id := ins.ID
		if id == "" {
			id = c.ids.Generate()
		}
		if _, exists := c.entries[id]; exists || seen[id] {
			return nil, &DuplicateIDError{ID: id}
		}
		seen[id] = true
		ids[i] = id
	}

	for i, ins := range batch {
		c.storeLocked(ids[i], ins.Value, ins.Constraint)
	}
	return ids, nil
}

func (c *Collection[T]) storeLocked(id string, value T, cons Constraint) {
	c.entries[id] = &Entry[T]{
		ID:         id,
		Value:      value,
		Seq:        c.clock.Next(),
		Constraint: cons,
	}
	c.dirty = true
	c.resolved = nil
	c.resolveErr = nil

	c.logger.Debug("entry added", "id", id, "constraint", cons.String())
}

// Get returns the value stored under id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		var zero T
		return zero, false
	}
	return e.Value, true
}

// Has reports whether id is stored.
func (c *Collection[T]) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[id]
	return ok
}

// Len returns the number of stored entries.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Entries returns every entry in resolved order.
// The returned slice is a copy and may be modified by the caller.
func (c *Collection[T]) Entries() ([]Entry[T], error) {
	ordered, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]Entry[T], len(ordered))
	for i, e := range ordered {
		out[i] = *e
	}
	return out, nil
}

// All returns a restartable iterator over ids and values in resolved
// order. The order is fixed when All is called; later mutations do not
// affect an iterator already returned.
func (c *Collection[T]) All() (iter.Seq2[string, T], error) {
	ordered, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	return func(yield func(string, T) bool) {
		for _, e := range ordered {
			if !yield(e.ID, e.Value) {
				return
			}
		}
	}, nil
}

// IDs returns the ids in resolved order.
func (c *Collection[T]) IDs() ([]string, error) {
	ordered, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(ordered))
	for i, e := range ordered {
		ids[i] = e.ID
	}
	return ids, nil
}

// Dangling returns the relative entries whose pivot is not stored, in
// insertion order. Resolution places them as priority-0 entries.
func (c *Collection[T]) Dangling() []Entry[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Entry[T]
	for _, e := range c.entries {
		if !e.Constraint.Relative() {
			continue
		}
		if _, ok := c.entries[e.Constraint.Pivot]; !ok {
			out = append(out, *e)
		}
	}
	slices.SortFunc(out, func(a, b Entry[T]) int { return cmp.Compare(a.Seq, b.Seq) })
	return out
}

// snapshot returns the cached order, resolving it first if a mutation
// happened since the last read. The returned slice is never mutated.
func (c *Collection[T]) snapshot() ([]*Entry[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dirty {
		c.resolved, c.resolveErr = resolve(c.entries)
		c.dirty = false
		if c.resolveErr != nil {
			c.logger.Warn("order resolution failed", "error", c.resolveErr)
		}
	}
	return c.resolved, c.resolveErr
}
