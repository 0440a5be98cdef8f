// Package order implements the ordering engine: a collection of opaque
// entries, each stored under a unique string id with exactly one ordering
// constraint, resolved on demand into one deterministic sequence.
//
// CONSTRAINTS:
//
// Priority: higher values sort earlier. Equal priorities keep insertion
// order, tracked by a logical clock rather than wall time.
//
// Relative: an entry placed Before or After a pivot id sits immediately
// next to the pivot on that side, whatever its own priority. Several
// entries pinned to the same side of one pivot keep insertion order among
// themselves. A pivot that does not exist yet is not an error; the entry is
// treated as a priority-0 entry until the pivot is added.
//
// RESOLUTION:
//
// Resolution is lazy. Every mutation drops the cached order and the next
// read recomputes it once. Relative constraints that form a cycle
// (A before B, B before A) cannot be satisfied; the read that needs the
// order fails with *UnresolvableOrderError naming the cycle. Insertion
// itself never fails because of a constraint, since independent
// registration sites may run in any order.
//
// Thread-safety: a single mutex guards the entries, the insertion counter
// and the cached order. Reads return snapshots.
package order
