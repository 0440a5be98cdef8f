// Package dispatch delivers an event to the listeners a provider yields
// for it, synchronously and in order.
//
// Delivery stops at the first listener error, when a StoppableEvent
// reports that propagation was stopped, when the context is cancelled, or
// when the optional listener limit is reached.
package dispatch
