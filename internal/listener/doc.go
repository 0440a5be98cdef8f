// Package listener implements the live listener provider.
//
// A Provider stores listeners in an order.Collection and, for an incoming
// event, yields the listeners whose declared event type matches, in
// resolved order.
//
// TARGETS:
//
// A listener target is one of four variants:
//   - Direct: a Go func value, called as-is
//   - Function: a symbol name resolved through a Symbols table
//   - StaticMethod: a Class::method name resolved through a Symbols table
//   - ServiceProxy: a service name plus method, resolved through a
//     ServiceLocator every time the listener is yielded
//
// Supported Go signatures for funcs and methods, where E is the event type:
//
//	func(E)
//	func(E) error
//	func(context.Context, E)
//	func(context.Context, E) error
//
// DEFERRED BINDING:
//
// Service proxies store only names. The locator is consulted when the
// listener is yielded, never at registration and never memoized, so
// services may be registered with the locator in any order and may be
// replaced between dispatches.
package listener
