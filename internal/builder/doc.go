// Package builder records listener registrations without binding them, so
// that the resolved order can be compiled into a serializable
// ir.RegistrationSet.
//
// A Builder accepts the same registrations as listener.Provider except
// Direct funcs, which have no portable address. It never matches events.
package builder
