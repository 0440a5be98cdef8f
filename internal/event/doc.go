// Package event defines how event values are named and compared.
//
// Every event value has a TypeID. Values that implement Typed name
// themselves; everything else is named after its Go type ("orders.Placed"
// for both orders.Placed and *orders.Placed).
//
// Matching is subtype-aware. A listener declared for TypeID U receives an
// event of TypeID T when T is U or a subtype of U. The subtype relation
// lives in a Hierarchy and comes from three places:
//   - explicit declarations: h.Declare("Dog", "Animal")
//   - struct embedding: type Dog struct{ Animal } makes Dog a subtype of Animal
//   - Go interfaces: an event whose type implements a learned interface type
//     matches listeners declared for that interface
//
// The relation is reflexive and transitive. Cyclic declarations are
// tolerated; they simply make the participants mutual subtypes.
package event
