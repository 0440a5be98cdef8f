// Package ir holds the serializable form of a listener registration set.
//
// This is what the deferred builder hands to an external compile step and
// what a compiled provider is rebuilt from. Only string-addressable targets
// (functions, static methods, service proxies) can be represented; live Go
// closures cannot.
//
// Key design constraints:
//   - ir imports nothing internal
//   - no floats anywhere; priorities are ints
//   - set digests are SHA-256 over RFC 8785 canonical JSON with a domain
//     prefix, so the same registrations always hash the same
//   - all JSON and YAML keys use snake_case
package ir
