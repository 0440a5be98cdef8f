// Package manifest loads declarative listener registrations and applies
// them to a builder.Builder.
//
// Two formats are supported. A CUE package directory declares listeners
// under the top-level "listener" struct, keyed by id:
//
//	listener: audit: {
//		type:     "user.created"
//		function: "audit.Log"
//		priority: -10
//	}
//
// A YAML file declares them as a list:
//
//	listeners:
//	  - id: audit
//	    type: user.created
//	    function: audit.Log
//
// Each declaration names exactly one target: function, class+method, or
// service+method.
package manifest
