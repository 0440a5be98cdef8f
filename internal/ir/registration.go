package ir

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// TargetKind discriminates the serializable target variants.
type TargetKind string

const (
	KindFunction     TargetKind = "function"
	KindStaticMethod TargetKind = "static_method"
	KindService      TargetKind = "service"
)

// Target is the serializable address of a listener.
//
// Exactly one shape is populated, selected by Kind:
//   - function: Function
//   - static_method: Class + Method
//   - service: Service + Method
type Target struct {
	Kind     TargetKind `json:"kind" yaml:"kind"`
	Function string     `json:"function,omitempty" yaml:"function,omitempty"`
	Class    string     `json:"class,omitempty" yaml:"class,omitempty"`
	Service  string     `json:"service,omitempty" yaml:"service,omitempty"`
	Method   string     `json:"method,omitempty" yaml:"method,omitempty"`
}

// Validate checks that the fields required by Kind are set.
func (t Target) Validate() error {
	switch t.Kind {
	case KindFunction:
		if t.Function == "" {
			return fmt.Errorf("function target: name is required")
		}
	case KindStaticMethod:
		if t.Class == "" || t.Method == "" {
			return fmt.Errorf("static_method target: class and method are required")
		}
	case KindService:
		if t.Service == "" || t.Method == "" {
			return fmt.Errorf("service target: service and method are required")
		}
	default:
		return fmt.Errorf("unknown target kind %q", t.Kind)
	}
	return nil
}

// Registration is one listener in resolved order.
// At most one of Before and After is set; when either is, Priority is
// ignored.
type Registration struct {
	ID       string `json:"id" yaml:"id"`
	Type     string `json:"type" yaml:"type"`
	Target   Target `json:"target" yaml:"target"`
	Priority int    `json:"priority" yaml:"priority"`
	Before   string `json:"before,omitempty" yaml:"before,omitempty"`
	After    string `json:"after,omitempty" yaml:"after,omitempty"`
}

// RegistrationSet is a compiled, ordered registration set.
type RegistrationSet struct {
	Version       string         `json:"version" yaml:"version"`
	Digest        string         `json:"digest" yaml:"digest"`
	Registrations []Registration `json:"registrations" yaml:"registrations"`
}

// NewRegistrationSet wraps registrations, already in resolved order, and
// computes their digest.
func NewRegistrationSet(regs []Registration) (*RegistrationSet, error) {
	digest, err := SetDigest(regs)
	if err != nil {
		return nil, err
	}
	return &RegistrationSet{
		Version:       SetVersion,
		Digest:        digest,
		Registrations: regs,
	}, nil
}

// Verify recomputes the digest and compares it with the stored one.
func (s *RegistrationSet) Verify() error {
	digest, err := SetDigest(s.Registrations)
	if err != nil {
		return err
	}
	if digest != s.Digest {
		return fmt.Errorf("registration set digest mismatch: stored %s, computed %s", s.Digest, digest)
	}
	return nil
}

// checkNormalized rejects strings that are not in Unicode NFC. Canonical
// encoding normalizes strings, so two registrations that differ only in
// normalization would otherwise share a digest.
func (r Registration) checkNormalized() error {
	for field, v := range map[string]string{
		"id":              r.ID,
		"type":            r.Type,
		"before":          r.Before,
		"after":           r.After,
		"target.function": r.Target.Function,
		"target.class":    r.Target.Class,
		"target.service":  r.Target.Service,
		"target.method":   r.Target.Method,
	} {
		if !norm.NFC.IsNormalString(v) {
			return fmt.Errorf("registration %q: %s is not NFC-normalized", r.ID, field)
		}
	}
	return nil
}

// canonical converts r to the generic form MarshalCanonical accepts.
// Empty optional fields are omitted so they never affect the digest.
func (r Registration) canonical() map[string]any {
	target := map[string]any{"kind": string(r.Target.Kind)}
	for k, v := range map[string]string{
		"function": r.Target.Function,
		"class":    r.Target.Class,
		"service":  r.Target.Service,
		"method":   r.Target.Method,
	} {
		if v != "" {
			target[k] = v
		}
	}

	obj := map[string]any{
		"id":       r.ID,
		"type":     r.Type,
		"target":   target,
		"priority": r.Priority,
	}
	if r.Before != "" {
		obj["before"] = r.Before
	}
	if r.After != "" {
		obj["after"] = r.After
	}
	return obj
}
