package manifest

import (
	"fmt"

	"cuelang.org/go/cue/token"

	"github.com/roach88/ordo/internal/listener"
)

// Position is a source location.
type Position struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the position carries a line.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

func fromToken(pos token.Pos) Position {
	if !pos.IsValid() {
		return Position{}
	}
	return Position{File: pos.Filename(), Line: pos.Line(), Column: pos.Column()}
}

// Decl is one declared registration.
type Decl struct {
	ID       string `yaml:"id"`
	Type     string `yaml:"type"`
	Priority int    `yaml:"priority"`
	Before   string `yaml:"before"`
	After    string `yaml:"after"`
	Function string `yaml:"function"`
	Class    string `yaml:"class"`
	Method   string `yaml:"method"`
	Service  string `yaml:"service"`

	// Pos is where the declaration starts.
	Pos Position `yaml:"-"`
}

// Target returns the declared target.
func (d Decl) Target() (listener.Target, error) {
	switch {
	case d.Function != "":
		if d.Class != "" || d.Service != "" || d.Method != "" {
			return nil, d.errorf("target", "function cannot be combined with class, service or method")
		}
		return listener.Function{Name: d.Function}, nil
	case d.Class != "" && d.Service != "":
		return nil, d.errorf("target", "class and service are mutually exclusive")
	case d.Class != "":
		if d.Method == "" {
			return nil, d.errorf("method", "class %s needs a method", d.Class)
		}
		return listener.StaticMethod{Class: d.Class, Method: d.Method}, nil
	case d.Service != "":
		if d.Method == "" {
			return nil, d.errorf("method", "service %s needs a method", d.Service)
		}
		return listener.ServiceProxy{Service: d.Service, Method: d.Method}, nil
	default:
		return nil, d.errorf("target", "one of function, class or service is required")
	}
}

// Validate checks the declaration without registering it.
func (d Decl) Validate() error {
	if d.Type == "" {
		return d.errorf("type", "type is required")
	}
	if d.Before != "" && d.After != "" {
		return d.errorf("before", "before and after are mutually exclusive")
	}
	_, err := d.Target()
	return err
}

func (d Decl) errorf(field, format string, args ...any) *DeclError {
	return &DeclError{ID: d.ID, Field: field, Message: fmt.Sprintf(format, args...), Pos: d.Pos}
}
