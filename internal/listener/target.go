package listener

import (
	"fmt"
	"reflect"
	"regexp"
	"runtime"

	"github.com/roach88/ordo/internal/ir"
)

// Target is a sealed variant naming what a listener invokes.
// Implementations: Direct, Function, StaticMethod, ServiceProxy.
type Target interface {
	// Describe returns a human-readable description used in errors.
	Describe() string

	// DefaultID returns the id used when the caller supplies none, or ""
	// when the target has no stable name.
	DefaultID() string

	isTarget()
}

// Direct is a Go func value. It cannot be serialized.
type Direct struct {
	Fn any

	// Name overrides the symbol name derived from Fn.
	Name string
}

// Function names a function registered in a Symbols table.
type Function struct {
	Name string
}

// StaticMethod names a method registered in a Symbols table under
// "Class::Method".
type StaticMethod struct {
	Class  string
	Method string
}

// ServiceProxy names a method on a service obtained from a ServiceLocator
// at dispatch time.
type ServiceProxy struct {
	Service string
	Method  string
}

func (Direct) isTarget()       {}
func (Function) isTarget()     {}
func (StaticMethod) isTarget() {}
func (ServiceProxy) isTarget() {}

// anonymousFunc matches the compiler-generated names of closures, e.g.
// "main.main.func1" or "pkg.(*T).M.func2.1".
var anonymousFunc = regexp.MustCompile(`\.func\d+(\.\d+)*$`)

func (d Direct) symbol() string {
	if d.Name != "" {
		return d.Name
	}
	v := reflect.ValueOf(d.Fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
		return fn.Name()
	}
	return ""
}

func (d Direct) Describe() string {
	if s := d.symbol(); s != "" {
		return "func " + s
	}
	return fmt.Sprintf("func %T", d.Fn)
}

// DefaultID is the func's symbol name. Closures, and method values (which
// share one wrapper symbol per method), have no stable name.
func (d Direct) DefaultID() string {
	if d.Name != "" {
		return d.Name
	}
	s := d.symbol()
	if s == "" || anonymousFunc.MatchString(s) || reflect.ValueOf(d.Fn).Kind() != reflect.Func {
		return ""
	}
	if len(s) > 3 && s[len(s)-3:] == "-fm" {
		return ""
	}
	return s
}

func (f Function) Describe() string  { return "function " + f.Name }
func (f Function) DefaultID() string { return f.Name }

func (s StaticMethod) Describe() string  { return "static method " + s.key() }
func (s StaticMethod) DefaultID() string { return s.key() }

func (s StaticMethod) key() string { return s.Class + "::" + s.Method }

func (s ServiceProxy) Describe() string  { return fmt.Sprintf("service %s method %s", s.Service, s.Method) }
func (s ServiceProxy) DefaultID() string { return s.Service + "-" + s.Method }

// ToIR converts a serializable target. Returns false for Direct.
func ToIR(t Target) (ir.Target, bool) {
	switch v := t.(type) {
	case Function:
		return ir.Target{Kind: ir.KindFunction, Function: v.Name}, true
	case StaticMethod:
		return ir.Target{Kind: ir.KindStaticMethod, Class: v.Class, Method: v.Method}, true
	case ServiceProxy:
		return ir.Target{Kind: ir.KindService, Service: v.Service, Method: v.Method}, true
	default:
		return ir.Target{}, false
	}
}

// FromIR converts a serialized target back into a Target.
func FromIR(t ir.Target) (Target, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	switch t.Kind {
	case ir.KindFunction:
		return Function{Name: t.Function}, nil
	case ir.KindStaticMethod:
		return StaticMethod{Class: t.Class, Method: t.Method}, nil
	default:
		return ServiceProxy{Service: t.Service, Method: t.Method}, nil
	}
}
