package listener

import (
	"context"
	"fmt"
	"reflect"

	"github.com/roach88/ordo/internal/event"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// signature is a parsed listener shape.
type signature struct {
	withContext bool
	event       reflect.Type
	returnsErr  bool
}

// parseSignature checks ft against the supported listener shapes. skip is
// the number of leading parameters to ignore (1 for a method type whose
// first parameter is the receiver).
func parseSignature(ft reflect.Type, skip int) (signature, error) {
	var sig signature
	if ft == nil || ft.Kind() != reflect.Func {
		return sig, fmt.Errorf("%w: %v is not a func", ErrUnsupportedSignature, ft)
	}

	params := ft.NumIn() - skip
	switch {
	case params == 1:
		sig.event = ft.In(skip)
	case params == 2 && ft.In(skip) == contextType:
		sig.withContext = true
		sig.event = ft.In(skip + 1)
	default:
		return sig, fmt.Errorf("%w: %v: want (event) or (context.Context, event) parameters", ErrUnsupportedSignature, ft)
	}
	if ft.IsVariadic() {
		return sig, fmt.Errorf("%w: %v is variadic", ErrUnsupportedSignature, ft)
	}

	switch {
	case ft.NumOut() == 0:
	case ft.NumOut() == 1 && ft.Out(0) == errorType:
		sig.returnsErr = true
	default:
		return sig, fmt.Errorf("%w: %v: want no result or a single error", ErrUnsupportedSignature, ft)
	}
	return sig, nil
}

// adapt wraps a Go func into an event.Listener.
func adapt(fn any) (event.Listener, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("%w: %T is not a func", ErrUnsupportedSignature, fn)
	}
	return adaptValue(v)
}

// bindMethod resolves method on recv into an event.Listener.
func bindMethod(recv any, method string) (event.Listener, error) {
	m := reflect.ValueOf(recv).MethodByName(method)
	if !m.IsValid() {
		return nil, fmt.Errorf("method %s not found on %T", method, recv)
	}
	return adaptValue(m)
}

func adaptValue(fn reflect.Value) (event.Listener, error) {
	sig, err := parseSignature(fn.Type(), 0)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, ev any) error {
		arg, ok := coerce(ev, sig.event)
		if !ok {
			return fmt.Errorf("event %T cannot be passed as %s", ev, sig.event)
		}

		args := []reflect.Value{arg}
		if sig.withContext {
			if ctx == nil {
				ctx = context.Background()
			}
			args = []reflect.Value{reflect.ValueOf(ctx), arg}
		}

		out := fn.Call(args)
		if sig.returnsErr && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}, nil
}

// coerce converts an event value to the parameter type want.
//
// Besides plain assignability it bridges pointer and value forms and walks
// embedded struct fields, so a Dog embedding Animal can be passed to a
// func(Animal) listener.
func coerce(ev any, want reflect.Type) (reflect.Value, bool) {
	if ev == nil {
		switch want.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(want), true
		}
		return reflect.Value{}, false
	}
	return coerceValue(reflect.ValueOf(ev), want, 0)
}

// maxEmbedDepth bounds the embedded-field walk.
const maxEmbedDepth = 8

func coerceValue(v reflect.Value, want reflect.Type, depth int) (reflect.Value, bool) {
	if v.Type().AssignableTo(want) {
		return v, true
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		if v.Elem().Type().AssignableTo(want) {
			return v.Elem(), true
		}
	}
	if want.Kind() == reflect.Pointer && v.Type().AssignableTo(want.Elem()) {
		p := reflect.New(want.Elem())
		p.Elem().Set(v)
		return p, true
	}

	if depth >= maxEmbedDepth {
		return reflect.Value{}, false
	}
	s := v
	if s.Kind() == reflect.Pointer {
		s = s.Elem()
	}
	if s.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	for i := 0; i < s.NumField(); i++ {
		f := s.Type().Field(i)
		if !f.Anonymous || !f.IsExported() {
			continue
		}
		fv := s.Field(i)
		if fv.Kind() == reflect.Pointer && fv.IsNil() {
			continue
		}
		if got, ok := coerceValue(fv, want, depth+1); ok {
			return got, true
		}
	}
	return reflect.Value{}, false
}

// failing returns a listener that always reports err.
func failing(err error) event.Listener {
	return func(context.Context, any) error {
		return err
	}
}
