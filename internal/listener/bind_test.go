package listener

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignature(t *testing.T) {
	tests := []struct {
		name    string
		fn      any
		wantCtx bool
		wantErr bool
		returns bool
	}{
		{name: "event only", fn: func(Animal) {}},
		{name: "context and event", fn: func(context.Context, Animal) {}, wantCtx: true},
		{name: "returns error", fn: func(Animal) error { return nil }, returns: true},
		{name: "context event error", fn: func(context.Context, *Dog) error { return nil }, wantCtx: true, returns: true},
		{name: "no params", fn: func() {}, wantErr: true},
		{name: "two events", fn: func(Animal, Dog) {}, wantErr: true},
		{name: "variadic", fn: func(...Animal) {}, wantErr: true},
		{name: "non-error result", fn: func(Animal) int { return 0 }, wantErr: true},
		{name: "two results", fn: func(Animal) (int, error) { return 0, nil }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := parseSignature(reflect.TypeOf(tt.fn), 0)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedSignature)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCtx, sig.withContext)
			assert.Equal(t, tt.returns, sig.returnsErr)
		})
	}

	_, err := parseSignature(reflect.TypeOf(42), 0)
	assert.ErrorIs(t, err, ErrUnsupportedSignature)
}

func TestCoerce(t *testing.T) {
	dog := Dog{Animal: Animal{Name: "rex"}, Breed: "lab"}

	v, ok := coerce(dog, reflect.TypeOf(Animal{}))
	require.True(t, ok)
	assert.Equal(t, Animal{Name: "rex"}, v.Interface())

	v, ok = coerce(&dog, reflect.TypeOf(Dog{}))
	require.True(t, ok)
	assert.Equal(t, dog, v.Interface())

	v, ok = coerce(dog, reflect.TypeOf(&Dog{}))
	require.True(t, ok)
	assert.Equal(t, &dog, v.Interface())

	v, ok = coerce(&dog, reflect.TypeOf((*Named)(nil)).Elem())
	require.True(t, ok)
	assert.Equal(t, "rex", v.Interface().(Named).GetName())

	_, ok = coerce(OrderPlaced{}, reflect.TypeOf(Animal{}))
	assert.False(t, ok)

	_, ok = coerce((*Dog)(nil), reflect.TypeOf(Animal{}))
	assert.False(t, ok)

	v, ok = coerce(nil, reflect.TypeOf(&Dog{}))
	require.True(t, ok)
	assert.True(t, v.IsNil())

	_, ok = coerce(nil, reflect.TypeOf(Dog{}))
	assert.False(t, ok)
}

func TestAdapt(t *testing.T) {
	var got []string
	boom := errors.New("boom")

	l, err := adapt(func(ctx context.Context, a Animal) error {
		got = append(got, a.Name)
		if a.Name == "bad" {
			return boom
		}
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, l(context.Background(), Dog{Animal: Animal{Name: "rex"}}))
	assert.ErrorIs(t, l(context.Background(), Animal{Name: "bad"}), boom)
	assert.ErrorContains(t, l(context.Background(), OrderPlaced{}), "cannot be passed as")
	assert.Equal(t, []string{"rex", "bad"}, got)

	_, err = adapt((func(Animal))(nil))
	assert.ErrorIs(t, err, ErrUnsupportedSignature)
}

func TestAdapt_NilContext(t *testing.T) {
	var seen context.Context
	l, err := adapt(func(ctx context.Context, a Animal) { seen = ctx })
	require.NoError(t, err)

	require.NoError(t, l(nil, Animal{}))
	assert.NotNil(t, seen)
}

func TestBindMethod(t *testing.T) {
	rec := &recorder{}
	l, err := bindMethod(&mailer{name: "m", rec: rec}, "Send")
	require.NoError(t, err)
	require.NoError(t, l(context.Background(), OrderPlaced{ID: "9"}))
	assert.Equal(t, []string{"m:9"}, rec.get())

	_, err = bindMethod(&mailer{}, "Missing")
	assert.ErrorContains(t, err, "method Missing not found")
}
