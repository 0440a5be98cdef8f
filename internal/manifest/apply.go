package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/ordo/internal/builder"
	"github.com/roach88/ordo/internal/event"
	"github.com/roach88/ordo/internal/listener"
)

// Load reads declarations from a CUE package directory or a .yaml/.yml
// file.
func Load(path string) ([]Decl, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &DeclError{Field: "path", Message: fmt.Sprintf("manifest not found: %s", path), Err: err}
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return LoadYAMLFile(path)
	default:
		return nil, &DeclError{Field: "path", Message: fmt.Sprintf("unsupported manifest %s: want a CUE directory or a YAML file", path)}
	}
}

// Apply registers decls on b in declaration order. Invalid declarations
// are skipped and reported; the returned error joins one DeclError per
// failure.
func Apply(b *builder.Builder, decls []Decl) error {
	var errs []error
	for _, d := range decls {
		if err := apply(b, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func apply(b *builder.Builder, d Decl) error {
	if err := d.Validate(); err != nil {
		return err
	}
	target, err := d.Target()
	if err != nil {
		return err
	}

	opts := []listener.RegisterOption{
		listener.WithType(event.TypeID(d.Type)),
		listener.WithPriority(d.Priority),
	}
	if d.ID != "" {
		opts = append(opts, listener.WithID(d.ID))
	}

	switch {
	case d.Before != "":
		_, err = b.AddListenerBefore(d.Before, target, opts...)
	case d.After != "":
		_, err = b.AddListenerAfter(d.After, target, opts...)
	default:
		_, err = b.AddListener(target, opts...)
	}
	if err != nil {
		return &DeclError{ID: d.ID, Field: "id", Message: err.Error(), Pos: d.Pos, Err: err}
	}
	return nil
}
