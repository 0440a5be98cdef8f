package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// schema closes each declaration so that misspelled fields are rejected.
const schema = `
#Listener: {
	id?:       string
	type:      string
	priority?: int
	before?:   string
	after?:    string
	function?: string
	class?:    string
	method?:   string
	service?:  string
}
`

// LoadDir loads the CUE package in dir and returns its declarations in
// source order. A declaration's label is its id unless it sets one.
//
// Declarations that fail the schema are reported together, alongside the
// valid ones; errors reading the package return no declarations.
func LoadDir(dir string) ([]Decl, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &DeclError{Field: "path", Message: fmt.Sprintf("manifest directory not found: %s", dir), Err: err}
	}
	if !info.IsDir() {
		return nil, &DeclError{Field: "path", Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &DeclError{Field: "load", Message: fmt.Sprintf("scanning %s: %v", dir, err), Err: err}
	}
	if len(files) == 0 {
		return nil, &DeclError{Field: "files", Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &DeclError{Field: "load", Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := ctx.CompileString(schema).LookupPath(cue.ParsePath("#Listener"))
	if err := def.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return decodeListeners(value.LookupPath(cue.ParsePath("listener")), def)
}

// decodeListeners reads every field of the listener struct. Invalid
// declarations are skipped; the error joins one DeclError per failure.
func decodeListeners(v cue.Value, def cue.Value) ([]Decl, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var (
		decls []Decl
		errs  []error
	)
	for iter.Next() {
		d, err := decodeDecl(iter.Selector().Unquoted(), iter.Value(), def)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		decls = append(decls, d)
	}
	return decls, errors.Join(errs...)
}

func decodeDecl(label string, v cue.Value, def cue.Value) (Decl, error) {
	checked := def.Unify(v)
	if err := checked.Validate(cue.Concrete(true)); err != nil {
		de := formatCUEError(err).(*DeclError)
		de.ID = label
		if !de.Pos.IsValid() {
			de.Pos = fromToken(v.Pos())
		}
		return Decl{}, de
	}

	d := Decl{Pos: fromToken(v.Pos())}
	for name, dst := range map[string]*string{
		"id":       &d.ID,
		"type":     &d.Type,
		"before":   &d.Before,
		"after":    &d.After,
		"function": &d.Function,
		"class":    &d.Class,
		"method":   &d.Method,
		"service":  &d.Service,
	} {
		f := checked.LookupPath(cue.ParsePath(name))
		if !f.Exists() {
			continue
		}
		s, err := f.String()
		if err != nil {
			return Decl{}, formatCUEError(err)
		}
		*dst = s
	}
	if f := checked.LookupPath(cue.ParsePath("priority")); f.Exists() {
		p, err := f.Int64()
		if err != nil {
			return Decl{}, formatCUEError(err)
		}
		d.Priority = int(p)
	}

	if d.ID == "" {
		d.ID = label
	}
	return d, nil
}

// FindCUEFiles walks dir and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
