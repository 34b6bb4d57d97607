package directive

import (
	"fmt"

	"github.com/alnah/go-xmd/internal/ast"
	"github.com/alnah/go-xmd/internal/image"
)

// Source reads imported documents by virtual path.
type Source interface {
	ReadFile(vpath string) ([]byte, error)
}

// ImageSource reads imports from an input image.
type ImageSource struct {
	Image *image.Image
}

// ReadFile returns the component at vpath or ErrImportNotFound.
func (s ImageSource) ReadFile(vpath string) ([]byte, error) {
	if s.Image == nil {
		return nil, fmt.Errorf("%w: %s", ErrImportNotFound, vpath)
	}
	data, ok := s.Image.Get(vpath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrImportNotFound, vpath)
	}
	return data, nil
}

// Definitions is the definitions-only table used while pruning
// conditional content. It records root def directives and ignores
// everything else, including malformed arguments, which the main
// controller reports later.
type Definitions struct {
	defs map[string]string
}

// NewDefinitions creates an empty table.
func NewDefinitions() *Definitions {
	return &Definitions{defs: map[string]string{}}
}

// Record stores the definition carried by clauses, if any.
func (d *Definitions) Record(clauses []ast.Clause) {
	name, arg, err := Check(clauses)
	if err != nil || name != Def {
		return
	}
	defName, value, err := ParseDefinition(arg)
	if err != nil {
		return
	}
	d.defs[defName] = value
}

// Defined reports whether name has been defined.
func (d *Definitions) Defined(name string) bool {
	_, ok := d.defs[name]
	return ok
}
