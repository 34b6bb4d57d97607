// Package directive resolves the def, lang and import directives of one
// compilation frame.
package directive

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/alnah/go-xmd/internal/ast"
)

// Sentinel errors for directive resolution.
var (
	ErrDirectiveCheckFailed = errors.New("directive must carry exactly one clause")
	ErrUnknownDirective     = errors.New("unknown directive")
	ErrMalformedDefinition  = errors.New("malformed definition")
	ErrImportNotFound       = errors.New("import not found")
	ErrCircularImport       = errors.New("circular import")
)

// Directive names.
const (
	Def    = "def"
	Lang   = "lang"
	Import = "import"
)

// Importer compiles an imported document and returns its generated text.
// stack is the import chain including vpath itself.
type Importer func(ctx context.Context, vpath string, src []byte, stack []string) (string, error)

// Options configures a Controller.
type Options struct {
	// Dir is the virtual directory of the document being compiled.
	Dir string
	// Stack is the chain of documents currently being compiled, outermost
	// first, including the current one.
	Stack  []string
	Source Source
	Import Importer
	Logger *zap.SugaredLogger
}

// Controller holds the definition table and language of one frame.
type Controller struct {
	defs     map[string]string
	lang     string
	dir      string
	stack    []string
	source   Source
	importer Importer
	log      *zap.SugaredLogger
}

// New creates a Controller with an empty definition table.
func New(opts Options) *Controller {
	c := &Controller{
		defs:     map[string]string{},
		dir:      opts.Dir,
		stack:    slices.Clone(opts.Stack),
		source:   opts.Source,
		importer: opts.Import,
		log:      opts.Logger,
	}
	if c.dir == "" {
		c.dir = "/"
	}
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}
	return c
}

// Process resolves one directive. inline selects the inline form of def.
// The returned text is spliced at the directive site.
func (c *Controller) Process(ctx context.Context, clauses []ast.Clause, inline bool) (string, error) {
	name, arg, err := Check(clauses)
	if err != nil {
		return "", err
	}

	switch name {
	case Def:
		if inline {
			value, ok := c.defs[arg]
			if !ok {
				c.log.Debugw("undefined definition", "name", arg)
			}
			return value, nil
		}
		defName, value, err := ParseDefinition(arg)
		if err != nil {
			return "", err
		}
		c.defs[defName] = value
		return "", nil
	case Lang:
		c.lang = canonicalLang(arg, c.log)
		return "", nil
	case Import:
		return c.importDocument(ctx, arg)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirective, name)
}

// Def returns a stored definition.
func (c *Controller) Def(name string) (string, bool) {
	v, ok := c.defs[name]
	return v, ok
}

// Lang returns the captured language tag, or "".
func (c *Controller) Lang() string {
	return c.lang
}

func (c *Controller) importDocument(ctx context.Context, rel string) (string, error) {
	if c.source == nil || c.importer == nil {
		return "", fmt.Errorf("%w: %q (no import source)", ErrImportNotFound, rel)
	}
	vpath := path.Join(c.dir, rel)
	if slices.Contains(c.stack, vpath) {
		chain := append(slices.Clone(c.stack), vpath)
		return "", fmt.Errorf("%w: %s", ErrCircularImport, strings.Join(chain, " -> "))
	}

	src, err := c.source.ReadFile(vpath)
	if err != nil {
		return "", err
	}

	c.log.Debugw("importing document", "import", vpath, "depth", len(c.stack))
	stack := append(slices.Clone(c.stack), vpath)
	out, err := c.importer(ctx, vpath, src, stack)
	if err != nil {
		return "", fmt.Errorf("importing %s: %w", vpath, err)
	}
	return out, nil
}

// Check validates that a directive carries exactly one clause and returns
// its name and argument.
func Check(clauses []ast.Clause) (name, arg string, err error) {
	if len(clauses) != 1 {
		return "", "", fmt.Errorf("%w: got %d", ErrDirectiveCheckFailed, len(clauses))
	}
	return clauses[0].Name, clauses[0].Value, nil
}

// ParseDefinition splits a root def argument of the form name[:value].
func ParseDefinition(arg string) (name, value string, err error) {
	name, value, _ = strings.Cut(arg, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedDefinition, arg)
	}
	return name, value, nil
}

func canonicalLang(arg string, log *zap.SugaredLogger) string {
	tag, err := language.Parse(arg)
	if err != nil {
		log.Warnw("keeping unrecognized language tag", "lang", arg, "error", err)
		return arg
	}
	return tag.String()
}
