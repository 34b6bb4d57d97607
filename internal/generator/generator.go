// Package generator walks a document tree and renders it with one backend.
//
// A Generator owns one compilation frame: its directive controller, its
// renderer and its position in the import chain. Imports spawn nested
// generators in embedded mode that share the output image, the evaluator and
// the resource manager with their parent.
package generator

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-xmd/internal/assets"
	"github.com/alnah/go-xmd/internal/ast"
	"github.com/alnah/go-xmd/internal/codeeval"
	"github.com/alnah/go-xmd/internal/directive"
	"github.com/alnah/go-xmd/internal/extension"
	"github.com/alnah/go-xmd/internal/fileutil"
	"github.com/alnah/go-xmd/internal/image"
	"github.com/alnah/go-xmd/internal/render"
	"github.com/alnah/go-xmd/internal/transform"
)

// Sentinel errors for generation.
var (
	ErrNoEvaluator = errors.New("code chunk marked to run but no evaluator configured")
	ErrNoParser    = errors.New("import needs a parser")
)

// ParseFunc parses the source of an imported document.
type ParseFunc func(src []byte) (*ast.Root, error)

// Options configures a Generator.
type Options struct {
	Template render.Template
	Mode     render.Mode

	// Output receives the rendered document and its resources. A fresh
	// image is created when nil.
	Output *image.Image
	// Input holds the source document, its imports and its pictures.
	Input *image.Image

	Evaluator codeeval.Evaluator
	// Resources is shared with nested generators. Created from Output,
	// Input and Assets when nil.
	Resources *ResourceManager
	// Assets is the bundle loader used when Resources is nil.
	Assets assets.Loader
	// Parse is required for documents that import others.
	Parse ParseFunc

	// Dir is the virtual directory of the document, "/" by default.
	Dir string
	// Stack is the import chain, outermost first, including this document.
	Stack []string

	Hooks  Hooks
	Logger *zap.SugaredLogger
}

// Generator renders one document.
type Generator struct {
	template  render.Template
	mode      render.Mode
	out       *image.Image
	in        *image.Image
	eval      codeeval.Evaluator
	res       *ResourceManager
	parse     ParseFunc
	dir       string
	stack     []string
	hooks     Hooks
	log       *zap.SugaredLogger
	renderer  render.Renderer
	directive *directive.Controller
}

// New creates a Generator.
func New(opts Options) (*Generator, error) {
	renderer, err := render.New(opts.Template, opts.Mode)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		template: opts.Template,
		mode:     opts.Mode,
		out:      opts.Output,
		in:       opts.Input,
		eval:     opts.Evaluator,
		res:      opts.Resources,
		parse:    opts.Parse,
		dir:      opts.Dir,
		stack:    opts.Stack,
		hooks:    opts.Hooks.withDefaults(),
		log:      opts.Logger,
		renderer: renderer,
	}
	if g.out == nil {
		g.out = image.New("output")
	}
	if g.dir == "" {
		g.dir = "/"
	}
	if g.log == nil {
		g.log = zap.NewNop().Sugar()
	}
	if g.res == nil {
		g.res = NewResourceManager(g.out, g.in, opts.Assets)
	}

	var source directive.Source
	if g.in != nil {
		source = directive.ImageSource{Image: g.in}
	}
	g.directive = directive.New(directive.Options{
		Dir:    g.dir,
		Stack:  g.stack,
		Source: source,
		Import: g.importDocument,
		Logger: g.log,
	})
	return g, nil
}

// Output returns the image the generator writes to.
func (g *Generator) Output() *image.Image {
	return g.out
}

// Generate renders root. In standalone mode the page is also stored in the
// output image together with the template assets.
func (g *Generator) Generate(ctx context.Context, root *ast.Root) (string, error) {
	if err := ast.Validate(root); err != nil {
		return "", err
	}
	start := time.Now()

	info := ExtractInfo(root)
	transformed := g.pipeline().Run(root)
	if g.mode == render.Standalone {
		g.dump("ast.json", root)
		g.dump("t-ast.json", transformed)
	}

	total := len(transformed.Children)
	var flow strings.Builder
	for i, n := range transformed.Children {
		out, err := g.block(ctx, n)
		if err != nil {
			return "", err
		}
		flow.WriteString(out)
		if g.mode == render.Standalone {
			g.hooks.Progress(i+1, total)
		}
	}

	info.Language = g.directive.Lang()
	page, err := g.renderer.WriteRoot(flow.String(), info)
	if err != nil {
		return "", err
	}

	if g.mode == render.Standalone {
		if err := g.res.ServeTemplate(g.template); err != nil {
			return "", err
		}
		if err := g.out.AddString(page, g.renderer.OutputPath()); err != nil {
			return "", err
		}
	}

	g.log.Debugw("generated document",
		"template", g.template,
		"vpath", g.current(),
		"nodes", total,
		"duration_ms", time.Since(start).Milliseconds())
	return page, nil
}

// pipeline returns the passes for the current mode. Embedded documents have
// no page shell and sit inside the parent's flow, so the backend passes
// (title stripping, slide partitioning, theorem folding) do not apply.
func (g *Generator) pipeline() transform.Pipeline {
	if g.mode == render.Embedded {
		return transform.Embedded()
	}
	return transform.For(g.template)
}

func (g *Generator) block(ctx context.Context, n ast.Node) (string, error) {
	switch v := n.(type) {
	case *ast.Heading:
		g.logUnknown("heading", v.Ext)
		return g.renderer.WriteHeading(v.Text, v.Level)
	case *ast.Paragraph:
		content, err := g.inlines(ctx, v.Inlines)
		if err != nil {
			return "", err
		}
		return g.renderer.WriteParagraph(content), nil
	case *ast.CodeBlock:
		return g.codeBlock(ctx, v)
	case *ast.EquationBlock:
		return g.renderer.WriteEquationBlock(v.Equation), nil
	case *ast.Image:
		return g.image(v)
	case *ast.HRule:
		return g.renderer.WriteHRule(), nil
	case *ast.RootDirective:
		return g.directive.Process(ctx, v.Clauses, false)
	case *ast.Theorem:
		return g.renderer.WriteTheorem(v.Title, v.Statement, v.Proof), nil
	case *ast.Slide:
		var b strings.Builder
		for _, child := range v.Children {
			out, err := g.block(ctx, child)
			if err != nil {
				return "", err
			}
			b.WriteString(out)
		}
		return g.renderer.WriteSlide(b.String()), nil
	}
	return "", fmt.Errorf("%w: unexpected block %T", ast.ErrMalformedTree, n)
}

func (g *Generator) inlines(ctx context.Context, inlines []ast.Inline) (string, error) {
	var b strings.Builder
	for _, in := range inlines {
		switch v := in.(type) {
		case *ast.Text:
			b.WriteString(g.renderer.WriteText(v.Value))
		case *ast.Bold:
			b.WriteString(g.renderer.WriteBold(v.Value))
		case *ast.Italic:
			b.WriteString(g.renderer.WriteItalic(v.Value))
		case *ast.EquationInline:
			b.WriteString(g.renderer.WriteEquationInline(v.Equation))
		case *ast.CodeInline:
			result, err := g.evaluate(ctx, v.Src, v.Run)
			if err != nil {
				return "", err
			}
			b.WriteString(g.renderer.WriteCodeInline(v.Src, result))
		case *ast.InlineDirective:
			value, err := g.directive.Process(ctx, v.Clauses, true)
			if err != nil {
				return "", err
			}
			// Definitions are text; imports are already rendered markup.
			if v.Clauses[0].Name == directive.Def {
				value = g.renderer.WriteText(value)
			}
			b.WriteString(value)
		default:
			return "", fmt.Errorf("%w: unexpected inline %T", ast.ErrMalformedTree, in)
		}
	}
	return b.String(), nil
}

func (g *Generator) codeBlock(ctx context.Context, v *ast.CodeBlock) (string, error) {
	attrs := g.logUnknown("codeblock", v.Ext)
	result, err := g.evaluate(ctx, v.Src, v.Run)
	if err != nil {
		return "", err
	}
	if attrs.IsTrue(extension.Hidden) {
		return "", nil
	}
	return g.renderer.WriteCodeBlock(v.Src, result, attrs)
}

// evaluate runs src when run is set. "" means not evaluated.
func (g *Generator) evaluate(ctx context.Context, src string, run bool) (string, error) {
	if !run {
		return "", nil
	}
	if g.eval == nil {
		return "", ErrNoEvaluator
	}
	res, err := g.eval.Evaluate(ctx, src)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

func (g *Generator) image(v *ast.Image) (string, error) {
	attrs := g.logUnknown("image", v.Ext)
	// Remote pictures are referenced as they are.
	if fileutil.IsURL(v.Path) {
		return g.renderer.WriteImage(v.Alt, v.Path, v.Title, attrs), nil
	}
	ref, err := g.res.ServeImage(g.resolve(v.Path))
	if err != nil {
		return "", err
	}
	return g.renderer.WriteImage(v.Alt, ref, v.Title, attrs), nil
}

// resolve maps a document-relative reference to a virtual path.
func (g *Generator) resolve(ref string) string {
	return path.Join(g.dir, ref)
}

// importDocument compiles an imported document in a nested generator.
func (g *Generator) importDocument(ctx context.Context, vpath string, src []byte, stack []string) (string, error) {
	if g.parse == nil {
		return "", fmt.Errorf("%w: %s", ErrNoParser, vpath)
	}
	root, err := g.parse(src)
	if err != nil {
		return "", err
	}

	nested, err := New(Options{
		Template:  g.template,
		Mode:      render.Embedded,
		Output:    g.out,
		Input:     g.in,
		Evaluator: g.eval,
		Resources: g.res,
		Parse:     g.parse,
		Dir:       path.Dir(vpath),
		Stack:     stack,
		Logger:    g.log,
	})
	if err != nil {
		return "", err
	}
	return nested.Generate(ctx, root)
}

func (g *Generator) logUnknown(node string, clauses []ast.Clause) extension.Attributes {
	attrs, unknown := extension.Resolve(clauses)
	for name, value := range unknown {
		g.log.Warnw("ignoring unknown extension clause", "node", node, "clause", name, "value", value)
	}
	return attrs
}

func (g *Generator) dump(name string, root *ast.Root) {
	data, err := ast.Encode(root)
	if err != nil {
		g.log.Warnw("skipping debug dump", "name", name, "error", err)
		return
	}
	g.hooks.Debug(name, data)
}

func (g *Generator) current() string {
	if len(g.stack) == 0 {
		return ""
	}
	return g.stack[len(g.stack)-1]
}
