// Package transform rewrites a parsed document tree before generation.
//
// A Pass is total and pure: it never mutates its input and returns a fresh
// root. Pipelines are selected per backend with For.
package transform

import (
	"strings"

	"github.com/alnah/go-xmd/internal/ast"
	"github.com/alnah/go-xmd/internal/directive"
	"github.com/alnah/go-xmd/internal/extension"
	"github.com/alnah/go-xmd/internal/render"
)

// Pass is one tree rewrite.
type Pass func(*ast.Root) *ast.Root

// Pipeline is an ordered list of passes.
type Pipeline []Pass

// Run applies every pass in order.
func (p Pipeline) Run(root *ast.Root) *ast.Root {
	for _, pass := range p {
		root = pass(root)
	}
	return root
}

// For returns the pipeline of a backend. Conditional content always runs
// first; backend passes operate on its output.
func For(t render.Template) Pipeline {
	p := Pipeline{ConditionalContent}
	switch t {
	case render.TeXTufte:
		p = append(p, FoldEnvironments)
	case render.HTMLSlides:
		p = append(p, PartitionSlides)
	case render.TeXDoc:
		p = append(p, StripTitleAuthor)
	}
	return p
}

// Embedded returns the pipeline of an imported document: conditional
// content only.
func Embedded() Pipeline {
	return Pipeline{ConditionalContent}
}

// ConditionalContent drops the sections guarded by an if clause naming an
// undefined definition. Definitions come from the root def directives met
// so far in the scan; the directives themselves are kept for generation.
//
// A hidden section extends to the next heading whose level is at most the
// level of the heading that opened it. Closing is checked before opening, so
// a guarded heading at the same level as the hidden one can open a new
// hidden section right away.
func ConditionalContent(root *ast.Root) *ast.Root {
	defs := directive.NewDefinitions()
	out := make([]ast.Node, 0, len(root.Children))

	hiddenLevel := 0
	for _, n := range root.Children {
		switch v := n.(type) {
		case *ast.RootDirective:
			defs.Record(v.Clauses)
		case *ast.Heading:
			if hiddenLevel > 0 {
				if v.Level > hiddenLevel {
					continue
				}
				hiddenLevel = 0
			}
			attrs, _ := extension.Resolve(v.Ext)
			if attrs.Has(extension.If) && !defs.Defined(attrs.Get(extension.If)) {
				hiddenLevel = v.Level
				continue
			}
		default:
			if hiddenLevel > 0 {
				continue
			}
		}
		out = append(out, n)
	}
	return &ast.Root{Children: out}
}

// FoldEnvironments folds a level-1 heading with a theorem clause followed
// by exactly two paragraphs into one theorem. Headings without that shape
// are left alone.
func FoldEnvironments(root *ast.Root) *ast.Root {
	in := root.Children
	out := make([]ast.Node, 0, len(in))
	for i := 0; i < len(in); {
		if th, ok := theoremAt(in[i:]); ok {
			out = append(out, th)
			i += 3
			continue
		}
		out = append(out, in[i])
		i++
	}
	return &ast.Root{Children: out}
}

func theoremAt(nodes []ast.Node) (*ast.Theorem, bool) {
	if len(nodes) < 3 {
		return nil, false
	}
	h, ok := nodes[0].(*ast.Heading)
	if !ok || h.Level != 1 {
		return nil, false
	}
	attrs, _ := extension.Resolve(h.Ext)
	if attrs.Get(extension.Theorem) == "" {
		return nil, false
	}
	statement, ok := nodes[1].(*ast.Paragraph)
	if !ok {
		return nil, false
	}
	proof, ok := nodes[2].(*ast.Paragraph)
	if !ok {
		return nil, false
	}
	return &ast.Theorem{
		Title:     h.Text,
		Statement: ast.PlainText(statement.Inlines),
		Proof:     ast.PlainText(proof.Inlines),
	}, true
}

// PartitionSlides groups the root children into slides. The first slide
// starts at the first node and every hrule starts a new one; hrules are
// consumed.
func PartitionSlides(root *ast.Root) *ast.Root {
	current := &ast.Slide{}
	slides := []ast.Node{current}
	for _, n := range root.Children {
		if _, ok := n.(*ast.HRule); ok {
			current = &ast.Slide{}
			slides = append(slides, current)
			continue
		}
		current.Children = append(current.Children, n)
	}
	return &ast.Root{Children: slides}
}

// StripTitleAuthor removes what the article shell renders itself: a leading
// level-1 heading, then the first author heading and the paragraph after
// it.
func StripTitleAuthor(root *ast.Root) *ast.Root {
	in := root.Children
	if len(in) > 0 {
		if h, ok := in[0].(*ast.Heading); ok && h.Level == 1 {
			in = in[1:]
		}
	}

	out := make([]ast.Node, 0, len(in))
	stripped := false
	for i := 0; i < len(in); i++ {
		if !stripped && IsKeywordHeading(in[i], KeywordAuthor) {
			stripped = true
			if i+1 < len(in) {
				if _, ok := in[i+1].(*ast.Paragraph); ok {
					i++
				}
			}
			continue
		}
		out = append(out, in[i])
	}
	return &ast.Root{Children: out}
}

// Reserved heading keywords introducing document metadata.
const (
	KeywordAuthor   = "author"
	KeywordAbstract = "abstract"
)

// IsKeywordHeading reports whether n is a heading of level 1 or 2 whose
// trimmed text is keyword, ignoring case.
func IsKeywordHeading(n ast.Node, keyword string) bool {
	h, ok := n.(*ast.Heading)
	if !ok || h.Level > 2 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(h.Text), keyword)
}
