// Package parser turns XMD source into a document tree.
//
// XMD is CommonMark with a few additions: $math$ and $$display math$$,
// @{name=value} directives, {clauses} after headings, images and code fence
// info strings, a "run" word in fence info strings and inline code spans
// starting with '!' for evaluated code. Block structure comes from goldmark;
// the result is mapped onto the closed XMD node set.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/alnah/go-xmd/internal/ast"
	"github.com/alnah/go-xmd/internal/extension"
)

// ErrParse indicates the source could not be mapped onto a document tree.
var ErrParse = errors.New("parse failed")

// Markers recognized in code.
const (
	runWord   = "run"
	runPrefix = "!"
)

// trailingClauses matches a {clause,list} at the end of a heading or after
// an image.
var trailingClauses = regexp.MustCompile(`\s*\{([^{}]*)\}\s*$`)

// Parser parses XMD documents. Safe for concurrent use.
type Parser struct {
	md goldmark.Markdown
}

// New creates a Parser.
func New() *Parser {
	md := goldmark.New(
		goldmark.WithParserOptions(
			gmparser.WithInlineParsers(
				util.Prioritized(&mathParser{}, 150),
				util.Prioritized(&directiveParser{}, 150),
			),
		),
	)
	return &Parser{md: md}
}

// Parse parses src into a document tree.
func (p *Parser) Parse(src []byte) (*ast.Root, error) {
	doc := p.md.Parser().Parse(text.NewReader(src))

	b := &builder{src: src}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		b.block(n)
	}
	if b.err != nil {
		return nil, b.err
	}
	return &ast.Root{Children: b.out}, nil
}

// builder maps goldmark blocks onto XMD nodes.
type builder struct {
	src []byte
	out []ast.Node
	err error
}

func (b *builder) block(n gmast.Node) {
	switch v := n.(type) {
	case *gmast.Heading:
		raw, clauses := splitClauses(strings.TrimSpace(linesText(v, b.src)))
		b.out = append(b.out, &ast.Heading{Text: raw, Level: v.Level, Ext: clauses})
	case *gmast.Paragraph:
		b.paragraph(v)
	case *gmast.TextBlock:
		b.paragraph(v)
	case *gmast.FencedCodeBlock:
		b.out = append(b.out, b.fencedCode(v))
	case *gmast.CodeBlock:
		b.out = append(b.out, &ast.CodeBlock{Src: codeText(v, b.src)})
	case *gmast.ThematicBreak:
		b.out = append(b.out, &ast.HRule{})
	case *gmast.List, *gmast.ListItem, *gmast.Blockquote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			b.block(c)
		}
	case *gmast.HTMLBlock:
		if s := strings.TrimSpace(linesText(v, b.src)); s != "" {
			b.out = append(b.out, ast.NewParagraph(s))
		}
	default:
		if b.err == nil {
			b.err = fmt.Errorf("%w: unsupported block %s", ErrParse, n.Kind())
		}
	}
}

// paragraph emits a paragraph, or the block a lone image, directive or
// display equation stands for.
func (b *builder) paragraph(n gmast.Node) {
	if img, ok := b.loneImage(n); ok {
		b.out = append(b.out, img)
		return
	}

	inlines := b.inlines(n)
	if lone := soleInline(inlines); lone != nil {
		switch v := lone.(type) {
		case *ast.InlineDirective:
			b.out = append(b.out, &ast.RootDirective{Clauses: v.Clauses})
			return
		case *displayEquation:
			b.out = append(b.out, &ast.EquationBlock{Equation: v.Equation})
			return
		}
	}

	for i, in := range inlines {
		if d, ok := in.(*displayEquation); ok {
			inlines[i] = &ast.EquationInline{Equation: d.Equation}
		}
	}
	if len(inlines) > 0 {
		b.out = append(b.out, &ast.Paragraph{Inlines: inlines})
	}
}

// loneImage matches a paragraph holding one image and optional clauses.
func (b *builder) loneImage(n gmast.Node) (*ast.Image, bool) {
	img, ok := n.FirstChild().(*gmast.Image)
	if !ok {
		return nil, false
	}
	var clauses []ast.Clause
	if rest := img.NextSibling(); rest != nil {
		var tail strings.Builder
		for c := rest; c != nil; c = c.NextSibling() {
			t, ok := c.(*gmast.Text)
			if !ok {
				return nil, false
			}
			tail.Write(t.Segment.Value(b.src))
		}
		m := trailingClauses.FindStringSubmatch(tail.String())
		if m == nil || strings.TrimSpace(tail.String()) != strings.TrimSpace(m[0]) {
			return nil, false
		}
		clauses = extension.Split(m[1])
	}
	return &ast.Image{
		Alt:   plainText(img, b.src),
		Path:  string(img.Destination),
		Title: string(img.Title),
		Ext:   clauses,
	}, true
}

// displayEquation carries $$..$$ until the paragraph decides whether it is
// a block. It never leaves this package.
type displayEquation struct {
	ast.EquationInline
}

func (b *builder) inlines(n gmast.Node) []ast.Inline {
	var out []ast.Inline
	appendText := func(s string) {
		if s == "" {
			return
		}
		if last, ok := lastText(out); ok {
			last.Value += s
			return
		}
		out = append(out, &ast.Text{Value: s})
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *gmast.Text:
			appendText(string(v.Segment.Value(b.src)))
			if v.SoftLineBreak() || v.HardLineBreak() {
				appendText("\n")
			}
		case *gmast.String:
			appendText(string(v.Value))
		case *gmast.Emphasis:
			value := plainText(v, b.src)
			if v.Level >= 2 {
				out = append(out, &ast.Bold{Value: value})
			} else {
				out = append(out, &ast.Italic{Value: value})
			}
		case *gmast.CodeSpan:
			src := plainText(v, b.src)
			if rest, ok := strings.CutPrefix(src, runPrefix); ok {
				out = append(out, &ast.CodeInline{Src: strings.TrimSpace(rest), Run: true})
			} else {
				out = append(out, &ast.CodeInline{Src: src})
			}
		case *mathNode:
			if v.Display {
				out = append(out, &displayEquation{ast.EquationInline{Equation: v.Equation}})
			} else {
				out = append(out, &ast.EquationInline{Equation: v.Equation})
			}
		case *directiveNode:
			out = append(out, &ast.InlineDirective{Clauses: v.Clauses})
		case *gmast.AutoLink:
			appendText(string(v.URL(b.src)))
		case *gmast.RawHTML:
			var raw strings.Builder
			for i := 0; i < v.Segments.Len(); i++ {
				seg := v.Segments.At(i)
				raw.Write(seg.Value(b.src))
			}
			appendText(raw.String())
		default:
			// Links and images inside running text keep their text.
			appendText(plainText(c, b.src))
		}
	}

	// Whitespace around a lone directive or display equation is not content.
	if len(out) > 1 && hasSpecial(out) {
		trimmed := make([]ast.Inline, 0, 1)
		for _, in := range out {
			if t, ok := in.(*ast.Text); ok && strings.TrimSpace(t.Value) == "" {
				continue
			}
			trimmed = append(trimmed, in)
		}
		out = trimmed
	}
	return out
}

func (b *builder) fencedCode(v *gmast.FencedCodeBlock) *ast.CodeBlock {
	cb := &ast.CodeBlock{Src: codeText(v, b.src)}
	if v.Info == nil {
		return cb
	}
	info, clauses := splitClauses(strings.TrimSpace(string(v.Info.Segment.Value(b.src))))
	cb.Ext = clauses
	for _, word := range strings.Fields(info) {
		if word == runWord {
			cb.Run = true
		}
	}
	return cb
}

// splitClauses separates a trailing {clause,list} from s.
func splitClauses(s string) (string, []ast.Clause) {
	loc := trailingClauses.FindStringSubmatchIndex(s)
	if loc == nil {
		return s, nil
	}
	return strings.TrimSpace(s[:loc[0]]), extension.Split(s[loc[2]:loc[3]])
}

// hasSpecial reports whether inlines are one directive or display equation
// padded with text.
func hasSpecial(inlines []ast.Inline) bool {
	n := 0
	for _, in := range inlines {
		switch in.(type) {
		case *ast.Text:
		case *ast.InlineDirective, *displayEquation:
			n++
		default:
			return false
		}
	}
	return n == 1
}

func soleInline(inlines []ast.Inline) ast.Inline {
	if len(inlines) != 1 {
		return nil
	}
	return inlines[0]
}

func lastText(inlines []ast.Inline) (*ast.Text, bool) {
	if len(inlines) == 0 {
		return nil, false
	}
	t, ok := inlines[len(inlines)-1].(*ast.Text)
	return t, ok
}

// linesText joins the source lines of a block.
func linesText(n gmast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

func codeText(n gmast.Node, src []byte) string {
	return strings.TrimSuffix(linesText(n, src), "\n")
}

// plainText concatenates the text below n.
func plainText(n gmast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *gmast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(v.Value)
		case *mathNode:
			b.WriteString(v.Equation)
		default:
			b.WriteString(plainText(c, src))
		}
	}
	return b.String()
}

// inlineShape guards the inline variants produced here.
var _ ast.Inline = (*displayEquation)(nil)
