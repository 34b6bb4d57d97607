// Package ast defines the XMD document tree.
//
// Block and inline variants are closed sets: the unexported marker methods
// keep other packages from adding variants, so a type switch over the
// variants listed here is exhaustive.
package ast

import "errors"

// ErrMalformedTree indicates a node whose shape does not match its variant.
var ErrMalformedTree = errors.New("malformed tree")

// Node is a block-level element of a document.
type Node interface {
	block()
}

// Inline is a paragraph-level element.
type Inline interface {
	inline()
}

// Clause is one name[=value] entry of an extension or directive list.
type Clause struct {
	Name  string
	Value string
}

// Root is the document itself. Children are in reading order, and the order
// matters: heading levels scope the following siblings and hrules delimit
// slides.
type Root struct {
	Children []Node
}

// Heading is a section title at Level 1..6.
type Heading struct {
	Text  string
	Level int
	Ext   []Clause
}

// Paragraph is a run of inline elements.
type Paragraph struct {
	Inlines []Inline
}

// CodeBlock is a block of source code, evaluated when Run is set.
type CodeBlock struct {
	Src string
	Run bool
	Ext []Clause
}

// EquationBlock is display math.
type EquationBlock struct {
	Equation string
}

// Image references a picture by path.
type Image struct {
	Alt   string
	Path  string
	Title string
	Ext   []Clause
}

// HRule is a horizontal rule.
type HRule struct{}

// RootDirective is a directive standing on its own at block level.
type RootDirective struct {
	Clauses []Clause
}

// Theorem is a folded heading+statement+proof environment.
type Theorem struct {
	Title     string
	Statement string
	Proof     string
}

// Slide groups the blocks between two slide boundaries.
type Slide struct {
	Children []Node
}

func (*Root) block()          {}
func (*Heading) block()       {}
func (*Paragraph) block()     {}
func (*CodeBlock) block()     {}
func (*EquationBlock) block() {}
func (*Image) block()         {}
func (*HRule) block()         {}
func (*RootDirective) block() {}
func (*Theorem) block()       {}
func (*Slide) block()         {}

// Text is plain text.
type Text struct {
	Value string
}

// Bold is strongly emphasized text.
type Bold struct {
	Value string
}

// Italic is emphasized text.
type Italic struct {
	Value string
}

// CodeInline is inline source code, evaluated when Run is set.
type CodeInline struct {
	Src string
	Run bool
}

// EquationInline is inline math.
type EquationInline struct {
	Equation string
}

// InlineDirective is a directive inside a paragraph.
type InlineDirective struct {
	Clauses []Clause
}

func (*Text) inline()            {}
func (*Bold) inline()            {}
func (*Italic) inline()          {}
func (*CodeInline) inline()      {}
func (*EquationInline) inline()  {}
func (*InlineDirective) inline() {}

// Tag returns the wire tag of a block node, or "" for nil.
func Tag(n Node) string {
	switch n.(type) {
	case *Root:
		return TagStart
	case *Heading:
		return TagHeading
	case *Paragraph:
		return TagParagraph
	case *CodeBlock:
		return TagCodeBlock
	case *EquationBlock:
		return TagEquationBlock
	case *Image:
		return TagImage
	case *HRule:
		return TagHRule
	case *RootDirective:
		return TagRootDirective
	case *Theorem:
		return TagTheorem
	case *Slide:
		return TagSlide
	}
	return ""
}

// Wire tags.
const (
	TagStart           = "start"
	TagHeading         = "heading"
	TagParagraph       = "paragraph"
	TagCodeBlock       = "codeblock"
	TagEquationBlock   = "eqblock"
	TagImage           = "image"
	TagHRule           = "hrule"
	TagRootDirective   = "rootdirect"
	TagTheorem         = "environ"
	TagSlide           = "slide"
	TagText            = "text"
	TagBold            = "bold"
	TagItalic          = "italic"
	TagCodeInline      = "codeinline"
	TagEquationInline  = "eqinline"
	TagInlineDirective = "inlinedirect"
)
