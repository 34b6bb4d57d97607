package ast

import (
	"fmt"
	"strings"
)

// MaxHeadingLevel is the deepest heading level a tree may carry.
const MaxHeadingLevel = 6

// PlainText concatenates the textual value of inlines. Directives
// contribute nothing since their value is only known during generation.
func PlainText(inlines []Inline) string {
	var b strings.Builder
	for _, in := range inlines {
		switch v := in.(type) {
		case *Text:
			b.WriteString(v.Value)
		case *Bold:
			b.WriteString(v.Value)
		case *Italic:
			b.WriteString(v.Value)
		case *CodeInline:
			b.WriteString(v.Src)
		case *EquationInline:
			b.WriteString(v.Equation)
		}
	}
	return b.String()
}

// NewParagraph builds a paragraph holding a single text run.
func NewParagraph(text string) *Paragraph {
	return &Paragraph{Inlines: []Inline{&Text{Value: text}}}
}

// Validate checks the shape of every node reachable from root.
func Validate(root *Root) error {
	if root == nil {
		return fmt.Errorf("%w: nil root", ErrMalformedTree)
	}
	return validateBlocks(root.Children, "root")
}

func validateBlocks(nodes []Node, where string) error {
	for i, n := range nodes {
		at := fmt.Sprintf("%s[%d]", where, i)
		switch v := n.(type) {
		case *Heading:
			if v == nil {
				return fmt.Errorf("%w: %s: nil heading", ErrMalformedTree, at)
			}
			if v.Level < 1 || v.Level > MaxHeadingLevel {
				return fmt.Errorf("%w: %s: heading level %d outside 1..%d", ErrMalformedTree, at, v.Level, MaxHeadingLevel)
			}
		case *Paragraph:
			if v == nil {
				return fmt.Errorf("%w: %s: nil paragraph", ErrMalformedTree, at)
			}
			if err := validateInlines(v.Inlines, at); err != nil {
				return err
			}
		case *Slide:
			if v == nil {
				return fmt.Errorf("%w: %s: nil slide", ErrMalformedTree, at)
			}
			if err := validateBlocks(v.Children, at); err != nil {
				return err
			}
		case *CodeBlock, *EquationBlock, *Image, *HRule, *RootDirective, *Theorem:
			if isNilBlock(v) {
				return fmt.Errorf("%w: %s: nil %s", ErrMalformedTree, at, Tag(v))
			}
		case *Root:
			return fmt.Errorf("%w: %s: nested root", ErrMalformedTree, at)
		default:
			return fmt.Errorf("%w: %s: unexpected node %T", ErrMalformedTree, at, n)
		}
	}
	return nil
}

func validateInlines(inlines []Inline, where string) error {
	for i, in := range inlines {
		switch v := in.(type) {
		case *Text:
			if v != nil {
				continue
			}
		case *Bold:
			if v != nil {
				continue
			}
		case *Italic:
			if v != nil {
				continue
			}
		case *CodeInline:
			if v != nil {
				continue
			}
		case *EquationInline:
			if v != nil {
				continue
			}
		case *InlineDirective:
			if v != nil {
				continue
			}
		}
		return fmt.Errorf("%w: %s.inline[%d]: unexpected inline %T", ErrMalformedTree, where, i, in)
	}
	return nil
}

func isNilBlock(n Node) bool {
	switch v := n.(type) {
	case *CodeBlock:
		return v == nil
	case *EquationBlock:
		return v == nil
	case *Image:
		return v == nil
	case *HRule:
		return v == nil
	case *RootDirective:
		return v == nil
	case *Theorem:
		return v == nil
	}
	return false
}
