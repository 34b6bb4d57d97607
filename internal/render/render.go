// Package render turns document nodes into backend markup.
//
// Every backend implements Renderer. Nothing upstream of this package knows
// about HTML or LaTeX; the generator calls exactly one Write method per node.
package render

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alnah/go-xmd/internal/extension"
)

// Sentinel errors for rendering.
var (
	ErrUnknownTemplate     = errors.New("unknown template")
	ErrInvalidHeadingLevel = errors.New("invalid heading level")
)

// Template identifies a backend.
type Template string

// Supported templates.
const (
	HTMLTufte  Template = "html_tufte"
	HTMLSlides Template = "html_slides"
	TeXDoc     Template = "tex_doc"
	TeXTufte   Template = "tex_tufte"
)

// Templates lists the supported templates in a stable order.
func Templates() []Template {
	return []Template{HTMLTufte, HTMLSlides, TeXDoc, TeXTufte}
}

// ParseTemplate validates a template id.
func ParseTemplate(s string) (Template, error) {
	for _, t := range Templates() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, s)
}

// IsHTML reports whether the template produces an HTML page.
func (t Template) IsHTML() bool {
	return t == HTMLTufte || t == HTMLSlides
}

// OutputPath is the virtual path of the main output file of t.
func (t Template) OutputPath() string {
	if t.IsHTML() {
		return "/index.html"
	}
	return "/main.tex"
}

// Mode selects whether WriteRoot produces a full page.
type Mode int

// Scaffold modes.
const (
	// Standalone wraps the flow in the backend page shell.
	Standalone Mode = iota
	// Embedded returns the flow unchanged, for imported documents.
	Embedded
)

// DocInfo is the metadata rendered by the page shell.
type DocInfo struct {
	Title    string
	Author   string
	Abstract string
	Language string
}

// Renderer produces the markup of one backend. A result of "" passed to
// the code methods means the code was not evaluated.
type Renderer interface {
	Template() Template
	WriteHeading(text string, level int) (string, error)
	WriteParagraph(content string) string
	WriteText(text string) string
	WriteBold(text string) string
	WriteItalic(text string) string
	WriteEquationInline(equation string) string
	WriteCodeInline(src, result string) string
	WriteCodeBlock(src, result string, attrs extension.Attributes) (string, error)
	WriteEquationBlock(equation string) string
	WriteImage(alt, ref, title string, attrs extension.Attributes) string
	WriteHRule() string
	WriteTheorem(title, statement, proof string) string
	WriteSlide(content string) string
	WriteRoot(flow string, info DocInfo) (string, error)
	OutputPath() string
}

// New creates the renderer of t.
func New(t Template, mode Mode) (Renderer, error) {
	switch t {
	case HTMLTufte:
		return NewHTMLTufte(mode), nil
	case HTMLSlides:
		return NewHTMLSlides(mode), nil
	case TeXDoc:
		return NewTeXDoc(mode), nil
	case TeXTufte:
		return NewTeXTufte(mode), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, t)
}

// refCounter hands out figure labels ref0, ref1, ...
type refCounter struct {
	next int
}

func (c *refCounter) nextRef() string {
	ref := "ref" + strconv.Itoa(c.next)
	c.next++
	return ref
}

// untitled is the title of a document without a level-1 heading.
const untitled = "Untitled"

func titleOrDefault(title string) string {
	if title == "" {
		return untitled
	}
	return title
}
