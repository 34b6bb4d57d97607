package render

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlighting defaults. Evaluated chunks are Python, so unmarked code is
// lexed as Python.
const (
	highlightLanguage = "python"
	highlightStyle    = "github"
)

// HighlightCSSPath is where the html_tufte page expects its highlighting
// stylesheet, relative to the output root.
const HighlightCSSPath = "__res/highlight.css"

var (
	formatterOnce sync.Once
	formatter     *chromahtml.Formatter
)

// CSS classes keep the markup small and let the stylesheet be swapped.
func htmlFormatter() *chromahtml.Formatter {
	formatterOnce.Do(func() {
		formatter = chromahtml.New(chromahtml.WithClasses(true))
	})
	return formatter
}

// highlight renders src as a classed <pre class="chroma"> block.
func highlight(src string) (string, error) {
	lexer := lexers.Get(highlightLanguage)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, src)
	if err != nil {
		return "", fmt.Errorf("tokenising code block: %w", err)
	}

	var buf bytes.Buffer
	if err := htmlFormatter().Format(&buf, styles.Get(highlightStyle), it); err != nil {
		return "", fmt.Errorf("highlighting code block: %w", err)
	}
	return buf.String(), nil
}

// HighlightCSS returns the stylesheet matching the classes emitted for
// highlighted code blocks.
func HighlightCSS() ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlFormatter().WriteCSS(&buf, styles.Get(highlightStyle)); err != nil {
		return nil, fmt.Errorf("writing highlight stylesheet: %w", err)
	}
	return buf.Bytes(), nil
}
