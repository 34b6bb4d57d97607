// Package typeset turns a compiled output directory into a PDF.
//
// LaTeX templates go through an external TeX engine; HTML templates are
// printed by headless Chrome.
package typeset

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-xmd/internal/render"
)

// Sentinel errors for typesetting.
var (
	ErrTypeset        = errors.New("typesetting failed")
	ErrBrowserConnect = errors.New("browser connection failed")
	ErrPageLoad       = errors.New("page load failed")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// DefaultTimeout bounds one page load when the context has no deadline.
const DefaultTimeout = 30 * time.Second

// Typesetter produces a PDF from an output directory written to disk and
// returns the PDF path.
type Typesetter interface {
	Typeset(ctx context.Context, dir string) (string, error)
	Close() error
}

var (
	_ Typesetter = (*LaTeX)(nil)
	_ Typesetter = (*HTMLPrinter)(nil)
)

// For returns the typesetter of a template family. command is the TeX
// engine used for LaTeX templates.
func For(t render.Template, command string, log *zap.SugaredLogger) Typesetter {
	switch t {
	case render.HTMLTufte:
		return NewHTMLPrinter(DefaultTimeout, false, log)
	case render.HTMLSlides:
		return NewHTMLPrinter(DefaultTimeout, true, log)
	}
	return &LaTeX{Command: command, Log: log}
}
