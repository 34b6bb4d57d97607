package typeset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-xmd/internal/fileutil"
	"github.com/alnah/go-xmd/internal/process"
)

// Names of the HTML entry point and its product.
const (
	htmlSource = "index.html"
	htmlPDF    = "index.pdf"
)

// slidesQuery switches reveal.js to its print layout.
const slidesQuery = "?print-pdf"

// pdfRenderer renders a local HTML file to PDF bytes.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, url string, opts *proto.PagePrintToPDF) ([]byte, error)
	Close() error
}

var _ pdfRenderer = (*rodRenderer)(nil)

// HTMLPrinter prints index.html of an output directory to index.pdf with
// headless Chrome. The browser starts on first use and is reused until
// Close. Safe for concurrent use.
type HTMLPrinter struct {
	slides   bool
	log      *zap.SugaredLogger
	mu       sync.Mutex
	renderer pdfRenderer
}

// NewHTMLPrinter creates a printer. slides selects the landscape reveal.js
// print layout.
func NewHTMLPrinter(timeout time.Duration, slides bool, log *zap.SugaredLogger) *HTMLPrinter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &HTMLPrinter{slides: slides, log: log, renderer: newRodRenderer(timeout)}
}

// Typeset writes <dir>/index.pdf.
func (p *HTMLPrinter) Typeset(ctx context.Context, dir string) (string, error) {
	src := filepath.Join(dir, htmlSource)
	if !fileutil.FileExists(src) {
		return "", fmt.Errorf("%w: missing %s", ErrTypeset, src)
	}
	abs, err := filepath.Abs(src)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTypeset, err)
	}

	url := "file://" + filepath.ToSlash(abs)
	if p.slides {
		url += slidesQuery
	}

	start := time.Now()
	p.mu.Lock()
	data, err := p.renderer.RenderFromFile(ctx, url, p.printOptions())
	p.mu.Unlock()
	if err != nil {
		return "", err
	}

	out := filepath.Join(dir, htmlPDF)
	if err := os.WriteFile(out, data, 0o644); err != nil { // #nosec G306 -- output files are meant to be shared
		return "", fmt.Errorf("%w: writing %s: %w", ErrTypeset, out, err)
	}
	p.log.Debugw("printed document", "url", url, "bytes", len(data), "duration_ms", time.Since(start).Milliseconds())
	return out, nil
}

// Close releases the browser.
func (p *HTMLPrinter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renderer.Close()
}

// Page dimensions in inches (US Letter).
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.5
)

func (p *HTMLPrinter) printOptions() *proto.PagePrintToPDF {
	opts := &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	}
	if p.slides {
		opts.Landscape = true
		opts.MarginTop = floatPtr(0)
		opts.MarginBottom = floatPtr(0)
		opts.MarginLeft = floatPtr(0)
		opts.MarginRight = floatPtr(0)
		opts.PreferCSSPageSize = true
	}
	return opts
}

func floatPtr(v float64) *float64 {
	return &v
}

// rodRenderer drives Chrome through go-rod. Rod downloads Chromium on first
// run when no browser is installed.
type rodRenderer struct {
	timeout  time.Duration
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()
	// Pre-installed browser (Docker/containerized environments).
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	// The sandbox does not work in CI and most containers.
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l
	r.browser = browser
	return nil
}

// RenderFromFile opens url in a new page and prints it.
func (r *rodRenderer) RenderFromFile(ctx context.Context, url string, opts *proto.PagePrintToPDF) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	if err := page.Context(ctx).Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := page.Context(ctx).PDF(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

// Close closes the browser and kills what is left of its process tree.
func (r *rodRenderer) Close() error {
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	if pid := r.launcher.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	r.launcher.Kill()
	r.browser = nil
	r.launcher = nil
	return err
}
