//go:build integration

package typeset

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHTMLPrinter_Chrome(t *testing.T) {
	dir := t.TempDir()
	page := `<!DOCTYPE html><html><body><h1>XMD</h1><p>printed</p></body></html>`
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	p := NewHTMLPrinter(30*time.Second, false, nil)
	t.Cleanup(func() { _ = p.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	out, err := p.Typeset(ctx, dir)
	if err != nil {
		t.Fatalf("Typeset() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading PDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output does not start with %%PDF-: %q", data[:min(10, len(data))])
	}
}
