package typeset

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-xmd/internal/fileutil"
	"github.com/alnah/go-xmd/internal/process"
)

// Names of the LaTeX entry point and its product.
const (
	texSource = "main.tex"
	texPDF    = "main.pdf"
)

// LaTeX runs a TeX engine once over main.tex in the output directory.
// Only the exit status is surfaced; the engine log stays in the directory.
type LaTeX struct {
	// Command is the engine, "pdflatex" when empty.
	Command string
	Log     *zap.SugaredLogger
}

// Typeset runs "<command> -interaction=nonstopmode -output-directory=<dir>
// <dir>/main.tex". Cancelling ctx kills the engine and its helpers.
func (l *LaTeX) Typeset(ctx context.Context, dir string) (string, error) {
	command := l.Command
	if command == "" {
		command = "pdflatex"
	}
	log := l.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	src := filepath.Join(dir, texSource)
	if !fileutil.FileExists(src) {
		return "", fmt.Errorf("%w: missing %s", ErrTypeset, src)
	}

	var output bytes.Buffer
	cmd := exec.Command(command, "-interaction=nonstopmode", "-output-directory="+dir, src) // #nosec G204 -- engine comes from user configuration
	cmd.Stdout = &output
	cmd.Stderr = &output
	process.SetProcessGroup(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTypeset, command, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		process.KillProcessGroup(cmd.Process.Pid)
		<-done
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			log.Debugw("typesetter output", "command", command, "output", output.String())
			return "", fmt.Errorf("%w: %s: %w", ErrTypeset, command, err)
		}
	}

	log.Debugw("typeset document", "command", command, "dir", dir, "duration_ms", time.Since(start).Milliseconds())
	return filepath.Join(dir, texPDF), nil
}

// Close is a no-op; every run owns its process.
func (l *LaTeX) Close() error {
	return nil
}
