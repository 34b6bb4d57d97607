package main

import (
	"errors"
	"os"

	xmd "github.com/alnah/go-xmd"
	"github.com/alnah/go-xmd/internal/codeeval"
	"github.com/alnah/go-xmd/internal/config"
	"github.com/alnah/go-xmd/internal/logging"
	"github.com/alnah/go-xmd/internal/typeset"
)

// Exit codes for the xmd CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // Successful command
	ExitGeneral   = 1 // General/unexpected error, including document errors
	ExitUsage     = 2 // Invalid flags, config, or template
	ExitIO        = 3 // Source, picture, or output directory problem
	ExitEvaluator = 4 // Code evaluator unreachable or failing
	ExitTypeset   = 5 // pdflatex or Chrome failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Typesetter errors (exit 5)
	if errors.Is(err, typeset.ErrTypeset) ||
		errors.Is(err, typeset.ErrBrowserConnect) ||
		errors.Is(err, typeset.ErrPageLoad) ||
		errors.Is(err, typeset.ErrPDFGeneration) {
		return ExitTypeset
	}

	// Evaluator errors (exit 4)
	if errors.Is(err, xmd.ErrEvaluation) ||
		errors.Is(err, codeeval.ErrLaunch) ||
		errors.Is(err, codeeval.ErrNotReady) {
		return ExitEvaluator
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, logging.ErrInvalidFormat) ||
		errors.Is(err, xmd.ErrUnknownTemplate) ||
		errors.Is(err, xmd.ErrEmptySource) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, xmd.ErrReadSource) ||
		errors.Is(err, xmd.ErrResource) {
		return ExitIO
	}

	return ExitGeneral
}
