package main

import (
	"errors"

	xmd "github.com/alnah/go-xmd"
	"github.com/alnah/go-xmd/internal/codeeval"
	"github.com/alnah/go-xmd/internal/config"
	"github.com/alnah/go-xmd/internal/fileutil"
	"github.com/alnah/go-xmd/internal/generator"
	"github.com/alnah/go-xmd/internal/hints"
	"github.com/alnah/go-xmd/internal/image"
	"github.com/alnah/go-xmd/internal/typeset"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput        = errors.New("no input file specified")
	ErrUsage          = errors.New("invalid usage")
	ErrUnknownCommand = errors.New("unknown command")
	ErrWriteOutput    = errors.New("failed to write output")
)

// hintedError appends an actionable hint to the message of err.
type hintedError struct {
	err  error
	hint string
}

func (e *hintedError) Error() string { return e.err.Error() + e.hint }
func (e *hintedError) Unwrap() error { return e.err }

// withHint attaches the hint matching err. cfg may be nil when the
// configuration could not be loaded.
func withHint(err error, cfg *config.Config, configName string) error {
	if err == nil {
		return nil
	}

	var hint string
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		paths := []string{configName}
		if !fileutil.IsFilePath(configName) {
			paths = config.SearchPaths(configName)
		}
		hint = hints.ForConfigNotFound(paths)
	case errors.Is(err, xmd.ErrUnknownTemplate):
		hint = hints.ForTemplateNotFound(templateNames())
	case errors.Is(err, xmd.ErrEvaluation),
		errors.Is(err, codeeval.ErrLaunch),
		errors.Is(err, codeeval.ErrNotReady):
		url := codeeval.DefaultURL
		if cfg != nil {
			url = cfg.Evaluator.URL
		}
		hint = hints.ForEvaluator(url)
	case errors.Is(err, typeset.ErrBrowserConnect):
		hint = hints.ForBrowserConnect()
	case errors.Is(err, typeset.ErrTypeset):
		command := config.DefaultTypesetCommand
		if cfg != nil {
			command = cfg.Typeset.Command
		}
		hint = hints.ForTypesetter(command)
	case errors.Is(err, image.ErrDestinationExists):
		hint = hints.ForOutputDirectory()
	case errors.Is(err, generator.ErrUnsupportedImageExtension):
		hint = hints.ForImageExtension()
	}
	if hint == "" {
		return err
	}
	return &hintedError{err: err, hint: hint}
}

func templateNames() []string {
	names := make([]string, 0, len(xmd.Templates()))
	for _, t := range xmd.Templates() {
		names = append(names, string(t))
	}
	return names
}
