package xmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/alnah/go-xmd/internal/assets"
	"github.com/alnah/go-xmd/internal/ast"
	"github.com/alnah/go-xmd/internal/codeeval"
	"github.com/alnah/go-xmd/internal/directive"
	"github.com/alnah/go-xmd/internal/generator"
	"github.com/alnah/go-xmd/internal/image"
	"github.com/alnah/go-xmd/internal/parser"
	"github.com/alnah/go-xmd/internal/render"
)

// Error categories. Compile wraps every failure with one of them, so
// callers can test either the category or the underlying sentinel with
// errors.Is.
var (
	// ErrMalformedTree reports a document tree the generator cannot walk,
	// including sources the parser could not map onto a tree.
	ErrMalformedTree = ast.ErrMalformedTree
	// ErrDirective reports a failed def, lang or import directive.
	ErrDirective = errors.New("directive failed")
	// ErrEvaluation reports an evaluator that could not run a code chunk.
	ErrEvaluation = errors.New("code evaluation failed")
	// ErrResource reports a picture, asset bundle or output path problem.
	ErrResource = errors.New("resource unavailable")
	// ErrUnknownTemplate reports a template id outside the four backends.
	ErrUnknownTemplate = render.ErrUnknownTemplate
)

// Sentinel errors of the library surface.
var (
	ErrEmptySource = errors.New("source cannot be empty")
	ErrRemote      = errors.New("remote compilation failed")
)

// categories maps internal sentinels to their category, first match wins.
var categories = []struct {
	category error
	causes   []error
}{
	{ErrMalformedTree, []error{ast.ErrMalformedTree, parser.ErrParse, render.ErrInvalidHeadingLevel}},
	{ErrUnknownTemplate, []error{render.ErrUnknownTemplate}},
	{ErrEvaluation, []error{
		codeeval.ErrSessionCreate, codeeval.ErrEvaluation, codeeval.ErrNotReady,
		codeeval.ErrLaunch, generator.ErrNoEvaluator,
	}},
	{ErrDirective, []error{
		directive.ErrDirectiveCheckFailed, directive.ErrUnknownDirective,
		directive.ErrMalformedDefinition, directive.ErrImportNotFound,
		directive.ErrCircularImport, generator.ErrNoParser,
	}},
	{ErrResource, []error{
		generator.ErrUnsupportedImageExtension, generator.ErrImageNotFound,
		image.ErrDuplicateVirtualPath, image.ErrSourceNotFound, image.ErrVPathIllegal,
		image.ErrDestinationExists, image.ErrComponentNotFound,
		assets.ErrBundleNotFound, assets.ErrInvalidAssetName, assets.ErrInvalidBasePath,
		assets.ErrAssetRead, assets.ErrPathTraversal,
	}},
}

// categorize wraps err with its category. Cancellation and errors already
// carrying a category pass through unchanged.
func categorize(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	for _, c := range categories {
		for _, cause := range c.causes {
			if !errors.Is(err, cause) {
				continue
			}
			if errors.Is(err, c.category) {
				return err
			}
			return fmt.Errorf("%w: %w", c.category, err)
		}
	}
	return err
}
