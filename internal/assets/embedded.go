package assets

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed all:bundles
var bundles embed.FS

// EmbeddedLoader loads bundles from the embedded filesystem.
// Implements Loader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// Bundle returns the embedded bundle of a template.
func (e *EmbeddedLoader) Bundle(name string) (fs.FS, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	dir := "bundles/" + name
	info, err := fs.Stat(bundles, dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrBundleNotFound, name)
	}

	sub, err := fs.Sub(bundles, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return sub, nil
}

// Compile-time interface check.
var _ Loader = (*EmbeddedLoader)(nil)
