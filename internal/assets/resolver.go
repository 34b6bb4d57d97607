package assets

import (
	"errors"
	"io/fs"
)

// AssetResolver combines custom and embedded loaders with fallback logic.
// When a custom loader is configured, it tries custom first, then falls back
// to embedded if the bundle is not found in the custom location.
type AssetResolver struct {
	custom   Loader // nil if no custom path configured
	embedded Loader
}

// NewAssetResolver creates an AssetResolver.
// If customBasePath is empty, only embedded bundles are used.
// Returns error if customBasePath is set but invalid.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// Bundle loads a template bundle, trying the custom loader first.
func (r *AssetResolver) Bundle(name string) (fs.FS, error) {
	if r.custom == nil {
		return r.embedded.Bundle(name)
	}

	bundle, err := r.custom.Bundle(name)
	if err == nil {
		return bundle, nil
	}

	// Only fall back for "not found" errors, not validation or I/O errors
	if !errors.Is(err, ErrBundleNotFound) {
		return nil, err
	}

	return r.embedded.Bundle(name)
}

// HasCustomLoader returns true if a custom asset loader is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ Loader = (*AssetResolver)(nil)
