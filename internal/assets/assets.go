package assets

import "io/fs"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// Bundle loads a template bundle using the default embedded loader.
// Returns ErrBundleNotFound if the template has no embedded bundle.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func Bundle(name string) (fs.FS, error) {
	return defaultLoader.Bundle(name)
}
