package assets

import "io/fs"

// Loader defines the contract for loading template bundles.
type Loader interface {
	// Bundle returns the static files of a template, rooted at the bundle
	// directory. Returns ErrBundleNotFound if the template has none.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	Bundle(name string) (fs.FS, error)
}
