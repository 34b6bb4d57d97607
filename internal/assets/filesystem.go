package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader loads bundles from a directory on the filesystem.
// Implements Loader interface.
type FilesystemLoader struct {
	basePath string
}

// NewFilesystemLoader creates a FilesystemLoader for the given base path.
// Returns ErrInvalidBasePath if the path is not a valid, readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	// Resolve symlinks in base path for consistent comparisons
	realPath, err := filepath.EvalSymlinks(absPath)
	if err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}

	if _, err := os.ReadDir(absPath); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	return &FilesystemLoader{basePath: absPath}, nil
}

// Bundle returns {basePath}/{name} as a filesystem.
func (f *FilesystemLoader) Bundle(name string) (fs.FS, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	dirPath := filepath.Join(f.basePath, name)
	if err := f.verifyPathContainment(dirPath); err != nil {
		return nil, err
	}

	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrBundleNotFound, name)
		}
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", ErrBundleNotFound, name)
	}

	return os.DirFS(dirPath), nil
}

// verifyPathContainment ensures the resolved path is within basePath.
// Symlinks are resolved so a link pointing outside basePath is rejected.
func (f *FilesystemLoader) verifyPathContainment(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}

	// If EvalSymlinks fails the path does not exist yet; the prefix check
	// still applies to the unresolved path.
	realPath, err := filepath.EvalSymlinks(absPath)
	if err == nil {
		absPath = realPath
	}

	// Separator suffix prevents prefix attacks (/base/path vs /base/pathevil)
	if !strings.HasPrefix(absPath, f.basePath+string(filepath.Separator)) {
		return fmt.Errorf("%w: path escapes base directory", ErrPathTraversal)
	}

	return nil
}

// Compile-time interface check.
var _ Loader = (*FilesystemLoader)(nil)
