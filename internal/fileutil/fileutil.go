// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathEscapes indicates a joined path resolves outside its base directory.
var ErrPathEscapes = errors.New("path escapes base directory")

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Exists returns true if anything exists at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "slides" -> false (name)
//   - "./xmd.yaml" -> true (relative path)
//   - "/etc/xmd/xmd.yaml" -> true (absolute)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsURL returns true if the string looks like a URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// JoinWithin joins rel onto base and fails with ErrPathEscapes when the
// cleaned result is not strictly inside base.
func JoinWithin(base, rel string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", base, err)
	}
	joined := filepath.Join(absBase, filepath.FromSlash(rel))
	if !strings.HasPrefix(joined, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathEscapes, rel)
	}
	return joined, nil
}

// TrimExt returns the base name of path without its extension.
func TrimExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
