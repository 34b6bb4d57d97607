package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName checks that a bundle name is safe for use as a directory
// name. Returns ErrInvalidAssetName if the name is empty or contains path
// separators, dots, or traversal characters.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
