// Package image implements the resource/output image: a virtual,
// path-addressed bag of byte blobs that is filled during compilation and
// handed to exactly one serializer afterwards.
package image

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// Sentinel errors for image operations.
var (
	ErrDuplicateVirtualPath = errors.New("duplicate virtual path")
	ErrSourceNotFound       = errors.New("source not found")
	ErrVPathIllegal         = errors.New("illegal virtual path")
	ErrDestinationExists    = errors.New("destination already exists")
	ErrComponentNotFound    = errors.New("component not found")
)

// Component is one blob of an image.
type Component struct {
	VPath string
	Data  []byte
}

// Image is an ordered collection of components keyed by virtual path.
// Paths are unique case-insensitively. An Image is not safe for concurrent
// mutation; a compilation only ever has one active writer.
type Image struct {
	name       string
	components []Component
	index      map[string]int
}

// New creates an empty image.
func New(name string) *Image {
	return &Image{name: name, index: map[string]int{}}
}

// Name returns the image name.
func (im *Image) Name() string {
	return im.name
}

// Len returns the number of components.
func (im *Image) Len() int {
	return len(im.components)
}

// Components returns a copy of the components in insertion order.
func (im *Image) Components() []Component {
	out := make([]Component, len(im.components))
	copy(out, im.components)
	return out
}

// Get returns the data stored at vpath.
func (im *Image) Get(vpath string) ([]byte, bool) {
	i, ok := im.index[key(vpath)]
	if !ok {
		return nil, false
	}
	return im.components[i].Data, true
}

// Has reports whether vpath is taken.
func (im *Image) Has(vpath string) bool {
	_, ok := im.index[key(vpath)]
	return ok
}

// AddString stores text at vpath.
func (im *Image) AddString(value, vpath string) error {
	return im.AddBytes([]byte(value), vpath)
}

// AddBytes stores data at vpath.
func (im *Image) AddBytes(data []byte, vpath string) error {
	k := key(vpath)
	if _, ok := im.index[k]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateVirtualPath, vpath)
	}
	im.index[k] = len(im.components)
	im.components = append(im.components, Component{VPath: vpath, Data: data})
	return nil
}

// AddFromFilesystem stores the file at src under vpath, or, for a
// directory, every descendant file under vpath/relative.
func (im *Image) AddFromFilesystem(src, vpath string) error {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, src)
		}
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if !info.IsDir() {
		data, err := os.ReadFile(src) // #nosec G304 -- caller-chosen source
		if err != nil {
			return fmt.Errorf("reading %s: %w", src, err)
		}
		return im.AddBytes(data, vpath)
	}
	return im.AddFS(os.DirFS(src), ".", vpath)
}

// AddFS stores name from fsys under vpath, walking directories.
func (im *Image) AddFS(fsys fs.FS, name, vpath string) error {
	info, err := fs.Stat(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, name)
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if !info.IsDir() {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		return im.AddBytes(data, vpath)
	}

	return fs.WalkDir(fsys, name, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, name), "/")
		if name == "." {
			rel = p
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		return im.AddBytes(data, joinVPath(vpath, rel))
	})
}

// AddFromImage copies the component at srcVPath of other to dstVPath. When
// srcVPath names no component but prefixes some, the whole subtree is
// rebased under dstVPath.
func (im *Image) AddFromImage(other *Image, srcVPath, dstVPath string) error {
	if data, ok := other.Get(srcVPath); ok {
		return im.AddBytes(data, dstVPath)
	}

	prefix := strings.TrimSuffix(srcVPath, "/") + "/"
	copied := 0
	for _, c := range other.components {
		if len(c.VPath) < len(prefix) || !strings.EqualFold(c.VPath[:len(prefix)], prefix) {
			continue
		}
		if err := im.AddBytes(c.Data, joinVPath(dstVPath, c.VPath[len(prefix):])); err != nil {
			return err
		}
		copied++
	}
	if copied == 0 {
		return fmt.Errorf("%w: %q in image %q", ErrComponentNotFound, srcVPath, other.name)
	}
	return nil
}

// String lists the image content, one component per line.
func (im *Image) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "image %q (%d components)\n", im.name, len(im.components))
	for _, c := range im.components {
		fmt.Fprintf(&b, "  %s (%d bytes)\n", c.VPath, len(c.Data))
	}
	return b.String()
}

// CheckVPath validates that vpath starts with exactly one '/'.
func CheckVPath(vpath string) error {
	if len(vpath) < 2 || vpath[0] != '/' || vpath[1] == '/' {
		return fmt.Errorf("%w: %q", ErrVPathIllegal, vpath)
	}
	return nil
}

func key(vpath string) string {
	return strings.ToLower(vpath)
}

func joinVPath(base, rel string) string {
	if rel == "" {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/" + path.Clean(rel)
}
