package xmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/alnah/go-xmd/internal/fileutil"
	"github.com/alnah/go-xmd/internal/image"
	"github.com/alnah/go-xmd/internal/parser"
)

// ErrReadSource indicates the root document could not be read.
var ErrReadSource = errors.New("reading source")

// BuildInputImage loads the document at srcPath together with every
// document it imports, recursively, and every local picture they
// reference. Files are stored at their path relative to the directory of
// srcPath, so the root itself sits at "/<base name>". It returns the image
// and the virtual path of the root.
//
// References that do not exist on disk are skipped: a conditional section
// may mention a file it never uses, and the generator reports the ones that
// are actually needed.
func BuildInputImage(srcPath string) (*Image, string, error) {
	src, err := os.ReadFile(srcPath) // #nosec G304 -- source path is user-provided
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrReadSource, err)
	}

	baseDir := filepath.Dir(srcPath)
	rootVPath := "/" + filepath.Base(srcPath)
	b := &inputBuilder{
		baseDir: baseDir,
		img:     image.New("input"),
		parser:  parser.New(),
		visited: map[string]bool{},
	}
	if err := b.img.AddBytes(src, rootVPath); err != nil {
		return nil, "", categorize(err)
	}
	b.visited[rootVPath] = true
	if err := b.document(rootVPath, src); err != nil {
		return nil, "", err
	}
	return b.img, rootVPath, nil
}

type inputBuilder struct {
	baseDir string
	img     *image.Image
	parser  *parser.Parser
	visited map[string]bool
}

// document scans one already loaded document and loads what it references.
func (b *inputBuilder) document(vpath string, src []byte) error {
	root, err := b.parser.Parse(src)
	if err != nil {
		return categorize(fmt.Errorf("%s: %w", vpath, err))
	}
	refs := parser.ScanReferences(root)
	dir := path.Dir(vpath)

	for _, ref := range refs.Images {
		if _, err := b.load(path.Join(dir, ref)); err != nil {
			return err
		}
	}
	for _, ref := range refs.Imports {
		target := path.Join(dir, ref)
		data, err := b.load(target)
		if err != nil {
			return err
		}
		if data == nil {
			continue
		}
		if err := b.document(target, data); err != nil {
			return err
		}
	}
	return nil
}

// load adds the file behind vpath once. It returns nil data for files
// already loaded or missing on disk.
func (b *inputBuilder) load(vpath string) ([]byte, error) {
	if b.visited[vpath] {
		return nil, nil
	}
	b.visited[vpath] = true

	diskPath, err := fileutil.JoinWithin(b.baseDir, vpath)
	if err != nil {
		return nil, nil
	}
	data, err := os.ReadFile(diskPath) // #nosec G304 -- contained in the source directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, categorize(fmt.Errorf("%w: %s: %w", image.ErrSourceNotFound, vpath, err))
	}
	if err := b.img.AddBytes(data, vpath); err != nil {
		return nil, categorize(err)
	}
	return data, nil
}
