package generator

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/alnah/go-xmd/internal/assets"
	"github.com/alnah/go-xmd/internal/image"
	"github.com/alnah/go-xmd/internal/render"
)

// Sentinel errors for resource serving.
var (
	ErrUnsupportedImageExtension = errors.New("unsupported image extension")
	ErrImageNotFound             = errors.New("image not found")
)

// Output layout.
const (
	resourceDir = "/__res"
	imagesDir   = resourceDir + "/images"
	imagePrefix = "imm"
)

var allowedImageExts = []string{".jpg", ".jpeg", ".png", ".svg"}

// templateAsset maps one entry of a template bundle to its output location.
type templateAsset struct {
	name  string
	vpath string
}

var templateAssets = map[render.Template][]templateAsset{
	render.HTMLTufte: {
		{"tufte.css", resourceDir + "/tufte.css"},
		{"latex.css", resourceDir + "/latex.css"},
		{"et-book", resourceDir + "/et-book"},
		{"mathjax", resourceDir + "/mathjax"},
	},
	render.HTMLSlides: {
		{"dist", resourceDir + "/dist"},
		{"plugin", resourceDir + "/plugin"},
	},
	// LaTeX needs the class files next to main.tex.
	render.TeXTufte: {
		{"tufte-common.def", "/tufte-common.def"},
		{"tufte-handout.cls", "/tufte-handout.cls"},
		{"tufte.bst", "/tufte.bst"},
	},
}

// ResourceManager copies pictures and template assets into the output
// image. One manager is shared by a generator and all its nested import
// generators so image ids never clash.
type ResourceManager struct {
	out    *image.Image
	in     *image.Image
	loader assets.Loader

	mu   sync.Mutex
	next int
}

// NewResourceManager creates a manager writing to out and reading pictures
// from in. A nil loader uses the embedded bundles.
func NewResourceManager(out, in *image.Image, loader assets.Loader) *ResourceManager {
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}
	return &ResourceManager{out: out, in: in, loader: loader}
}

// ServeImage copies the picture at vpath of the input image to
// /__res/images/imm<N><ext> and returns the reference to embed in the
// document, relative to the output root.
func (m *ResourceManager) ServeImage(vpath string) (string, error) {
	ext := path.Ext(vpath)
	if !isAllowedImageExt(ext) {
		return "", fmt.Errorf("%w: %q, allowed %s", ErrUnsupportedImageExtension, ext, strings.Join(allowedImageExts, ", "))
	}
	if m.in == nil || !m.in.Has(vpath) {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, vpath)
	}

	m.mu.Lock()
	name := imagePrefix + strconv.Itoa(m.next) + ext
	m.next++
	m.mu.Unlock()

	dst := imagesDir + "/" + name
	if err := m.out.AddFromImage(m.in, vpath, dst); err != nil {
		return "", err
	}
	return strings.TrimPrefix(dst, "/"), nil
}

// ServeTemplate copies the static assets of t into the output image.
func (m *ResourceManager) ServeTemplate(t render.Template) error {
	entries := templateAssets[t]
	if len(entries) > 0 {
		bundle, err := m.loader.Bundle(string(t))
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := m.out.AddFS(bundle, e.name, e.vpath); err != nil {
				return fmt.Errorf("serving %s asset %s: %w", t, e.name, err)
			}
		}
	}

	if t == render.HTMLTufte {
		css, err := render.HighlightCSS()
		if err != nil {
			return err
		}
		if err := m.out.AddBytes(css, "/"+render.HighlightCSSPath); err != nil {
			return err
		}
	}
	return nil
}

func isAllowedImageExt(ext string) bool {
	for _, allowed := range allowedImageExts {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}
