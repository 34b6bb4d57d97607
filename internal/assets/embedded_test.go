package assets

import (
	"errors"
	"io/fs"
	"testing"
)

func TestEmbeddedLoader_Bundle(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name  string
		files []string
	}{
		{
			name:  "html_tufte",
			files: []string{"tufte.css", "latex.css", "mathjax/tex-chtml.js"},
		},
		{
			name: "html_slides",
			files: []string{
				"dist/reset.css", "dist/reveal.css", "dist/reveal.js", "dist/theme/white.css",
				"plugin/highlight/monokai.css", "plugin/highlight/highlight.js",
				"plugin/notes/notes.js", "plugin/math/math.js",
			},
		},
		{
			name:  "tex_tufte",
			files: []string{"tufte-common.def", "tufte-handout.cls", "tufte.bst"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bundle, err := loader.Bundle(tt.name)
			if err != nil {
				t.Fatalf("Bundle(%q) error = %v", tt.name, err)
			}
			for _, f := range tt.files {
				data, err := fs.ReadFile(bundle, f)
				if err != nil {
					t.Errorf("Bundle(%q) missing %s: %v", tt.name, f, err)
					continue
				}
				if len(data) == 0 {
					t.Errorf("Bundle(%q) %s is empty", tt.name, f)
				}
			}
		})
	}
}

func TestEmbeddedLoader_BundleRootedAtTemplate(t *testing.T) {
	t.Parallel()

	bundle, err := NewEmbeddedLoader().Bundle("tex_tufte")
	if err != nil {
		t.Fatalf("Bundle() error = %v", err)
	}

	entries, err := fs.ReadDir(bundle, ".")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 3 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Bundle(\"tex_tufte\") entries = %v, want 3 files", names)
	}
}

func TestEmbeddedLoader_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"template without bundle", "tex_doc", ErrBundleNotFound},
		{"unknown template", "nonexistent", ErrBundleNotFound},
		{"empty name", "", ErrInvalidAssetName},
		{"path traversal", "../bundles", ErrInvalidAssetName},
		{"nested path", "html_slides/dist", ErrInvalidAssetName},
	}

	loader := NewEmbeddedLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := loader.Bundle(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Bundle(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestBundle_UsesEmbedded(t *testing.T) {
	t.Parallel()

	bundle, err := Bundle("html_tufte")
	if err != nil {
		t.Fatalf("Bundle() error = %v", err)
	}
	if _, err := fs.Stat(bundle, "tufte.css"); err != nil {
		t.Errorf("Bundle(\"html_tufte\") tufte.css: %v", err)
	}
}
