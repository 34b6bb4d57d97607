// Package assets provides the static files each output template ships with:
// stylesheets, fonts and scripts for the HTML templates, class and
// bibliography style files for tex_tufte.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - bundles compiled in with go:embed
//	    ├── FilesystemLoader  - bundles from a custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// The embedded bundles are trimmed builds that keep the output usable
// offline. Full distributions (complete MathJax, reveal.js, the ET Book
// fonts) are dropped into a custom directory with the same layout.
//
// # Directory Structure
//
// Bundles are organized by template id:
//
//	{basePath}/
//	├── html_tufte/
//	│   ├── tufte.css
//	│   ├── latex.css
//	│   ├── et-book/
//	│   └── mathjax/tex-chtml.js
//	├── html_slides/
//	│   ├── dist/
//	│   └── plugin/
//	└── tex_tufte/
//	    ├── tufte-common.def
//	    ├── tufte-handout.cls
//	    └── tufte.bst
//
// # Security
//
// Bundle names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
