package parser

import (
	"github.com/alnah/go-xmd/internal/ast"
	"github.com/alnah/go-xmd/internal/directive"
	"github.com/alnah/go-xmd/internal/fileutil"
)

// References lists the files a document pulls in, relative to its
// directory, in reading order.
type References struct {
	Imports []string
	Images  []string
}

// ScanReferences collects import targets and local picture paths of root.
// Remote pictures are skipped.
func ScanReferences(root *ast.Root) References {
	var refs References
	if root != nil {
		refs.scan(root.Children)
	}
	return refs
}

func (r *References) scan(nodes []ast.Node) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *ast.RootDirective:
			r.directive(v.Clauses)
		case *ast.Paragraph:
			for _, in := range v.Inlines {
				if d, ok := in.(*ast.InlineDirective); ok {
					r.directive(d.Clauses)
				}
			}
		case *ast.Image:
			if v.Path != "" && !fileutil.IsURL(v.Path) {
				r.Images = append(r.Images, v.Path)
			}
		case *ast.Slide:
			r.scan(v.Children)
		}
	}
}

func (r *References) directive(clauses []ast.Clause) {
	name, arg, err := directive.Check(clauses)
	if err != nil || name != directive.Import || arg == "" {
		return
	}
	r.Imports = append(r.Imports, arg)
}
