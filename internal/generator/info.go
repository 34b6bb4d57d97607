package generator

import (
	"github.com/alnah/go-xmd/internal/ast"
	"github.com/alnah/go-xmd/internal/render"
	"github.com/alnah/go-xmd/internal/transform"
)

// ExtractInfo reads the title, author and abstract of a document.
//
// The title is the first level-1 heading. The author and abstract are the
// first paragraph following an "author" or "abstract" heading that comes
// after the title, up to the next heading. Language is filled in later by
// the directive controller.
func ExtractInfo(root *ast.Root) render.DocInfo {
	var info render.DocInfo
	if root == nil {
		return info
	}

	titleAt := -1
	for i, n := range root.Children {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			info.Title = h.Text
			titleAt = i
			break
		}
	}
	if titleAt < 0 {
		return info
	}

	rest := root.Children[titleAt+1:]
	info.Author = keywordParagraph(rest, transform.KeywordAuthor)
	info.Abstract = keywordParagraph(rest, transform.KeywordAbstract)
	return info
}

func keywordParagraph(nodes []ast.Node, keyword string) string {
	for i, n := range nodes {
		if !transform.IsKeywordHeading(n, keyword) {
			continue
		}
		for _, next := range nodes[i+1:] {
			switch v := next.(type) {
			case *ast.Paragraph:
				return ast.PlainText(v.Inlines)
			case *ast.Heading:
				return ""
			}
		}
		return ""
	}
	return ""
}
