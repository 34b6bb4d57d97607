package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-xmd/internal/ast"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []ast.Node
	}{
		{
			name: "heading with clauses",
			src:  "## Proof sketch {theorem=t1, fullwidth}\n",
			want: []ast.Node{
				&ast.Heading{Text: "Proof sketch", Level: 2, Ext: []ast.Clause{
					{Name: "theorem", Value: "t1"},
					{Name: "fullwidth", Value: "true"},
				}},
			},
		},
		{
			name: "setext heading",
			src:  "Title\n=====\n",
			want: []ast.Node{&ast.Heading{Text: "Title", Level: 1}},
		},
		{
			name: "paragraph inlines",
			src:  "Plain **bold** and *italic* with `code` and `!x + 1` and $e^x$.\n",
			want: []ast.Node{
				&ast.Paragraph{Inlines: []ast.Inline{
					&ast.Text{Value: "Plain "},
					&ast.Bold{Value: "bold"},
					&ast.Text{Value: " and "},
					&ast.Italic{Value: "italic"},
					&ast.Text{Value: " with "},
					&ast.CodeInline{Src: "code"},
					&ast.Text{Value: " and "},
					&ast.CodeInline{Src: "x + 1", Run: true},
					&ast.Text{Value: " and "},
					&ast.EquationInline{Equation: "e^x"},
					&ast.Text{Value: "."},
				}},
			},
		},
		{
			name: "dollar amounts stay text",
			src:  "From $5 to $6.\n",
			want: []ast.Node{ast.NewParagraph("From $5 to $6.")},
		},
		{
			name: "link keeps its text",
			src:  "See [the docs](https://example.com) now.\n",
			want: []ast.Node{ast.NewParagraph("See the docs now.")},
		},
		{
			name: "inline directive",
			src:  "Written by @{def=author} in 2024.\n",
			want: []ast.Node{
				&ast.Paragraph{Inlines: []ast.Inline{
					&ast.Text{Value: "Written by "},
					&ast.InlineDirective{Clauses: []ast.Clause{{Name: "def", Value: "author"}}},
					&ast.Text{Value: " in 2024."},
				}},
			},
		},
		{
			name: "lone directive is a root directive",
			src:  "@{import=chapters/one.xmd}\n",
			want: []ast.Node{
				&ast.RootDirective{Clauses: []ast.Clause{{Name: "import", Value: "chapters/one.xmd"}}},
			},
		},
		{
			name: "display math block",
			src:  "$$\na^2 + b^2 = c^2\n$$\n",
			want: []ast.Node{&ast.EquationBlock{Equation: "a^2 + b^2 = c^2"}},
		},
		{
			name: "one-line display math",
			src:  "$$x = 1$$\n",
			want: []ast.Node{&ast.EquationBlock{Equation: "x = 1"}},
		},
		{
			name: "display math inside text",
			src:  "so $$x$$ holds\n",
			want: []ast.Node{
				&ast.Paragraph{Inlines: []ast.Inline{
					&ast.Text{Value: "so "},
					&ast.EquationInline{Equation: "x"},
					&ast.Text{Value: " holds"},
				}},
			},
		},
		{
			name: "fenced code with run and clauses",
			src:  "```python run {hidden}\nx = 1\ny = 2\n```\n",
			want: []ast.Node{
				&ast.CodeBlock{Src: "x = 1\ny = 2", Run: true, Ext: []ast.Clause{{Name: "hidden", Value: "true"}}},
			},
		},
		{
			name: "fenced code without info",
			src:  "```\nprint(1)\n```\n",
			want: []ast.Node{&ast.CodeBlock{Src: "print(1)"}},
		},
		{
			name: "indented code never runs",
			src:  "    run()\n",
			want: []ast.Node{&ast.CodeBlock{Src: "run()"}},
		},
		{
			name: "image with title and clauses",
			src:  "![A cat](img/cat.png \"Figure 1\"){fullwidth}\n",
			want: []ast.Node{
				&ast.Image{Alt: "A cat", Path: "img/cat.png", Title: "Figure 1", Ext: []ast.Clause{{Name: "fullwidth", Value: "true"}}},
			},
		},
		{
			name: "image inside text is text",
			src:  "An ![icon](i.png) inline.\n",
			want: []ast.Node{ast.NewParagraph("An icon inline.")},
		},
		{
			name: "thematic break",
			src:  "one\n\n---\n\ntwo\n",
			want: []ast.Node{ast.NewParagraph("one"), &ast.HRule{}, ast.NewParagraph("two")},
		},
		{
			name: "list degrades to paragraphs",
			src:  "- first\n- second\n",
			want: []ast.Node{ast.NewParagraph("first"), ast.NewParagraph("second")},
		},
		{
			name: "block quote degrades to paragraphs",
			src:  "> quoted\n",
			want: []ast.Node{ast.NewParagraph("quoted")},
		},
		{
			name: "soft line breaks are kept",
			src:  "one\ntwo\n",
			want: []ast.Node{ast.NewParagraph("one\ntwo")},
		},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := p.Parse([]byte(tt.src))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got.Children); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func TestParse_Document(t *testing.T) {
	t.Parallel()

	src := `# Report

## Author

Ada Lovelace

@{lang=en}

## Draft notes {if=draft}

Only in drafts.
`
	got, err := New().Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	wantTags := []string{
		ast.TagHeading, ast.TagHeading, ast.TagParagraph,
		ast.TagRootDirective, ast.TagHeading, ast.TagParagraph,
	}
	var gotTags []string
	for _, n := range got.Children {
		gotTags = append(gotTags, ast.Tag(n))
	}
	if diff := cmp.Diff(wantTags, gotTags); diff != "" {
		t.Errorf("Parse() tags mismatch (-want +got):\n%s", diff)
	}
	if err := ast.Validate(got); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestScanReferences(t *testing.T) {
	t.Parallel()

	root := &ast.Root{Children: []ast.Node{
		&ast.RootDirective{Clauses: []ast.Clause{{Name: "import", Value: "a.xmd"}}},
		&ast.RootDirective{Clauses: []ast.Clause{{Name: "def", Value: "x"}}},
		&ast.Image{Path: "pics/one.png"},
		&ast.Image{Path: "https://example.com/remote.png"},
		&ast.Paragraph{Inlines: []ast.Inline{
			&ast.Text{Value: "see "},
			&ast.InlineDirective{Clauses: []ast.Clause{{Name: "import", Value: "b.xmd"}}},
		}},
		&ast.Slide{Children: []ast.Node{&ast.Image{Path: "two.svg"}}},
		&ast.RootDirective{Clauses: []ast.Clause{{Name: "import", Value: "c.xmd"}, {Name: "import", Value: "d.xmd"}}},
	}}

	got := ScanReferences(root)
	want := References{
		Imports: []string{"a.xmd", "b.xmd"},
		Images:  []string{"pics/one.png", "two.svg"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ScanReferences() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanReferences_Nil(t *testing.T) {
	t.Parallel()

	got := ScanReferences(nil)
	if len(got.Imports) != 0 || len(got.Images) != 0 {
		t.Errorf("ScanReferences(nil) = %+v, want empty", got)
	}
}
