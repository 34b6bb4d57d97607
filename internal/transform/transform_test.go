package transform

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-xmd/internal/ast"
	"github.com/alnah/go-xmd/internal/render"
)

func heading(text string, level int, ext ...ast.Clause) *ast.Heading {
	return &ast.Heading{Text: text, Level: level, Ext: ext}
}

func def(name string) *ast.RootDirective {
	return &ast.RootDirective{Clauses: []ast.Clause{{Name: "def", Value: name}}}
}

func ifClause(name string) ast.Clause {
	return ast.Clause{Name: "if", Value: name}
}

func texts(root *ast.Root) []string {
	var out []string
	for _, n := range root.Children {
		switch v := n.(type) {
		case *ast.Heading:
			out = append(out, "h:"+v.Text)
		case *ast.Paragraph:
			out = append(out, "p:"+ast.PlainText(v.Inlines))
		case *ast.RootDirective:
			out = append(out, "def:"+v.Clauses[0].Value)
		default:
			out = append(out, ast.Tag(n))
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// TestConditionalContent - Guarded sections
// ---------------------------------------------------------------------------

func TestConditionalContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []ast.Node
		want []string
	}{
		{
			name: "empty tree",
			in:   nil,
			want: nil,
		},
		{
			name: "hidden section up to the next sibling heading",
			in: []ast.Node{
				heading("Shown", 2), ast.NewParagraph("a"),
				heading("Hidden", 2, ifClause("flag")), ast.NewParagraph("b"),
				heading("Next", 2), ast.NewParagraph("c"),
			},
			want: []string{"h:Shown", "p:a", "h:Next", "p:c"},
		},
		{
			name: "defined flag shows the section",
			in: []ast.Node{
				def("flag"),
				heading("Shown", 2), ast.NewParagraph("a"),
				heading("Guarded", 2, ifClause("flag")), ast.NewParagraph("b"),
			},
			want: []string{"def:flag", "h:Shown", "p:a", "h:Guarded", "p:b"},
		},
		{
			name: "nested headings stay hidden",
			in: []ast.Node{
				heading("Hidden", 2, ifClause("flag")),
				heading("Sub", 3), ast.NewParagraph("x"),
				heading("Up", 1), ast.NewParagraph("y"),
			},
			want: []string{"h:Up", "p:y"},
		},
		{
			name: "closing is checked before opening",
			in: []ast.Node{
				heading("One", 2, ifClause("a")), ast.NewParagraph("x"),
				heading("Two", 2, ifClause("b")), ast.NewParagraph("y"),
				heading("Three", 2), ast.NewParagraph("z"),
			},
			want: []string{"h:Three", "p:z"},
		},
		{
			name: "definition after the guard does not apply",
			in: []ast.Node{
				heading("Guarded", 1, ifClause("late")), ast.NewParagraph("x"),
				heading("Next", 1),
				def("late"),
			},
			want: []string{"h:Next", "def:late"},
		},
		{
			name: "heading without if never hides",
			in: []ast.Node{
				heading("Plain", 1, ast.Clause{Name: "fullwidth", Value: "true"}),
				ast.NewParagraph("x"),
			},
			want: []string{"h:Plain", "p:x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ConditionalContent(&ast.Root{Children: tt.in})
			if diff := cmp.Diff(tt.want, texts(got)); diff != "" {
				t.Errorf("ConditionalContent() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConditionalContent_Idempotent(t *testing.T) {
	t.Parallel()

	root := &ast.Root{Children: []ast.Node{
		def("shown"),
		heading("A", 1, ifClause("shown")), ast.NewParagraph("a"),
		heading("B", 1, ifClause("missing")), ast.NewParagraph("b"),
		heading("C", 2), ast.NewParagraph("c"),
		heading("D", 1), ast.NewParagraph("d"),
	}}

	once := ConditionalContent(root)
	twice := ConditionalContent(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second pass changed the tree (-once +twice):\n%s", diff)
	}
	if len(root.Children) != 9 {
		t.Errorf("input mutated: %d children, want 9", len(root.Children))
	}
}

// ---------------------------------------------------------------------------
// TestFoldEnvironments - Theorem folding
// ---------------------------------------------------------------------------

func TestFoldEnvironments(t *testing.T) {
	t.Parallel()

	theorem := ast.Clause{Name: "theorem", Value: "true"}

	t.Run("heading and two paragraphs fold", func(t *testing.T) {
		t.Parallel()

		got := FoldEnvironments(&ast.Root{Children: []ast.Node{
			heading("Thm", 1, theorem), ast.NewParagraph("stmt"), ast.NewParagraph("proof"),
		}})
		want := &ast.Root{Children: []ast.Node{
			&ast.Theorem{Title: "Thm", Statement: "stmt", Proof: "proof"},
		}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("FoldEnvironments() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("statement concatenates inline text", func(t *testing.T) {
		t.Parallel()

		got := FoldEnvironments(&ast.Root{Children: []ast.Node{
			heading("Thm", 1, theorem),
			&ast.Paragraph{Inlines: []ast.Inline{&ast.Text{Value: "Let "}, &ast.EquationInline{Equation: "x"}, &ast.Bold{Value: " be"}}},
			ast.NewParagraph("Trivial."),
			ast.NewParagraph("after"),
		}})
		if len(got.Children) != 2 {
			t.Fatalf("FoldEnvironments() = %d nodes, want 2", len(got.Children))
		}
		th, ok := got.Children[0].(*ast.Theorem)
		if !ok {
			t.Fatalf("first node = %T, want *ast.Theorem", got.Children[0])
		}
		if th.Statement != "Let x be" {
			t.Errorf("Statement = %q, want %q", th.Statement, "Let x be")
		}
	})

	tests := []struct {
		name string
		in   []ast.Node
	}{
		{"level 2 heading", []ast.Node{heading("T", 2, theorem), ast.NewParagraph("a"), ast.NewParagraph("b")}},
		{"one paragraph", []ast.Node{heading("T", 1, theorem), ast.NewParagraph("a")}},
		{"code in between", []ast.Node{heading("T", 1, theorem), ast.NewParagraph("a"), &ast.CodeBlock{Src: "x"}}},
		{"no theorem clause", []ast.Node{heading("T", 1), ast.NewParagraph("a"), ast.NewParagraph("b")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := &ast.Root{Children: tt.in}
			if diff := cmp.Diff(in, FoldEnvironments(in)); diff != "" {
				t.Errorf("FoldEnvironments() changed a non-matching tree (-want +got):\n%s", diff)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPartitionSlides - Slide groups
// ---------------------------------------------------------------------------

func TestPartitionSlides(t *testing.T) {
	t.Parallel()

	got := PartitionSlides(&ast.Root{Children: []ast.Node{
		heading("One", 1), ast.NewParagraph("a"),
		&ast.HRule{},
		heading("Two", 1),
		&ast.HRule{},
	}})

	want := &ast.Root{Children: []ast.Node{
		&ast.Slide{Children: []ast.Node{heading("One", 1), ast.NewParagraph("a")}},
		&ast.Slide{Children: []ast.Node{heading("Two", 1)}},
		&ast.Slide{},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PartitionSlides() mismatch (-want +got):\n%s", diff)
	}
}

func TestPartitionSlides_Empty(t *testing.T) {
	t.Parallel()

	got := PartitionSlides(&ast.Root{})
	if len(got.Children) != 1 {
		t.Errorf("PartitionSlides(empty) = %d slides, want 1", len(got.Children))
	}
}

// ---------------------------------------------------------------------------
// TestStripTitleAuthor - Article metadata
// ---------------------------------------------------------------------------

func TestStripTitleAuthor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []ast.Node
		want []string
	}{
		{
			name: "title and author block",
			in: []ast.Node{
				heading("Title", 1),
				heading(" Author ", 2), ast.NewParagraph("Ada"),
				heading("Intro", 2), ast.NewParagraph("text"),
			},
			want: []string{"h:Intro", "p:text"},
		},
		{
			name: "author heading without paragraph",
			in: []ast.Node{
				heading("AUTHOR", 1),
				heading("Intro", 2),
			},
			want: []string{"h:Intro"},
		},
		{
			name: "no title keeps the first node",
			in: []ast.Node{
				ast.NewParagraph("lead"),
				heading("author", 2), ast.NewParagraph("Ada"),
				ast.NewParagraph("body"),
			},
			want: []string{"p:lead", "p:body"},
		},
		{
			name: "level 3 author is content",
			in: []ast.Node{
				heading("author", 3), ast.NewParagraph("Ada"),
			},
			want: []string{"h:author", "p:Ada"},
		},
		{
			name: "only the first author block goes",
			in: []ast.Node{
				heading("author", 2), ast.NewParagraph("Ada"),
				heading("author", 2), ast.NewParagraph("Bob"),
			},
			want: []string{"h:author", "p:Bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := StripTitleAuthor(&ast.Root{Children: tt.in})
			if diff := cmp.Diff(tt.want, texts(got)); diff != "" {
				t.Errorf("StripTitleAuthor() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFor - Backend pipelines
// ---------------------------------------------------------------------------

func TestEmbedded(t *testing.T) {
	t.Parallel()

	root := &ast.Root{Children: []ast.Node{
		heading("Chapter", 1),
		heading("Author", 2), ast.NewParagraph("a"),
		&ast.HRule{},
		heading("Hidden", 1, ifClause("nope")), ast.NewParagraph("h"),
	}}

	want := []string{"h:Chapter", "h:Author", "p:a", "hrule"}
	if diff := cmp.Diff(want, texts(Embedded().Run(root))); diff != "" {
		t.Errorf("Embedded().Run() mismatch (-want +got):\n%s", diff)
	}
}

func TestFor(t *testing.T) {
	t.Parallel()

	root := &ast.Root{Children: []ast.Node{
		heading("Title", 1, ast.Clause{Name: "theorem", Value: "true"}),
		ast.NewParagraph("s"), ast.NewParagraph("p"),
		&ast.HRule{},
		heading("Hidden", 1, ifClause("nope")), ast.NewParagraph("h"),
	}}

	tests := []struct {
		template render.Template
		want     []string
	}{
		{render.HTMLTufte, []string{"h:Title", "p:s", "p:p", "hrule"}},
		{render.HTMLSlides, []string{"slide", "slide"}},
		{render.TeXDoc, []string{"p:s", "p:p", "hrule"}},
		{render.TeXTufte, []string{"environ", "hrule"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.template), func(t *testing.T) {
			t.Parallel()

			got := For(tt.template).Run(root)
			if diff := cmp.Diff(tt.want, texts(got)); diff != "" {
				t.Errorf("For(%s).Run() mismatch (-want +got):\n%s", tt.template, diff)
			}
		})
	}
}
