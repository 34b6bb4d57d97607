package ast

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlainText(t *testing.T) {
	t.Parallel()

	inlines := []Inline{
		&Text{Value: "a "},
		&Bold{Value: "b"},
		&Italic{Value: " c "},
		&CodeInline{Src: "1+1", Run: true},
		&EquationInline{Equation: "x^2"},
		&InlineDirective{Clauses: []Clause{{Name: "def", Value: "flag"}}},
	}

	got := PlainText(inlines)
	want := "a b c 1+1x^2"
	if got != want {
		t.Errorf("PlainText() = %q, want %q", got, want)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		root    *Root
		wantErr bool
	}{
		{"nil root", nil, true},
		{"empty root", &Root{}, false},
		{"valid tree", &Root{Children: []Node{
			&Heading{Text: "Title", Level: 1},
			NewParagraph("body"),
			&CodeBlock{Src: "1+1", Run: true},
			&HRule{},
			&Slide{Children: []Node{&EquationBlock{Equation: "x"}}},
		}}, false},
		{"heading level zero", &Root{Children: []Node{&Heading{Text: "x", Level: 0}}}, true},
		{"heading level seven", &Root{Children: []Node{&Heading{Text: "x", Level: 7}}}, true},
		{"nil child", &Root{Children: []Node{nil}}, true},
		{"typed nil image", &Root{Children: []Node{(*Image)(nil)}}, true},
		{"nested root", &Root{Children: []Node{&Root{}}}, true},
		{"nil inline", &Root{Children: []Node{&Paragraph{Inlines: []Inline{nil}}}}, true},
		{"bad node inside slide", &Root{Children: []Node{&Slide{Children: []Node{&Heading{Level: 9}}}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.root)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedTree) {
					t.Errorf("Validate() error = %v, want ErrMalformedTree", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	data := []byte(`{
	  "t": "start",
	  "v": [
	    {"t": "heading", "v": {"t": "heading_text", "v": "Intro", "p": {"type": 2},
	      "ext": {"t": "ext", "v": [{"t": "extclause", "v": {"name": "if", "value": "flag"}}]}}},
	    {"t": "paragraph", "v": {"t": "par", "v": [
	      {"t": "text", "v": "see "},
	      {"t": "codeinline", "v": {"run": true, "src": "1+1"}},
	      {"t": "inlinedirect", "v": {"t": "ext", "v": [{"t": "extclause", "v": {"name": "def", "value": "who"}}]}}
	    ]}},
	    {"t": "hrule"},
	    {"t": "image", "v": {"alt": "a cat", "path": "cat.png"}},
	    {"t": "rootdirect", "v": {"t": "ext", "v": [{"t": "extclause", "v": {"name": "lang", "value": "en"}}]}}
	  ]
	}`)

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := &Root{Children: []Node{
		&Heading{Text: "Intro", Level: 2, Ext: []Clause{{Name: "if", Value: "flag"}}},
		&Paragraph{Inlines: []Inline{
			&Text{Value: "see "},
			&CodeInline{Src: "1+1", Run: true},
			&InlineDirective{Clauses: []Clause{{Name: "def", Value: "who"}}},
		}},
		&HRule{},
		&Image{Alt: "a cat", Path: "cat.png"},
		&RootDirective{Clauses: []Clause{{Name: "lang", Value: "en"}}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"wrong root tag", `{"t": "paragraph", "v": []}`},
		{"unknown block", `{"t": "start", "v": [{"t": "table", "v": 1}]}`},
		{"heading with string payload", `{"t": "start", "v": [{"t": "heading", "v": "x"}]}`},
		{"heading level out of range", `{"t": "start", "v": [{"t": "heading", "v": {"t": "heading_text", "v": "x", "p": {"type": 8}}}]}`},
		{"paragraph wrong inner tag", `{"t": "start", "v": [{"t": "paragraph", "v": {"t": "para", "v": []}}]}`},
		{"unknown inline", `{"t": "start", "v": [{"t": "paragraph", "v": {"t": "par", "v": [{"t": "link", "v": "x"}]}}]}`},
		{"eqblock without payload", `{"t": "start", "v": [{"t": "eqblock"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, ErrMalformedTree) {
				t.Errorf("Decode() error = %v, want ErrMalformedTree", err)
			}
		})
	}
}

func TestEncode_DecodesBack(t *testing.T) {
	t.Parallel()

	root := &Root{Children: []Node{
		&Theorem{Title: "Thm", Statement: "stmt", Proof: "proof"},
		&Slide{Children: []Node{
			&Heading{Text: "One", Level: 2},
			&CodeBlock{Src: "print(1)", Run: true, Ext: []Clause{{Name: "hidden", Value: "true"}}},
		}},
		&EquationBlock{Equation: "e=mc^2"},
	}}

	data, err := Encode(root)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(root, got); diff != "" {
		t.Errorf("Decode(Encode()) mismatch (-want +got):\n%s", diff)
	}
}

func TestTag(t *testing.T) {
	t.Parallel()

	if got := Tag(&HRule{}); got != TagHRule {
		t.Errorf("Tag(HRule) = %q, want %q", got, TagHRule)
	}
	if got := Tag(nil); got != "" {
		t.Errorf("Tag(nil) = %q, want empty", got)
	}
}
