package directive

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-xmd/internal/ast"
	"github.com/alnah/go-xmd/internal/image"
)

func clause(name, value string) []ast.Clause {
	return []ast.Clause{{Name: name, Value: value}}
}

func TestController_Def(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := New(Options{})

	if _, err := c.Process(ctx, clause(Def, "author:Ada"), false); err != nil {
		t.Fatalf("Process(def root) error = %v", err)
	}
	if _, err := c.Process(ctx, clause(Def, "draft"), false); err != nil {
		t.Fatalf("Process(def root, no value) error = %v", err)
	}

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"defined with value", "author", "Ada"},
		{"defined without value", "draft", ""},
		{"undefined", "missing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := c.Process(ctx, clause(Def, tt.key), true)
			if err != nil {
				t.Fatalf("Process(def inline) error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Process(def inline %q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}

	if _, ok := c.Def("draft"); !ok {
		t.Error("Def(draft) not found, want defined")
	}
}

func TestController_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		clauses []ast.Clause
		inline  bool
		wantErr error
	}{
		{"no clause", nil, false, ErrDirectiveCheckFailed},
		{"two clauses", []ast.Clause{{Name: Def, Value: "a"}, {Name: Lang, Value: "en"}}, false, ErrDirectiveCheckFailed},
		{"empty definition name", clause(Def, ":value"), false, ErrMalformedDefinition},
		{"unknown directive", clause("include", "x.xmd"), false, ErrUnknownDirective},
		{"import without source", clause(Import, "x.xmd"), false, ErrImportNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(Options{}).Process(context.Background(), tt.clauses, tt.inline)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Process() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestController_Lang(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arg  string
		want string
	}{
		{"en-us", "en-US"},
		{"it", "it"},
		{"not a tag!", "not a tag!"},
	}

	for _, tt := range tests {
		c := New(Options{})
		if _, err := c.Process(context.Background(), clause(Lang, tt.arg), false); err != nil {
			t.Fatalf("Process(lang %q) error = %v", tt.arg, err)
		}
		if got := c.Lang(); got != tt.want {
			t.Errorf("Lang() after %q = %q, want %q", tt.arg, got, tt.want)
		}
	}
}

func TestController_Import(t *testing.T) {
	t.Parallel()

	in := image.New("in")
	for vpath, body := range map[string]string{
		"/chapters/one.xmd": "one",
		"/chapters/two.xmd": "two",
	} {
		if err := in.AddString(body, vpath); err != nil {
			t.Fatal(err)
		}
	}

	var calls []string
	var stacks [][]string
	importer := func(_ context.Context, vpath string, src []byte, stack []string) (string, error) {
		calls = append(calls, vpath)
		stacks = append(stacks, stack)
		return "<" + strings.ToUpper(string(src)) + ">", nil
	}

	c := New(Options{
		Dir:    "/",
		Stack:  []string{"/main.xmd"},
		Source: ImageSource{Image: in},
		Import: importer,
	})

	got, err := c.Process(context.Background(), clause(Import, "chapters/one.xmd"), false)
	if err != nil {
		t.Fatalf("Process(import) error = %v", err)
	}
	if got != "<ONE>" {
		t.Errorf("Process(import) = %q, want %q", got, "<ONE>")
	}
	if diff := cmp.Diff([][]string{{"/main.xmd", "/chapters/one.xmd"}}, stacks); diff != "" {
		t.Errorf("import stack mismatch (-want +got):\n%s", diff)
	}

	_, err = c.Process(context.Background(), clause(Import, "chapters/missing.xmd"), false)
	if !errors.Is(err, ErrImportNotFound) {
		t.Errorf("Process(import missing) error = %v, want ErrImportNotFound", err)
	}
	if len(calls) != 1 {
		t.Errorf("importer called %d times, want 1", len(calls))
	}
}

func TestController_ImportRelativeToFrame(t *testing.T) {
	t.Parallel()

	in := image.New("in")
	if err := in.AddString("two", "/chapters/two.xmd"); err != nil {
		t.Fatal(err)
	}

	var got string
	c := New(Options{
		Dir:    "/chapters",
		Stack:  []string{"/main.xmd", "/chapters/one.xmd"},
		Source: ImageSource{Image: in},
		Import: func(_ context.Context, vpath string, _ []byte, _ []string) (string, error) {
			got = vpath
			return "", nil
		},
	})

	if _, err := c.Process(context.Background(), clause(Import, "two.xmd"), false); err != nil {
		t.Fatalf("Process(import) error = %v", err)
	}
	if got != "/chapters/two.xmd" {
		t.Errorf("resolved import = %q, want %q", got, "/chapters/two.xmd")
	}
}

func TestController_CircularImport(t *testing.T) {
	t.Parallel()

	in := image.New("in")
	if err := in.AddString("@{import=main.xmd}", "/main.xmd"); err != nil {
		t.Fatal(err)
	}

	c := New(Options{
		Stack:  []string{"/main.xmd"},
		Source: ImageSource{Image: in},
		Import: func(context.Context, string, []byte, []string) (string, error) {
			t.Error("importer called for a circular import")
			return "", nil
		},
	})

	_, err := c.Process(context.Background(), clause(Import, "./main.xmd"), false)
	if !errors.Is(err, ErrCircularImport) {
		t.Errorf("Process(import self) error = %v, want ErrCircularImport", err)
	}
}

func TestDefinitions(t *testing.T) {
	t.Parallel()

	d := NewDefinitions()
	d.Record(clause(Def, "flag"))
	d.Record(clause(Def, ":broken"))
	d.Record(clause(Lang, "en"))
	d.Record([]ast.Clause{{Name: Def, Value: "a"}, {Name: Def, Value: "b"}})

	if !d.Defined("flag") {
		t.Error("Defined(flag) = false, want true")
	}
	for _, name := range []string{"", "broken", "en", "a", "b"} {
		if d.Defined(name) {
			t.Errorf("Defined(%q) = true, want false", name)
		}
	}
}

func TestParseDefinition(t *testing.T) {
	t.Parallel()

	name, value, err := ParseDefinition("title:A: B")
	if err != nil {
		t.Fatalf("ParseDefinition() error = %v", err)
	}
	if name != "title" || value != "A: B" {
		t.Errorf("ParseDefinition() = (%q, %q), want (%q, %q)", name, value, "title", "A: B")
	}
}
