// Package extension parses the name[=value] clause lists attached to
// headings, images, code blocks and directives.
package extension

import (
	"strings"

	"github.com/alnah/go-xmd/internal/ast"
)

// Name is a recognized clause name.
type Name string

// Recognized clause names.
const (
	Fullwidth Name = "fullwidth"
	Theorem   Name = "theorem"
	If        Name = "if"
	Hidden    Name = "hidden"
	Output    Name = "output"
)

// True is the value a bare clause name is given.
const True = "true"

var known = map[Name]bool{
	Fullwidth: true,
	Theorem:   true,
	If:        true,
	Hidden:    true,
	Output:    true,
}

// IsKnown reports whether name belongs to the recognized vocabulary.
func IsKnown(name string) bool {
	return known[Name(name)]
}

// Attributes holds the recognized clauses of a node.
type Attributes map[Name]string

// Has reports whether the clause was given.
func (a Attributes) Has(n Name) bool {
	_, ok := a[n]
	return ok
}

// Get returns the clause value, or "" when absent.
func (a Attributes) Get(n Name) string {
	return a[n]
}

// IsTrue reports whether the clause is present with the value "true".
func (a Attributes) IsTrue(n Name) bool {
	return a[n] == True
}

// Split turns a raw clause string into an ordered clause list. Tokens are
// comma separated and trimmed; empty tokens are skipped. A bare name gets the
// value "true"; name=value splits at the first '='.
func Split(raw string) []ast.Clause {
	var clauses []ast.Clause
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		name, value, found := strings.Cut(token, "=")
		name = strings.TrimSpace(name)
		if !found {
			clauses = append(clauses, ast.Clause{Name: name, Value: True})
			continue
		}
		clauses = append(clauses, ast.Clause{Name: name, Value: strings.TrimSpace(value)})
	}
	return clauses
}

// Parse classifies the clauses of raw into recognized attributes and an
// unknown side channel. It never fails; callers decide what to do with
// unknown names.
func Parse(raw string) (Attributes, map[string]string) {
	return Resolve(Split(raw))
}

// Resolve classifies an existing clause list. A later clause with the same
// name wins.
func Resolve(clauses []ast.Clause) (Attributes, map[string]string) {
	attrs := Attributes{}
	unknown := map[string]string{}
	for _, c := range clauses {
		if IsKnown(c.Name) {
			attrs[Name(c.Name)] = c.Value
			continue
		}
		unknown[c.Name] = c.Value
	}
	return attrs, unknown
}
