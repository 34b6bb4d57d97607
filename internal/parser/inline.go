package parser

import (
	"bytes"
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/alnah/go-xmd/internal/ast"
	"github.com/alnah/go-xmd/internal/extension"
)

// Node kinds for the XMD inline extensions.
var (
	KindMath      = gmast.NewNodeKind("XMDMath")
	KindDirective = gmast.NewNodeKind("XMDDirective")
)

// mathNode is $inline$ or $$display$$ math.
type mathNode struct {
	gmast.BaseInline
	Equation string
	Display  bool
}

func (n *mathNode) Kind() gmast.NodeKind { return KindMath }

func (n *mathNode) Dump(src []byte, level int) {
	gmast.DumpHelper(n, src, level, map[string]string{"Equation": n.Equation}, nil)
}

// directiveNode is an @{name=value} directive.
type directiveNode struct {
	gmast.BaseInline
	Clauses []ast.Clause
}

func (n *directiveNode) Kind() gmast.NodeKind { return KindDirective }

func (n *directiveNode) Dump(src []byte, level int) {
	gmast.DumpHelper(n, src, level, nil, nil)
}

// mathParser parses $..$ on one line and $$..$$ across lines.
type mathParser struct{}

var _ gmparser.InlineParser = (*mathParser)(nil)

func (p *mathParser) Trigger() []byte {
	return []byte{'$'}
}

func (p *mathParser) Parse(_ gmast.Node, block text.Reader, _ gmparser.Context) gmast.Node {
	line, _ := block.PeekLine()
	delim := 1
	if len(line) > 1 && line[1] == '$' {
		delim = 2
	}
	closer := []byte(strings.Repeat("$", delim))

	l, pos := block.Position()
	block.Advance(delim)

	var eq bytes.Buffer
	for {
		line, _ := block.PeekLine()
		if line == nil {
			block.SetPosition(l, pos)
			return nil
		}
		if i := bytes.Index(line, closer); i >= 0 {
			eq.Write(line[:i])
			block.Advance(i + delim)
			break
		}
		if delim == 1 {
			block.SetPosition(l, pos)
			return nil
		}
		eq.Write(line)
		block.AdvanceLine()
	}

	// Inline math needs content hugging the dollars, so "$5 and $6" stays text.
	raw := eq.String()
	if delim == 1 && (raw == "" || raw != strings.TrimSpace(raw)) {
		block.SetPosition(l, pos)
		return nil
	}
	return &mathNode{Equation: strings.TrimSpace(raw), Display: delim == 2}
}

// directiveParser parses @{name=value} on one line.
type directiveParser struct{}

var _ gmparser.InlineParser = (*directiveParser)(nil)

func (p *directiveParser) Trigger() []byte {
	return []byte{'@'}
}

func (p *directiveParser) Parse(_ gmast.Node, block text.Reader, _ gmparser.Context) gmast.Node {
	line, _ := block.PeekLine()
	if len(line) < 3 || line[1] != '{' {
		return nil
	}
	end := bytes.IndexByte(line, '}')
	if end < 0 {
		return nil
	}
	clauses := extension.Split(string(line[2:end]))
	if len(clauses) == 0 {
		return nil
	}
	block.Advance(end + 1)
	return &directiveNode{Clauses: clauses}
}
