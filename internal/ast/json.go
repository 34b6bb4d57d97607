package ast

import (
	"encoding/json"
	"fmt"
)

// The tagged JSON shape is the one produced by the grammar collaborator:
// every node is {"t": tag, "v": payload}.

type wireNode struct {
	T string          `json:"t"`
	V json.RawMessage `json:"v,omitempty"`
}

type wireExt struct {
	T string       `json:"t"`
	V []wireClause `json:"v"`
}

type wireClause struct {
	T string `json:"t"`
	V struct {
		Name  string  `json:"name"`
		Value *string `json:"value,omitempty"`
	} `json:"v"`
}

type wireHeading struct {
	T string `json:"t"`
	V string `json:"v"`
	P struct {
		Type int `json:"type"`
	} `json:"p"`
	Ext *wireExt `json:"ext,omitempty"`
}

type wirePar struct {
	T string     `json:"t"`
	V []wireNode `json:"v"`
}

type wireCode struct {
	Run bool     `json:"run"`
	Src string   `json:"src"`
	Ext *wireExt `json:"ext,omitempty"`
}

type wireImage struct {
	Alt   string   `json:"alt"`
	Path  string   `json:"path"`
	Title string   `json:"title,omitempty"`
	Ext   *wireExt `json:"ext,omitempty"`
}

type wireTheorem struct {
	Title     string `json:"title"`
	Statement string `json:"statement"`
	Proof     string `json:"proof,omitempty"`
}

// Encode renders root in the tagged JSON shape.
func Encode(root *Root) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrMalformedTree)
	}
	children, err := encodeBlocks(root.Children)
	if err != nil {
		return nil, err
	}
	v, err := json.Marshal(children)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(wireNode{T: TagStart, V: v}, "", "  ")
}

// Decode parses the tagged JSON shape. Any tag/payload mismatch fails with
// ErrMalformedTree.
func Decode(data []byte) (*Root, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTree, err)
	}
	if w.T != TagStart {
		return nil, fmt.Errorf("%w: root tag %q, want %q", ErrMalformedTree, w.T, TagStart)
	}
	var items []wireNode
	if len(w.V) > 0 {
		if err := json.Unmarshal(w.V, &items); err != nil {
			return nil, fmt.Errorf("%w: root payload: %v", ErrMalformedTree, err)
		}
	}
	children, err := decodeBlocks(items)
	if err != nil {
		return nil, err
	}
	return &Root{Children: children}, nil
}

func encodeBlocks(nodes []Node) ([]wireNode, error) {
	out := make([]wireNode, 0, len(nodes))
	for _, n := range nodes {
		w, err := encodeBlock(n)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func encodeBlock(n Node) (wireNode, error) {
	var payload any
	switch v := n.(type) {
	case *Heading:
		h := wireHeading{T: "heading_text", V: v.Text, Ext: encodeExt(v.Ext)}
		h.P.Type = v.Level
		payload = h
	case *Paragraph:
		inlines, err := encodeInlines(v.Inlines)
		if err != nil {
			return wireNode{}, err
		}
		payload = wirePar{T: "par", V: inlines}
	case *CodeBlock:
		payload = wireCode{Run: v.Run, Src: v.Src, Ext: encodeExt(v.Ext)}
	case *EquationBlock:
		payload = v.Equation
	case *Image:
		payload = wireImage{Alt: v.Alt, Path: v.Path, Title: v.Title, Ext: encodeExt(v.Ext)}
	case *HRule:
		return wireNode{T: TagHRule}, nil
	case *RootDirective:
		payload = encodeExtAlways(v.Clauses)
	case *Theorem:
		payload = wireTheorem{Title: v.Title, Statement: v.Statement, Proof: v.Proof}
	case *Slide:
		children, err := encodeBlocks(v.Children)
		if err != nil {
			return wireNode{}, err
		}
		payload = children
	default:
		return wireNode{}, fmt.Errorf("%w: cannot encode %T", ErrMalformedTree, n)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return wireNode{}, err
	}
	return wireNode{T: Tag(n), V: raw}, nil
}

func encodeInlines(inlines []Inline) ([]wireNode, error) {
	out := make([]wireNode, 0, len(inlines))
	for _, in := range inlines {
		var (
			tag     string
			payload any
		)
		switch v := in.(type) {
		case *Text:
			tag, payload = TagText, v.Value
		case *Bold:
			tag, payload = TagBold, v.Value
		case *Italic:
			tag, payload = TagItalic, v.Value
		case *CodeInline:
			tag, payload = TagCodeInline, wireCode{Run: v.Run, Src: v.Src}
		case *EquationInline:
			tag, payload = TagEquationInline, v.Equation
		case *InlineDirective:
			tag, payload = TagInlineDirective, encodeExtAlways(v.Clauses)
		default:
			return nil, fmt.Errorf("%w: cannot encode inline %T", ErrMalformedTree, in)
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, wireNode{T: tag, V: raw})
	}
	return out, nil
}

func encodeExt(clauses []Clause) *wireExt {
	if len(clauses) == 0 {
		return nil
	}
	return encodeExtAlways(clauses)
}

func encodeExtAlways(clauses []Clause) *wireExt {
	ext := &wireExt{T: "ext", V: make([]wireClause, 0, len(clauses))}
	for _, c := range clauses {
		var wc wireClause
		wc.T = "extclause"
		wc.V.Name = c.Name
		value := c.Value
		wc.V.Value = &value
		ext.V = append(ext.V, wc)
	}
	return ext
}

func decodeBlocks(items []wireNode) ([]Node, error) {
	out := make([]Node, 0, len(items))
	for i, w := range items {
		n, err := decodeBlock(w)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func decodeBlock(w wireNode) (Node, error) {
	switch w.T {
	case TagHeading:
		var h wireHeading
		if err := unmarshalPayload(w, &h); err != nil {
			return nil, err
		}
		if h.T != "heading_text" {
			return nil, fmt.Errorf("%w: heading payload tag %q", ErrMalformedTree, h.T)
		}
		if h.P.Type < 1 || h.P.Type > MaxHeadingLevel {
			return nil, fmt.Errorf("%w: heading level %d", ErrMalformedTree, h.P.Type)
		}
		ext, err := decodeExt(h.Ext)
		if err != nil {
			return nil, err
		}
		return &Heading{Text: h.V, Level: h.P.Type, Ext: ext}, nil
	case TagParagraph:
		var p wirePar
		if err := unmarshalPayload(w, &p); err != nil {
			return nil, err
		}
		if p.T != "par" {
			return nil, fmt.Errorf("%w: paragraph payload tag %q", ErrMalformedTree, p.T)
		}
		inlines, err := decodeInlines(p.V)
		if err != nil {
			return nil, err
		}
		return &Paragraph{Inlines: inlines}, nil
	case TagCodeBlock:
		var c wireCode
		if err := unmarshalPayload(w, &c); err != nil {
			return nil, err
		}
		ext, err := decodeExt(c.Ext)
		if err != nil {
			return nil, err
		}
		return &CodeBlock{Src: c.Src, Run: c.Run, Ext: ext}, nil
	case TagEquationBlock:
		var eq string
		if err := unmarshalPayload(w, &eq); err != nil {
			return nil, err
		}
		return &EquationBlock{Equation: eq}, nil
	case TagImage:
		var im wireImage
		if err := unmarshalPayload(w, &im); err != nil {
			return nil, err
		}
		ext, err := decodeExt(im.Ext)
		if err != nil {
			return nil, err
		}
		return &Image{Alt: im.Alt, Path: im.Path, Title: im.Title, Ext: ext}, nil
	case TagHRule:
		return &HRule{}, nil
	case TagRootDirective:
		var ext wireExt
		if err := unmarshalPayload(w, &ext); err != nil {
			return nil, err
		}
		clauses, err := decodeExt(&ext)
		if err != nil {
			return nil, err
		}
		return &RootDirective{Clauses: clauses}, nil
	case TagTheorem:
		var th wireTheorem
		if err := unmarshalPayload(w, &th); err != nil {
			return nil, err
		}
		return &Theorem{Title: th.Title, Statement: th.Statement, Proof: th.Proof}, nil
	case TagSlide:
		var items []wireNode
		if err := unmarshalPayload(w, &items); err != nil {
			return nil, err
		}
		children, err := decodeBlocks(items)
		if err != nil {
			return nil, err
		}
		return &Slide{Children: children}, nil
	}
	return nil, fmt.Errorf("%w: unknown block tag %q", ErrMalformedTree, w.T)
}

func decodeInlines(items []wireNode) ([]Inline, error) {
	out := make([]Inline, 0, len(items))
	for _, w := range items {
		switch w.T {
		case TagText, TagBold, TagItalic, TagEquationInline:
			var s string
			if err := unmarshalPayload(w, &s); err != nil {
				return nil, err
			}
			switch w.T {
			case TagText:
				out = append(out, &Text{Value: s})
			case TagBold:
				out = append(out, &Bold{Value: s})
			case TagItalic:
				out = append(out, &Italic{Value: s})
			default:
				out = append(out, &EquationInline{Equation: s})
			}
		case TagCodeInline:
			var c wireCode
			if err := unmarshalPayload(w, &c); err != nil {
				return nil, err
			}
			out = append(out, &CodeInline{Src: c.Src, Run: c.Run})
		case TagInlineDirective:
			var ext wireExt
			if err := unmarshalPayload(w, &ext); err != nil {
				return nil, err
			}
			clauses, err := decodeExt(&ext)
			if err != nil {
				return nil, err
			}
			out = append(out, &InlineDirective{Clauses: clauses})
		default:
			return nil, fmt.Errorf("%w: unknown inline tag %q", ErrMalformedTree, w.T)
		}
	}
	return out, nil
}

func decodeExt(ext *wireExt) ([]Clause, error) {
	if ext == nil {
		return nil, nil
	}
	if ext.T != "ext" {
		return nil, fmt.Errorf("%w: extension tag %q", ErrMalformedTree, ext.T)
	}
	clauses := make([]Clause, 0, len(ext.V))
	for _, wc := range ext.V {
		if wc.T != "extclause" {
			return nil, fmt.Errorf("%w: clause tag %q", ErrMalformedTree, wc.T)
		}
		c := Clause{Name: wc.V.Name}
		if wc.V.Value != nil {
			c.Value = *wc.V.Value
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

func unmarshalPayload(w wireNode, dst any) error {
	if len(w.V) == 0 {
		return fmt.Errorf("%w: %s without payload", ErrMalformedTree, w.T)
	}
	if err := json.Unmarshal(w.V, dst); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrMalformedTree, w.T, err)
	}
	return nil
}
