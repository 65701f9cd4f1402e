package main

import (
	"encoding/json"
	"fmt"

	"github.com/corelang/lexgen/ast"
	"github.com/corelang/lexgen/charset"
)

// wireDescription is the JSON wire format cmd/lexgen reads from -i,
// standing in for a textual regex front end. It mirrors ast.Node's own
// shape closely enough that decodeNode is a near-direct transliteration.
type wireDescription struct {
	Rules []wireRule `json:"rules"`
}

type wireRule struct {
	Name string    `json:"name"`
	Line int       `json:"line"`
	Body *wireNode `json:"body"`
}

type wireNode struct {
	Kind string `json:"kind"`

	// char
	Literal rune `json:"literal,omitempty"`

	// set
	Negated bool       `json:"negated,omitempty"`
	Ranges  [][2]int32 `json:"ranges,omitempty"`

	// concat / alt
	Elements []*wireNode `json:"elements,omitempty"`

	// closure
	ClosureKind string     `json:"closureKind,omitempty"`
	Range       *wireRange `json:"range,omitempty"`

	// closure / paren / lookaround
	Body *wireNode `json:"body,omitempty"`

	// assertion / lookaround
	AssertKind string `json:"assertKind,omitempty"`
}

type wireRange struct {
	Lower int `json:"lower"`
	Upper int `json:"upper"`
}

func decodeDescription(data []byte) (*ast.LexerDescription, error) {
	var wd wireDescription
	if err := json.Unmarshal(data, &wd); err != nil {
		return nil, fmt.Errorf("decode lexer description: %w", err)
	}

	stmts := make([]*ast.RegexpStatement, 0, len(wd.Rules))
	for _, r := range wd.Rules {
		body, err := decodeNode(r.Body)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		stmts = append(stmts, &ast.RegexpStatement{Name: r.Name, Body: body, Line: r.Line})
	}
	return &ast.LexerDescription{Rules: stmts}, nil
}

func decodeNode(n *wireNode) (ast.Node, error) {
	if n == nil {
		return &ast.Alternation{}, nil
	}

	switch n.Kind {
	case "char":
		return &ast.Char{Literal: n.Literal}, nil

	case "set":
		ranges := make([]charset.CharRange, 0, len(n.Ranges))
		for _, pair := range n.Ranges {
			r, err := charset.NewRange(pair[0], pair[1])
			if err != nil {
				return nil, err
			}
			ranges = append(ranges, r)
		}
		return &ast.Set{Negated: n.Negated, Ranges: ranges}, nil

	case "concat":
		elems, err := decodeNodes(n.Elements)
		if err != nil {
			return nil, err
		}
		return ast.Seq(elems...), nil

	case "alt":
		elems, err := decodeNodes(n.Elements)
		if err != nil {
			return nil, err
		}
		return ast.Alt(elems...), nil

	case "closure":
		body, err := decodeNode(n.Body)
		if err != nil {
			return nil, err
		}
		kind, crange, err := decodeClosureKind(n)
		if err != nil {
			return nil, err
		}
		return &ast.Closure{Kind: kind, Body: body, Range: crange}, nil

	case "paren":
		body, err := decodeNode(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Paren{Body: body}, nil

	case "assertion":
		kind, err := decodeAssertionKind(n.AssertKind)
		if err != nil {
			return nil, err
		}
		return &ast.Assertion{Kind: kind}, nil

	case "lookaround":
		body, err := decodeNode(n.Body)
		if err != nil {
			return nil, err
		}
		kind, err := decodeLookaroundKind(n.AssertKind)
		if err != nil {
			return nil, err
		}
		return &ast.Lookaround{Kind: kind, Body: body}, nil

	default:
		return nil, fmt.Errorf("unrecognized node kind %q", n.Kind)
	}
}

func decodeNodes(ns []*wireNode) ([]ast.Node, error) {
	out := make([]ast.Node, 0, len(ns))
	for _, n := range ns {
		d, err := decodeNode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func decodeClosureKind(n *wireNode) (ast.ClosureKind, *ast.ClosureRange, error) {
	switch n.ClosureKind {
	case "star":
		return ast.Star, nil, nil
	case "plus":
		return ast.Plus, nil, nil
	case "quest":
		return ast.Quest, nil, nil
	case "lazyStar":
		return ast.LazyStar, nil, nil
	case "lazyPlus":
		return ast.LazyPlus, nil, nil
	case "bounded":
		if n.Range == nil {
			return 0, nil, fmt.Errorf("bounded closure missing range")
		}
		return ast.Bounded, &ast.ClosureRange{Lower: n.Range.Lower, Upper: n.Range.Upper}, nil
	default:
		return 0, nil, fmt.Errorf("unrecognized closure kind %q", n.ClosureKind)
	}
}

func decodeAssertionKind(s string) (ast.AssertionKind, error) {
	switch s {
	case "startText":
		return ast.StartText, nil
	case "endText":
		return ast.EndText, nil
	case "startLine":
		return ast.StartLine, nil
	case "endLine":
		return ast.EndLine, nil
	case "wordBoundary":
		return ast.WordBoundary, nil
	case "noWordBoundary":
		return ast.NoWordBoundary, nil
	default:
		return 0, fmt.Errorf("unrecognized assertion kind %q", s)
	}
}

func decodeLookaroundKind(s string) (ast.LookaroundKind, error) {
	switch s {
	case "lookaheadPositive":
		return ast.LookaheadPositive, nil
	case "lookaheadNegative":
		return ast.LookaheadNegative, nil
	case "lookbehindPositive":
		return ast.LookbehindPositive, nil
	case "lookbehindNegative":
		return ast.LookbehindNegative, nil
	default:
		return 0, fmt.Errorf("unrecognized lookaround kind %q", s)
	}
}
