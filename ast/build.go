package ast

import "github.com/corelang/lexgen/charset"

// The constructors below are small tree builders used by tests and by
// any future external parser. They are not a textual regex parser —
// lexgen's AST contract is the types above, not a grammar for reading
// `a|b*` as text.

// Lit builds a single-character literal node.
func Lit(r rune) Node {
	return &Char{Literal: r}
}

// Seq builds a concatenation of two or more nodes.
func Seq(elems ...Node) Node {
	if len(elems) == 1 {
		return elems[0]
	}
	return &Concatenation{Elements: elems}
}

// Alt builds an alternation of two or more nodes.
func Alt(alts ...Node) Node {
	if len(alts) == 1 {
		return alts[0]
	}
	return &Alternation{Alternatives: alts}
}

// StarOf wraps n in a `*` closure.
func StarOf(n Node) Node {
	return &Closure{Kind: Star, Body: n}
}

// PlusOf wraps n in a `+` closure.
func PlusOf(n Node) Node {
	return &Closure{Kind: Plus, Body: n}
}

// QuestOf wraps n in a `?` closure.
func QuestOf(n Node) Node {
	return &Closure{Kind: Quest, Body: n}
}

// BoundedOf wraps n in a `{lower,upper}` closure. upper == Unbounded
// renders `{lower,}`.
func BoundedOf(n Node, lower, upper int) Node {
	return &Closure{Kind: Bounded, Body: n, Range: &ClosureRange{Lower: lower, Upper: upper}}
}

// ParenOf wraps n in an explicit grouping.
func ParenOf(n Node) Node {
	return &Paren{Body: n}
}

// SetOf builds a (non-negated) character class from explicit ranges.
func SetOf(ranges ...charset.CharRange) Node {
	return &Set{Ranges: ranges}
}

// NegatedSetOf builds a negated character class from explicit ranges.
func NegatedSetOf(ranges ...charset.CharRange) Node {
	return &Set{Negated: true, Ranges: ranges}
}

// Rule names a pattern as a standalone rule, ready to append to a
// LexerDescription.
func Rule(name string, body Node) *RegexpStatement {
	return &RegexpStatement{Name: name, Body: body}
}

// Description builds a LexerDescription from rules in declaration
// order.
func Description(rules ...*RegexpStatement) *LexerDescription {
	return &LexerDescription{Rules: rules}
}
