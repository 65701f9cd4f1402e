// Package ast defines the input contract of the automaton pipeline: a
// sealed tree of regex AST nodes per lexer rule. It is a type system,
// not a parser — nothing here reads regex text. A textual front end is
// an external collaborator that builds these structs directly.
package ast

import "github.com/corelang/lexgen/charset"

// Node is the sealed sum type of every AST construct. The unexported
// marker method keeps the set of implementations closed to this
// package, mirroring the tagged-sum dispatch the synthesizer uses
// (type switch, not a dynamic-dispatch class hierarchy).
type Node interface {
	astNode()
}

// LexerDescription is the root of an entire rule set: one named regex
// per rule, in declaration order. Declaration order is load-bearing —
// it is the tie-break when two rules' final states collide in the same
// DFA state (lowest-declared rule wins).
type LexerDescription struct {
	Rules []*RegexpStatement
}

// RegexpStatement names a single rule's pattern.
type RegexpStatement struct {
	Name  string
	Body  Node
	Line  int
}

func (*RegexpStatement) astNode() {}

// Alternation is `a|b|...`.
type Alternation struct {
	Alternatives []Node
}

func (*Alternation) astNode() {}

// Concatenation is `ab...`.
type Concatenation struct {
	Elements []Node
}

func (*Concatenation) astNode() {}

// ClosureKind distinguishes the supported repetition operators. The
// Lazy variants are recognized but never synthesized: the synthesizer
// rejects them with errs.UnsupportedConstruct (non-greedy semantics
// are out of scope).
type ClosureKind int

const (
	Star ClosureKind = iota
	Plus
	Quest
	Bounded
	LazyStar
	LazyPlus
)

// Unbounded marks ClosureRange.Upper as "no upper bound" (the `{m,}`
// form).
const Unbounded = -1

// ClosureRange carries the {m,n} bounds for Kind == Bounded.
type ClosureRange struct {
	Lower int
	Upper int // Unbounded for "no upper bound"
}

// Closure is a repetition construct: `a*`, `a+`, `a?`, `a{m,n}`, or one
// of the reserved-but-unsynthesized lazy variants.
type Closure struct {
	Kind  ClosureKind
	Body  Node
	Range *ClosureRange // non-nil iff Kind == Bounded
}

func (*Closure) astNode() {}

// Paren is an explicit grouping, kept distinct from Concatenation of
// one element so a sink can render the source's own parenthesization.
type Paren struct {
	Body Node
}

func (*Paren) astNode() {}

// Set is a character class: `[a-z0-9]` or its negation `[^a-z0-9]`.
// Negated is a hint consumed only at synthesis time, where
// charset.Complement materializes it against the code space ceiling.
type Set struct {
	Negated bool
	Ranges  []charset.CharRange
}

func (*Set) astNode() {}

// Char is a single literal code point.
type Char struct {
	Literal rune
}

func (*Char) astNode() {}

// AssertionKind enumerates the zero-width assertions the AST can
// represent. None of them ever reach a synthesized FA: the data model
// has no assertion edge kind, so the synthesizer always returns
// errs.UnsupportedConstruct for these.
type AssertionKind int

const (
	StartText AssertionKind = iota
	EndText
	StartLine
	EndLine
	WordBoundary
	NoWordBoundary
)

// Assertion is a zero-width, line/text/word-boundary construct.
// Recognized by the type system, always rejected at synthesis.
type Assertion struct {
	Kind AssertionKind
}

func (*Assertion) astNode() {}

// LookaroundKind enumerates the four lookaround directions.
type LookaroundKind int

const (
	LookaheadPositive LookaroundKind = iota
	LookaheadNegative
	LookbehindPositive
	LookbehindNegative
)

// Lookaround is a zero-width lookaround assertion wrapping Body.
// Recognized by the type system, always rejected at synthesis — see
// Assertion's doc comment for why.
type Lookaround struct {
	Kind LookaroundKind
	Body Node
}

func (*Lookaround) astNode() {}
