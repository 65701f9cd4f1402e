// Package thompson synthesizes an epsilon-NFA from a regex AST: one
// template per construct, each producing a single-entry, single-exit
// fragment that gets welded into its parent via fa.Merge.
package thompson

import (
	"context"

	"github.com/corelang/lexgen/ast"
	"github.com/corelang/lexgen/charset"
	"github.com/corelang/lexgen/errs"
	"github.com/corelang/lexgen/fa"
	"github.com/corelang/lexgen/report"
)

// fragment is a single-entry, single-exit sub-automaton: exactly one
// initial node, exactly one final node, no incoming edge to start and
// no outgoing edge from end — the invariant every template preserves
// so ε-welds compose soundly.
type fragment struct {
	f     *fa.FA
	start fa.NodeID
	end   fa.NodeID
}

type builder struct {
	sink report.Sink
	rule string
	line int
}

// SynthesizeRule builds a self-contained epsilon-NFA for one rule's
// pattern: the finished FA has its initial node set, a single final
// node tagged with ruleID, and every node's provenance prefixed with
// ruleID.
func SynthesizeRule(ctx context.Context, stmt *ast.RegexpStatement, ruleID int, sink report.Sink) (*fa.FA, error) {
	if sink == nil {
		sink = report.Discard{}
	}
	b := &builder{sink: sink, rule: stmt.Name, line: stmt.Line}

	frag, err := b.build(ctx, stmt.Body)
	if err != nil {
		if err == context.Canceled || err == context.DeadlineExceeded {
			return nil, err
		}
		kind, ok := errs.KindOf(err)
		if !ok {
			kind = errs.InternalInvariantViolation
		}
		return nil, errs.Wrap(kind, stmt.Name, stmt.Line, err)
	}

	frag.f.SetInitial(frag.start)
	frag.f.AddFinal(frag.end, ruleID)
	frag.f.PrefixLabels(ruleID)

	if _, ok := hasPathToFinal(frag.f); !ok {
		emptyErr := errs.New(errs.EmptyLanguage, "rule %q compiles to an automaton with no path to any final state", stmt.Name)
		sink.Emit(report.StageError, frag.f, stmt.Name)
		return frag.f, emptyErr
	}

	return frag.f, nil
}

// Synthesize builds one shared FA for an entire rule set (flatten
// mode): a fresh root node with one epsilon edge per rule into that
// rule's sub-NFA, built in AST declaration order (the §5 ordering
// guarantee). preserveLabels controls whether each rule's original
// provenance survives the merge (pipeline.Options.PropagateLabels); when
// false, the merged nodes carry no provenance.
func Synthesize(ctx context.Context, desc *ast.LexerDescription, preserveLabels bool, sink report.Sink) (*fa.FA, error) {
	if sink == nil {
		sink = report.Discard{}
	}

	result := fa.New()
	root := result.CreateNode()
	result.SetInitial(root)

	for ruleID, stmt := range desc.Rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ruleFA, err := SynthesizeRule(ctx, stmt, ruleID, sink)
		if err != nil {
			if errs.As(err, errs.EmptyLanguage) {
				sink.Emit(report.StageError, ruleFA, stmt.Name)
				continue
			}
			return nil, err
		}

		ruleInit := ruleFA.Initial()
		remap := result.Merge(ruleFA, fa.MergeOptions{PreserveLabels: preserveLabels})
		result.AddEdge(root, remap[ruleInit], fa.EpsilonLabel())
		sink.Emit(report.StageMerge, result, stmt.Name)
	}

	return result, nil
}

func (b *builder) build(ctx context.Context, n ast.Node) (fragment, error) {
	if err := ctx.Err(); err != nil {
		return fragment{}, err
	}

	switch v := n.(type) {
	case *ast.Char:
		return b.buildChar(v)
	case *ast.Set:
		return b.buildSet(v)
	case *ast.Concatenation:
		return b.buildConcat(ctx, v)
	case *ast.Alternation:
		return b.buildAlt(ctx, v)
	case *ast.Closure:
		return b.buildClosure(ctx, v)
	case *ast.Paren:
		return b.build(ctx, v.Body)
	case *ast.Assertion:
		return fragment{}, errs.New(errs.UnsupportedConstruct, "assertion constructs are not compiled: %v", v.Kind)
	case *ast.Lookaround:
		return fragment{}, errs.New(errs.UnsupportedConstruct, "lookaround constructs are not compiled: %v", v.Kind)
	default:
		return fragment{}, errs.New(errs.InternalInvariantViolation, "unrecognized AST node %T", n)
	}
}

func (b *builder) buildChar(n *ast.Char) (fragment, error) {
	f := fa.New()
	s := f.CreateNode()
	e := f.CreateNode()
	f.SetInitial(s)
	set := charset.FromRanges(charset.CharRange{Min: n.Literal, Max: n.Literal})
	f.AddEdge(s, e, fa.RangesLabel(set))

	frag := fragment{f: f, start: s, end: e}
	b.sink.Emit(report.StageChar, f, b.rule)
	return frag, nil
}

func (b *builder) buildSet(n *ast.Set) (fragment, error) {
	set := charset.FromRanges(n.Ranges...)
	stage := report.StageSet
	if n.Negated {
		set = charset.Complement(set, charset.MaxCodePoint)
	} else if len(n.Ranges) == 1 {
		stage = report.StageRange
	}

	f := fa.New()
	s := f.CreateNode()
	e := f.CreateNode()
	f.SetInitial(s)
	f.AddEdge(s, e, fa.RangesLabel(set))

	frag := fragment{f: f, start: s, end: e}
	b.sink.Emit(stage, f, b.rule)
	return frag, nil
}

func (b *builder) buildEpsilon() fragment {
	f := fa.New()
	s := f.CreateNode()
	e := f.CreateNode()
	f.SetInitial(s)
	f.AddEdge(s, e, fa.EpsilonLabel())
	return fragment{f: f, start: s, end: e}
}

// weld merges src into dst (the FA being assembled) and returns src's
// start and end nodes remapped into dst's id space.
func weld(dst *fa.FA, src fragment) (fa.NodeID, fa.NodeID) {
	remap := dst.Merge(src.f, fa.MergeOptions{PreserveLabels: true})
	return remap[src.start], remap[src.end]
}

func (b *builder) buildConcat(ctx context.Context, n *ast.Concatenation) (fragment, error) {
	var frags []fragment
	for _, elem := range n.Elements {
		fr, err := b.build(ctx, elem)
		if err != nil {
			return fragment{}, err
		}
		frags = append(frags, fr)
	}

	result := b.concatAll(frags)
	b.sink.Emit(report.StageConcat, result.f, b.rule)
	return result, nil
}

// concatAll welds fragments left to right: prior.end --ε--> next.start.
// An empty slice concatenates to the identity element (a single ε
// edge), which buildBounded relies on for the {0,0} case.
func (b *builder) concatAll(frags []fragment) fragment {
	if len(frags) == 0 {
		return b.buildEpsilon()
	}

	result := fa.New()
	start, prevEnd := weld(result, frags[0])
	for _, fr := range frags[1:] {
		s, e := weld(result, fr)
		result.AddEdge(prevEnd, s, fa.EpsilonLabel())
		prevEnd = e
	}
	return fragment{f: result, start: start, end: prevEnd}
}

func (b *builder) buildAlt(ctx context.Context, n *ast.Alternation) (fragment, error) {
	var frags []fragment
	for _, alt := range n.Alternatives {
		fr, err := b.build(ctx, alt)
		if err != nil {
			return fragment{}, err
		}
		frags = append(frags, fr)
	}

	result := fa.New()
	start := result.CreateNode()
	end := result.CreateNode()
	result.SetInitial(start)
	for _, fr := range frags {
		s, e := weld(result, fr)
		result.AddEdge(start, s, fa.EpsilonLabel())
		result.AddEdge(e, end, fa.EpsilonLabel())
	}

	frag := fragment{f: result, start: start, end: end}
	b.sink.Emit(report.StageAlt, result, b.rule)
	return frag, nil
}

func (b *builder) buildClosure(ctx context.Context, n *ast.Closure) (fragment, error) {
	switch n.Kind {
	case ast.Star:
		return b.wrapStar(ctx, n.Body)
	case ast.Plus:
		return b.wrapPlus(ctx, n.Body)
	case ast.Quest:
		return b.wrapQuest(ctx, n.Body)
	case ast.Bounded:
		return b.buildBounded(ctx, n.Body, n.Range)
	case ast.LazyStar, ast.LazyPlus:
		return fragment{}, errs.New(errs.UnsupportedConstruct, "non-greedy closures are not compiled")
	default:
		return fragment{}, errs.New(errs.InternalInvariantViolation, "unrecognized closure kind %v", n.Kind)
	}
}

func (b *builder) wrapStar(ctx context.Context, body ast.Node) (fragment, error) {
	inner, err := b.build(ctx, body)
	if err != nil {
		return fragment{}, err
	}
	result := fa.New()
	start := result.CreateNode()
	end := result.CreateNode()
	result.SetInitial(start)
	s, e := weld(result, inner)

	result.AddEdge(start, s, fa.EpsilonLabel())
	result.AddEdge(start, end, fa.EpsilonLabel())
	result.AddEdge(e, s, fa.EpsilonLabel())
	result.AddEdge(e, end, fa.EpsilonLabel())

	frag := fragment{f: result, start: start, end: end}
	b.sink.Emit(report.StageClosure, result, b.rule)
	return frag, nil
}

func (b *builder) wrapPlus(ctx context.Context, body ast.Node) (fragment, error) {
	inner, err := b.build(ctx, body)
	if err != nil {
		return fragment{}, err
	}
	result := fa.New()
	start := result.CreateNode()
	end := result.CreateNode()
	result.SetInitial(start)
	s, e := weld(result, inner)

	result.AddEdge(start, s, fa.EpsilonLabel())
	result.AddEdge(e, s, fa.EpsilonLabel())
	result.AddEdge(e, end, fa.EpsilonLabel())

	frag := fragment{f: result, start: start, end: end}
	b.sink.Emit(report.StageClosure, result, b.rule)
	return frag, nil
}

func (b *builder) wrapQuest(ctx context.Context, body ast.Node) (fragment, error) {
	inner, err := b.build(ctx, body)
	if err != nil {
		return fragment{}, err
	}
	result := fa.New()
	start := result.CreateNode()
	end := result.CreateNode()
	result.SetInitial(start)
	s, e := weld(result, inner)

	result.AddEdge(start, s, fa.EpsilonLabel())
	result.AddEdge(start, end, fa.EpsilonLabel())
	result.AddEdge(e, end, fa.EpsilonLabel())

	frag := fragment{f: result, start: start, end: end}
	b.sink.Emit(report.StageClosure, result, b.rule)
	return frag, nil
}

// buildBounded unrolls `body{lower,upper}`: lower mandatory copies in
// concatenation, followed by (upper-lower) copies each wrapped in `?`.
// upper == ast.Unbounded appends a single `body*` instead. Every copy
// is synthesized from a fresh call to build so each instance gets its
// own nodes.
func (b *builder) buildBounded(ctx context.Context, body ast.Node, r *ast.ClosureRange) (fragment, error) {
	var frags []fragment
	for i := 0; i < r.Lower; i++ {
		fr, err := b.build(ctx, body)
		if err != nil {
			return fragment{}, err
		}
		frags = append(frags, fr)
	}

	if r.Upper == ast.Unbounded {
		tail, err := b.wrapStar(ctx, body)
		if err != nil {
			return fragment{}, err
		}
		frags = append(frags, tail)
	} else {
		for i := r.Lower; i < r.Upper; i++ {
			tail, err := b.wrapQuest(ctx, body)
			if err != nil {
				return fragment{}, err
			}
			frags = append(frags, tail)
		}
	}

	result := b.concatAll(frags)
	b.sink.Emit(report.StageClosure, result.f, b.rule)
	return result, nil
}

// hasPathToFinal reports whether some final node is reachable from the
// FA's initial node — the "no path to any final" check underlying
// errs.EmptyLanguage.
func hasPathToFinal(f *fa.FA) (fa.NodeID, bool) {
	start := f.Initial()
	visited := map[fa.NodeID]bool{start: true}
	queue := []fa.NodeID{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := f.IsFinal(cur); ok {
			return cur, true
		}
		for _, e := range f.Out(cur) {
			if !visited[e.To] {
				visited[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	return 0, false
}
