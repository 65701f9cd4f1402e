package subset

import (
	"context"
	"testing"

	"github.com/corelang/lexgen/ast"
	"github.com/corelang/lexgen/charset"
	"github.com/corelang/lexgen/fa"
	"github.com/corelang/lexgen/thompson"
	"github.com/stretchr/testify/require"
)

func synth(t *testing.T, body ast.Node) *fa.FA {
	t.Helper()
	stmt := ast.Rule("R", body)
	f, err := thompson.SynthesizeRule(context.Background(), stmt, 0, nil)
	require.NoError(t, err)
	return f
}

func acceptsString(t *testing.T, dfa *fa.FA, s string) bool {
	t.Helper()
	cur := dfa.Initial()
	for _, r := range s {
		next, ok := fa.NodeID(-1), false
		for _, e := range dfa.Out(cur) {
			if e.Label.Kind == fa.Ranges && e.Label.Set.Contains(r) {
				next, ok = e.To, true
				break
			}
		}
		if !ok {
			return false
		}
		cur = next
	}
	_, accept := dfa.IsFinal(cur)
	return accept
}

func TestBuildSingleCharAcceptsExactlyThatString(t *testing.T) {
	nfa := synth(t, ast.Lit('a'))
	dfa, err := Build(context.Background(), nfa)
	require.NoError(t, err)

	require.True(t, acceptsString(t, dfa, "a"))
	require.False(t, acceptsString(t, dfa, ""))
	require.False(t, acceptsString(t, dfa, "aa"))
	require.False(t, acceptsString(t, dfa, "b"))
}

func TestBuildAlternationAcceptsEitherBranch(t *testing.T) {
	nfa := synth(t, ast.Alt(ast.Lit('a'), ast.Lit('b')))
	dfa, err := Build(context.Background(), nfa)
	require.NoError(t, err)

	require.True(t, acceptsString(t, dfa, "a"))
	require.True(t, acceptsString(t, dfa, "b"))
	require.False(t, acceptsString(t, dfa, "c"))
}

func TestBuildStarOfConcatAcceptsEmptyAndRepeats(t *testing.T) {
	nfa := synth(t, ast.StarOf(ast.Seq(ast.Lit('a'), ast.Lit('b'))))
	dfa, err := Build(context.Background(), nfa)
	require.NoError(t, err)

	require.True(t, acceptsString(t, dfa, ""))
	require.True(t, acceptsString(t, dfa, "ab"))
	require.True(t, acceptsString(t, dfa, "abab"))
	require.False(t, acceptsString(t, dfa, "a"))
	require.False(t, acceptsString(t, dfa, "abb"))
}

func TestBuildCharClassPlusAcceptsAnyNonEmptyRun(t *testing.T) {
	r, err := charset.NewRange('a', 'z')
	require.NoError(t, err)
	nfa := synth(t, ast.PlusOf(ast.SetOf(r)))
	dfa, berr := Build(context.Background(), nfa)
	require.NoError(t, berr)

	require.True(t, acceptsString(t, dfa, "abc"))
	require.False(t, acceptsString(t, dfa, ""))
	require.False(t, acceptsString(t, dfa, "aB"))
}

func TestBuildBoundedClosure(t *testing.T) {
	nfa := synth(t, ast.BoundedOf(ast.Lit('a'), 2, 4))
	dfa, err := Build(context.Background(), nfa)
	require.NoError(t, err)

	require.True(t, acceptsString(t, dfa, "aa"))
	require.True(t, acceptsString(t, dfa, "aaa"))
	require.True(t, acceptsString(t, dfa, "aaaa"))
	require.False(t, acceptsString(t, dfa, "a"))
	require.False(t, acceptsString(t, dfa, "aaaaa"))
}

func TestBuildProducesNoEpsilonEdges(t *testing.T) {
	nfa := synth(t, ast.Alt(ast.Lit('a'), ast.Lit('b')))
	dfa, err := Build(context.Background(), nfa)
	require.NoError(t, err)

	for _, id := range dfa.Nodes() {
		for _, e := range dfa.Out(id) {
			require.Equal(t, fa.Ranges, e.Label.Kind)
		}
	}
}

func TestBuildOutgoingLabelsArePairwiseDisjoint(t *testing.T) {
	ra, _ := charset.NewRange('a', 'm')
	rb, _ := charset.NewRange('g', 'z')
	nfa := synth(t, ast.Alt(ast.SetOf(ra), ast.SetOf(rb)))
	dfa, err := Build(context.Background(), nfa)
	require.NoError(t, err)

	for _, id := range dfa.Nodes() {
		seen := charset.New()
		for _, e := range dfa.Out(id) {
			require.True(t, charset.Intersect(seen, e.Label.Set).IsEmpty())
			seen = charset.Union(seen, e.Label.Set)
		}
	}
}

func TestBuildRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	nfa := synth(t, ast.Lit('a'))
	_, err := Build(ctx, nfa)
	require.ErrorIs(t, err, context.Canceled)
}
