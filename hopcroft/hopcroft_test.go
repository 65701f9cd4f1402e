package hopcroft

import (
	"context"
	"testing"

	"github.com/corelang/lexgen/ast"
	"github.com/corelang/lexgen/charset"
	"github.com/corelang/lexgen/fa"
	"github.com/corelang/lexgen/subset"
	"github.com/corelang/lexgen/thompson"
	"github.com/stretchr/testify/require"
)

func buildDFA(t *testing.T, body ast.Node) *fa.FA {
	t.Helper()
	stmt := ast.Rule("R", body)
	nfa, err := thompson.SynthesizeRule(context.Background(), stmt, 0, nil)
	require.NoError(t, err)
	dfa, err := subset.Build(context.Background(), nfa)
	require.NoError(t, err)
	return dfa
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

func TestMinimizeSingleCharTwoStates(t *testing.T) {
	dfa := buildDFA(t, ast.Lit('a'))
	min, err := Minimize(context.Background(), dfa)
	require.NoError(t, err)

	require.Len(t, min.Nodes(), 2)
	require.True(t, acceptsString(t, min, "a"))
	require.False(t, acceptsString(t, min, ""))
	require.False(t, acceptsString(t, min, "aa"))
}

func TestMinimizeAlternationTwoStates(t *testing.T) {
	dfa := buildDFA(t, ast.Alt(ast.Lit('a'), ast.Lit('b')))
	min, err := Minimize(context.Background(), dfa)
	require.NoError(t, err)

	require.Len(t, min.Nodes(), 2)
	require.True(t, acceptsString(t, min, "a"))
	require.True(t, acceptsString(t, min, "b"))
	require.False(t, acceptsString(t, min, "c"))
}

func TestMinimizeStarOfConcatTwoStatesInitialAccepting(t *testing.T) {
	dfa := buildDFA(t, ast.StarOf(ast.Seq(ast.Lit('a'), ast.Lit('b'))))
	min, err := Minimize(context.Background(), dfa)
	require.NoError(t, err)

	require.Len(t, min.Nodes(), 2)
	_, initAccepts := min.IsFinal(min.Initial())
	require.True(t, initAccepts)

	require.True(t, acceptsString(t, min, ""))
	require.True(t, acceptsString(t, min, "ab"))
	require.True(t, acceptsString(t, min, "abab"))
	require.False(t, acceptsString(t, min, "a"))
	require.False(t, acceptsString(t, min, "abb"))
}

func TestMinimizeCharClassPlusTwoStates(t *testing.T) {
	r, err := charset.NewRange('a', 'z')
	require.NoError(t, err)
	dfa := buildDFA(t, ast.PlusOf(ast.SetOf(r)))
	min, merr := Minimize(context.Background(), dfa)
	require.NoError(t, merr)

	require.Len(t, min.Nodes(), 2)
	require.True(t, acceptsString(t, min, "abc"))
	require.False(t, acceptsString(t, min, ""))
	require.False(t, acceptsString(t, min, "aB"))
}

func TestMinimizeIsIdempotent(t *testing.T) {
	dfa := buildDFA(t, ast.Alt(ast.Lit('a'), ast.Lit('b')))
	once, err := Minimize(context.Background(), dfa)
	require.NoError(t, err)

	twice, err := Minimize(context.Background(), once)
	require.NoError(t, err)

	require.Equal(t, len(once.Nodes()), len(twice.Nodes()))
}

func TestMinimizePreservesRuleTagsAcrossTwoRules(t *testing.T) {
	desc := ast.Description(
		ast.Rule("KW", ast.Seq(ast.Lit('i'), ast.Lit('f'))),
		ast.Rule("ID", ast.PlusOf(ast.SetOf(charset.CharRange{Min: 'a', Max: 'z'}))),
	)

	nfa, err := thompson.Synthesize(context.Background(), desc, true, nil)
	require.NoError(t, err)
	dfa, err := subset.Build(context.Background(), nfa)
	require.NoError(t, err)
	min, err := Minimize(context.Background(), dfa)
	require.NoError(t, err)

	tagFor := func(s string) (int, bool) {
		cur := min.Initial()
		for _, r := range s {
			next, ok := fa.NodeID(-1), false
			for _, e := range min.Out(cur) {
				if e.Label.Kind == fa.Ranges && e.Label.Set.Contains(r) {
					next, ok = e.To, true
					break
				}
			}
			if !ok {
				return 0, false
			}
			cur = next
		}
		return min.IsFinal(cur)
	}

	tag, ok := tagFor("if")
	require.True(t, ok)
	require.Equal(t, 0, tag, "KW is declared first and should win the tie over ID")

	tag, ok = tagFor("ifs")
	require.True(t, ok)
	require.Equal(t, 1, tag)
}

func TestMinimizeRespectsCancellation(t *testing.T) {
	dfa := buildDFA(t, ast.Lit('a'))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Minimize(ctx, dfa)
	require.ErrorIs(t, err, context.Canceled)
}
