package output

import (
	"context"
	"testing"

	"github.com/corelang/lexgen/ast"
	"github.com/corelang/lexgen/hopcroft"
	"github.com/corelang/lexgen/subset"
	"github.com/corelang/lexgen/thompson"
	"github.com/stretchr/testify/require"
)

func TestEncodeRenumbersNodesAndSortsEdges(t *testing.T) {
	stmt := ast.Rule("A", ast.Alt(ast.Lit('a'), ast.Lit('b')))
	nfa, err := thompson.SynthesizeRule(context.Background(), stmt, 0, nil)
	require.NoError(t, err)
	dfa, err := subset.Build(context.Background(), nfa)
	require.NoError(t, err)
	min, err := hopcroft.Minimize(context.Background(), dfa)
	require.NoError(t, err)

	enc := Encode(min, []string{"A"})

	require.Equal(t, 0, enc.Initial)
	require.Len(t, enc.Nodes, len(min.Nodes()))

	for i := 1; i < len(enc.Edges); i++ {
		prev, cur := enc.Edges[i-1], enc.Edges[i]
		require.True(t, prev.From < cur.From || (prev.From == cur.From && prev.To <= cur.To))
	}

	var sawAccept bool
	for _, n := range enc.Nodes {
		if n.Accept {
			sawAccept = true
			require.NotNil(t, n.RuleTag)
			require.Equal(t, 0, *n.RuleTag)
		}
	}
	require.True(t, sawAccept)
}

func TestEncodeNonAcceptingNodeHasNilRuleTag(t *testing.T) {
	stmt := ast.Rule("A", ast.Lit('a'))
	nfa, err := thompson.SynthesizeRule(context.Background(), stmt, 0, nil)
	require.NoError(t, err)
	dfa, err := subset.Build(context.Background(), nfa)
	require.NoError(t, err)

	enc := Encode(dfa, []string{"A"})
	for _, n := range enc.Nodes {
		if !n.Accept {
			require.Nil(t, n.RuleTag)
		}
	}
}
