package main

import (
	"context"
	"testing"

	"github.com/corelang/lexgen/ast"
	"github.com/corelang/lexgen/pipeline"
	"github.com/stretchr/testify/require"
)

func TestDecodeDescriptionBuildsRunnablePipelineInput(t *testing.T) {
	data := []byte(`{
		"rules": [
			{"name": "KW", "body": {"kind": "concat", "elements": [
				{"kind": "char", "literal": 105},
				{"kind": "char", "literal": 102}
			]}},
			{"name": "ID", "body": {"kind": "closure", "closureKind": "plus", "body":
				{"kind": "set", "ranges": [[97, 122]]}
			}}
		]
	}`)

	desc, err := decodeDescription(data)
	require.NoError(t, err)
	require.Len(t, desc.Rules, 2)
	require.Equal(t, "KW", desc.Rules[0].Name)
	require.Equal(t, "ID", desc.Rules[1].Name)

	res, err := pipeline.Run(context.Background(), desc, pipeline.Options{}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"KW", "ID"}, res.RuleTags)
}

func TestDecodeDescriptionRejectsUnknownNodeKind(t *testing.T) {
	_, err := decodeDescription([]byte(`{"rules":[{"name":"A","body":{"kind":"bogus"}}]}`))
	require.Error(t, err)
}

func TestDecodeDescriptionRejectsMalformedRange(t *testing.T) {
	_, err := decodeDescription([]byte(`{"rules":[{"name":"A","body":{"kind":"set","ranges":[[122,97]]}}]}`))
	require.Error(t, err)
}

func TestDecodeNodeNilBodyIsEmptyAlternation(t *testing.T) {
	n, err := decodeNode(nil)
	require.NoError(t, err)
	alt, ok := n.(*ast.Alternation)
	require.True(t, ok)
	require.Empty(t, alt.Alternatives)
}
