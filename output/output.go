// Package output defines the hand-off boundary between the automaton
// core and everything downstream of it: the (out-of-scope) runtime
// scanner and serialization sinks. DFA itself performs no I/O; encoding
// to JSON, gob, or a Go source fragment is the caller's concern.
package output

import (
	"sort"

	"github.com/corelang/lexgen/charset"
	"github.com/corelang/lexgen/fa"
)

// Node is one state of the serialized minimal DFA.
type Node struct {
	ID      int
	Accept  bool
	RuleTag *int // nil unless Accept; index into DFA.RuleTags
}

// Edge is one transition, labeled with the (possibly multi-range)
// character set that triggers it.
type Edge struct {
	From, To int
	Label    charset.CharRangeSet
}

// DFA is the serializable record of a minimal DFA: every node, every
// edge, the initial node id, and the rule names in declaration order
// (RuleTags[i] is the name a Node.RuleTag of i refers to).
type DFA struct {
	Nodes    []Node
	Edges    []Edge
	Initial  int
	RuleTags []string
}

// Encode flattens minDFA into a DFA record. Node ids in the record are
// renumbered 0..n-1 in ascending order of minDFA's own fa.NodeID values
// so the encoding is reproducible for a fixed minimization run.
func Encode(minDFA *fa.FA, ruleTags []string) *DFA {
	ids := fa.SortNodeIDs(minDFA.Nodes())
	renumber := make(map[fa.NodeID]int, len(ids))
	for i, id := range ids {
		renumber[id] = i
	}

	out := &DFA{
		Initial:  renumber[minDFA.Initial()],
		RuleTags: append([]string(nil), ruleTags...),
	}

	for _, id := range ids {
		n := Node{ID: renumber[id]}
		if tag, ok := minDFA.IsFinal(id); ok {
			n.Accept = true
			tagCopy := tag
			n.RuleTag = &tagCopy
		}
		out.Nodes = append(out.Nodes, n)
	}

	for _, id := range ids {
		for _, e := range minDFA.Out(id) {
			if e.Label.Kind != fa.Ranges || e.Label.Set == nil {
				continue
			}
			out.Edges = append(out.Edges, Edge{
				From:  renumber[id],
				To:    renumber[e.To],
				Label: *e.Label.Set,
			})
		}
	}
	sort.Slice(out.Edges, func(i, j int) bool {
		if out.Edges[i].From != out.Edges[j].From {
			return out.Edges[i].From < out.Edges[j].From
		}
		return out.Edges[i].To < out.Edges[j].To
	})

	return out
}
