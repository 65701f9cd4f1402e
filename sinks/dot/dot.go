// Package dot renders an encoded DFA as a GraphViz DOT graph for manual
// inspection (`dot -Tps input.dot -o output.ps`).
package dot

import (
	"fmt"
	"io"
	"strconv"

	"github.com/corelang/lexgen/charset"
	"github.com/corelang/lexgen/output"
)

// Write prints dfa as a DOT digraph named id. Accepting nodes are
// filled green and, when they carry a rule tag, labeled "<id>: <rule
// name>" so a rendered graph doubles as a quick tie-break check.
func Write(out io.Writer, dfa *output.DFA, id string) {
	_, _ = fmt.Fprintf(out, "digraph %v {\n  rankdir=LR;\n  %v[shape=box];\n", id, dfa.Initial)

	for _, n := range dfa.Nodes {
		if !n.Accept {
			continue
		}
		label := ""
		if n.RuleTag != nil && *n.RuleTag < len(dfa.RuleTags) {
			label = fmt.Sprintf(",label=\"%d: %s\"", n.ID, dfa.RuleTags[*n.RuleTag])
		}
		_, _ = fmt.Fprintf(out, "  %v[style=filled,color=green%v];\n", n.ID, label)
	}

	for _, e := range dfa.Edges {
		_, _ = fmt.Fprintf(out, "  %v -> %v[label=%q];\n", e.From, e.To, rangeSetLabel(e.Label))
	}

	_, _ = fmt.Fprintln(out, "}")
}

// rangeSetLabel renders a character range set as a bracketed,
// comma-free span list, with non-printable runes spelled as U+XXXX.
func rangeSetLabel(set charset.CharRangeSet) string {
	label := "["
	if set.Negated() {
		label += "^"
	}
	for _, r := range set.Ranges() {
		label += runeToDot(r.Min)
		if r.Min != r.Max {
			label += "-" + runeToDot(r.Max)
		}
	}
	label += "]"
	return label
}

func runeToDot(r rune) string {
	if strconv.IsPrint(r) && r != '"' && r != '\\' {
		return string(r)
	}
	return fmt.Sprintf("U+%X", int(r))
}
