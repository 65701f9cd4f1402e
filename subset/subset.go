// Package subset implements subset construction: determinizing an
// epsilon-NFA into a DFA over a minterm alphabet, via an explicit FIFO
// worklist so state numbering is reproducible across runs.
package subset

import (
	"context"
	"sort"

	"github.com/corelang/lexgen/charset"
	"github.com/corelang/lexgen/errs"
	"github.com/corelang/lexgen/fa"
)

// nfaSet is a canonical, sorted, deduplicated set of NFA node ids — the
// identity of one DFA state before it is materialized.
type nfaSet struct {
	key string
	ids []fa.NodeID
}

func canonicalSet(ids map[fa.NodeID]bool) nfaSet {
	sorted := make([]fa.NodeID, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	buf := make([]byte, 0, len(sorted)*6)
	for i, id := range sorted {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendInt(buf, int(id))
	}
	return nfaSet{key: string(buf), ids: sorted}
}

func appendInt(buf []byte, v int) []byte {
	if v == 0 {
		return append(buf, '0')
	}
	neg := v < 0
	if neg {
		v = -v
	}
	start := len(buf)
	for v > 0 {
		buf = append(buf, byte('0'+v%10))
		v /= 10
	}
	if neg {
		buf = append(buf, '-')
	}
	// reverse the digits just appended
	end := len(buf) - 1
	for start < end {
		buf[start], buf[end] = buf[end], buf[start]
		start++
		end--
	}
	return buf
}

// epsilonClosure returns the least fixed point containing every id in
// seed and closed under epsilon edges.
func epsilonClosure(nfa *fa.FA, seed []fa.NodeID) map[fa.NodeID]bool {
	closure := make(map[fa.NodeID]bool, len(seed))
	queue := make([]fa.NodeID, 0, len(seed))
	for _, id := range seed {
		if !closure[id] {
			closure[id] = true
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range nfa.Out(cur) {
			if e.Label.Kind != fa.Epsilon {
				continue
			}
			if !closure[e.To] {
				closure[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	return closure
}

// move returns every NFA node reachable from some member of set via a
// non-epsilon edge whose label contains m.
func move(nfa *fa.FA, set []fa.NodeID, m charset.CharRange) map[fa.NodeID]bool {
	out := make(map[fa.NodeID]bool)
	for _, id := range set {
		for _, e := range nfa.Out(id) {
			if e.Label.Kind != fa.Ranges || e.Label.Set == nil {
				continue
			}
			if e.Label.Set.Contains(m.Min) {
				out[e.To] = true
			}
		}
	}
	return out
}

// acceptingTag returns the DFA state's rule tag: the lowest rule tag
// carried by any final NFA node in set, or (-1, false) if set contains
// no final node. The lowest tag is the earliest-declared rule because
// rule ids are assigned in declaration order by the synthesizer.
func acceptingTag(nfa *fa.FA, set []fa.NodeID) (int, bool) {
	best := -1
	found := false
	for _, id := range set {
		if tag, ok := nfa.IsFinal(id); ok {
			if !found || tag < best {
				best = tag
				found = true
			}
		}
	}
	return best, found
}

// edgeLabelSets collects every non-epsilon edge's own range set,
// unmerged, so Minterms sees each rule's original boundaries rather
// than the FA-wide alphabet fa.AddEdge folds them into (that coalesced
// set is for alphabet bookkeeping only and has already lost the
// individual edges it was built from).
func edgeLabelSets(nfaAut *fa.FA) []*charset.CharRangeSet {
	var sets []*charset.CharRangeSet
	for _, e := range nfaAut.Edges() {
		if e.Label.Kind == fa.Ranges && e.Label.Set != nil {
			sets = append(sets, e.Label.Set)
		}
	}
	return sets
}

// Build runs subset construction over nfa, returning a fresh DFA. The
// DFA's nodes carry no provenance of their own (PrefixLabels is a
// Thompson/FA-level concern); ctx is checked after each DFA state is
// dequeued.
func Build(ctx context.Context, nfaAut *fa.FA) (*fa.FA, error) {
	minterms := charset.Minterms(edgeLabelSets(nfaAut))

	dfa := fa.New()
	tab := make(map[string]fa.NodeID)

	q0 := canonicalSet(epsilonClosure(nfaAut, []fa.NodeID{nfaAut.Initial()}))
	start := dfa.CreateNode()
	dfa.SetInitial(start)
	tab[q0.key] = start
	if tag, ok := acceptingTag(nfaAut, q0.ids); ok {
		dfa.AddFinal(start, tag)
	}

	queue := []nfaSet{q0}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cur := queue[0]
		queue = queue[1:]
		curID := tab[cur.key]

		// Accumulate, per destination DFA state, every minterm that
		// leads there, so adjacent minterms resolving to the same
		// state can be coalesced into one multi-range edge instead of
		// one edge per minterm.
		byDest := make(map[string][]charset.CharRange)
		destSet := make(map[string]nfaSet)

		for _, m := range minterms {
			moved := move(nfaAut, cur.ids, m)
			if len(moved) == 0 {
				continue
			}
			closure := epsilonClosure(nfaAut, keysOf(moved))
			next := canonicalSet(closure)
			byDest[next.key] = append(byDest[next.key], m)
			destSet[next.key] = next
		}

		destKeys := make([]string, 0, len(byDest))
		for key := range byDest {
			destKeys = append(destKeys, key)
		}
		sort.Strings(destKeys)

		for _, key := range destKeys {
			ranges := byDest[key]
			next := destSet[key]
			destID, seen := tab[key]
			if !seen {
				destID = dfa.CreateNode()
				tab[key] = destID
				if tag, ok := acceptingTag(nfaAut, next.ids); ok {
					dfa.AddFinal(destID, tag)
				}
				queue = append(queue, next)
			}
			coalesced := charset.New()
			for _, r := range ranges {
				coalesced.Insert(r)
			}
			dfa.AddEdge(curID, destID, fa.RangesLabel(coalesced))
		}
	}

	dfa.UpdateAlphabet()
	if err := verifyDeterministic(dfa); err != nil {
		return nil, err
	}
	return dfa, nil
}

func keysOf(m map[fa.NodeID]bool) []fa.NodeID {
	out := make([]fa.NodeID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}

// verifyDeterministic checks the invariant subset construction must
// produce: no epsilon edges, and at most one outgoing edge per minterm
// per state (here: pairwise-disjoint outgoing label sets).
func verifyDeterministic(dfa *fa.FA) error {
	for _, id := range dfa.Nodes() {
		seen := charset.New()
		for _, e := range dfa.Out(id) {
			if e.Label.Kind == fa.Epsilon {
				return errs.New(errs.InternalInvariantViolation, "DFA node %d has an epsilon edge", int(id))
			}
			if !charset.Intersect(seen, e.Label.Set).IsEmpty() {
				return errs.New(errs.InternalInvariantViolation, "DFA node %d has overlapping outgoing labels", int(id))
			}
			seen = charset.Union(seen, e.Label.Set)
		}
	}
	return nil
}
