// Package hopcroft implements DFA minimization via Hopcroft's
// partition-refinement algorithm: the classic splitter worklist with
// the "process the smaller half" rule, keeping rule tags intact across
// the refinement.
package hopcroft

import (
	"context"
	"sort"

	"github.com/corelang/lexgen/charset"
	"github.com/corelang/lexgen/errs"
	"github.com/corelang/lexgen/fa"
)

type partitionKey struct {
	accept bool
	tag    int
}

// edgeLabelSets collects every edge's own range set, unmerged, so
// Minterms sees each state's original boundaries rather than the
// FA-wide alphabet fa.AddEdge folds them into (that coalesced set is
// for alphabet bookkeeping only and has already lost the individual
// edges it was built from).
func edgeLabelSets(dfaAut *fa.FA) []*charset.CharRangeSet {
	var sets []*charset.CharRangeSet
	for _, e := range dfaAut.Edges() {
		if e.Label.Kind == fa.Ranges && e.Label.Set != nil {
			sets = append(sets, e.Label.Set)
		}
	}
	return sets
}

// Minimize produces a DFA with the fewest states accepting the same
// per-rule language as dfaAut, preserving rule tags. ctx is checked
// after each split.
func Minimize(ctx context.Context, dfaAut *fa.FA) (*fa.FA, error) {
	minterms := charset.Minterms(edgeLabelSets(dfaAut))
	states := fa.SortNodeIDs(dfaAut.Nodes())

	// delta[state][minterm index] = destination state, or -1 for an
	// implicit reject (no outgoing edge covers that minterm).
	delta := buildDeltaTable(dfaAut, states, minterms)

	blockOf, blocks, nextID := initialPartition(dfaAut, states)

	worklist := make([]int, 0, len(blocks))
	inWorklist := make(map[int]bool, len(blocks))
	for id := range blocks {
		worklist = append(worklist, id)
		inWorklist[id] = true
	}
	sort.Ints(worklist)

	for len(worklist) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		splitterID := worklist[0]
		worklist = worklist[1:]
		inWorklist[splitterID] = false
		splitter := blocks[splitterID]
		if len(splitter) == 0 {
			continue
		}
		splitterSet := make(map[fa.NodeID]bool, len(splitter))
		for _, s := range splitter {
			splitterSet[s] = true
		}

		for mi := range minterms {
			// X = preimage of the splitter under this minterm.
			var x []fa.NodeID
			for _, s := range states {
				if d, ok := delta[s][mi].Get(); ok && splitterSet[d] {
					x = append(x, s)
				}
			}
			if len(x) == 0 {
				continue
			}
			xSet := make(map[fa.NodeID]bool, len(x))
			for _, s := range x {
				xSet[s] = true
			}

			affected := affectedBlocks(x, blockOf)
			for _, yID := range affected {
				y := blocks[yID]
				var inX, notInX []fa.NodeID
				for _, s := range y {
					if xSet[s] {
						inX = append(inX, s)
					} else {
						notInX = append(notInX, s)
					}
				}
				if len(inX) == 0 || len(notInX) == 0 {
					continue // Y wholly inside or outside X: no split.
				}

				smaller, larger := inX, notInX
				if len(larger) < len(smaller) {
					smaller, larger = larger, smaller
				}

				newID := nextID
				nextID++
				blocks[yID] = larger
				blocks[newID] = smaller
				for _, s := range smaller {
					blockOf[s] = newID
				}

				// yID keeps the larger half and, if already queued,
				// stays queued representing it. Either way only the
				// new, smaller-half block needs to be (re-)queued.
				worklist = append(worklist, newID)
				inWorklist[newID] = true

				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
		}
	}

	return buildResult(dfaAut, states, minterms, delta, blockOf, blocks)
}

// initialPartition groups states by (accept?, rule-tag), assigning
// block ids in a deterministic order (sorted by the partition key) so
// a fixed rule ordering always yields the same minimized automaton.
func initialPartition(dfaAut *fa.FA, states []fa.NodeID) (map[fa.NodeID]int, map[int][]fa.NodeID, int) {
	groups := make(map[partitionKey][]fa.NodeID)
	for _, s := range states {
		key := partitionKey{accept: false, tag: -1}
		if tag, ok := dfaAut.IsFinal(s); ok {
			key = partitionKey{accept: true, tag: tag}
		}
		groups[key] = append(groups[key], s)
	}

	var keys []partitionKey
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].accept != keys[j].accept {
			return !keys[i].accept
		}
		return keys[i].tag < keys[j].tag
	})

	blockOf := make(map[fa.NodeID]int, len(states))
	blocks := make(map[int][]fa.NodeID, len(keys))
	nextID := 0
	for _, k := range keys {
		id := nextID
		nextID++
		blocks[id] = groups[k]
		for _, s := range groups[k] {
			blockOf[s] = id
		}
	}
	return blockOf, blocks, nextID
}

func buildDeltaTable(dfaAut *fa.FA, states []fa.NodeID, minterms []charset.CharRange) map[fa.NodeID][]option {
	delta := make(map[fa.NodeID][]option, len(states))
	for _, s := range states {
		row := make([]option, len(minterms))
		for mi, m := range minterms {
			row[mi] = findDestination(dfaAut, s, m)
		}
		delta[s] = row
	}
	return delta
}

type option struct {
	dest fa.NodeID
	ok   bool
}

func (o option) Get() (fa.NodeID, bool) { return o.dest, o.ok }

func findDestination(dfaAut *fa.FA, s fa.NodeID, m charset.CharRange) option {
	for _, e := range dfaAut.Out(s) {
		if e.Label.Kind == fa.Ranges && e.Label.Set != nil && e.Label.Set.Contains(m.Min) {
			return option{dest: e.To, ok: true}
		}
	}
	return option{}
}

// affectedBlocks returns, in ascending order, the distinct block ids
// any state of x currently belongs to.
func affectedBlocks(x []fa.NodeID, blockOf map[fa.NodeID]int) []int {
	seen := make(map[int]bool)
	for _, s := range x {
		seen[blockOf[s]] = true
	}
	out := make([]int, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// buildResult materializes one DFA node per surviving block, lifting
// transitions per minterm and coalescing adjacent minterms that land on
// the same destination block into a single multi-range edge.
func buildResult(dfaAut *fa.FA, states []fa.NodeID, minterms []charset.CharRange, delta map[fa.NodeID][]option, blockOf map[fa.NodeID]int, blocks map[int][]fa.NodeID) (*fa.FA, error) {
	var blockIDs []int
	for id, members := range blocks {
		if len(members) > 0 {
			blockIDs = append(blockIDs, id)
		}
	}
	sort.Ints(blockIDs)

	result := fa.New()
	resultID := make(map[int]fa.NodeID, len(blockIDs))
	for _, id := range blockIDs {
		resultID[id] = result.CreateNode()
	}

	initialBlock := blockOf[dfaAut.Initial()]
	result.SetInitial(resultID[initialBlock])

	for _, id := range blockIDs {
		members := blocks[id]
		rep := members[0]
		if tag, ok := dfaAut.IsFinal(rep); ok {
			for _, m := range members[1:] {
				if otherTag, ok2 := dfaAut.IsFinal(m); !ok2 || otherTag != tag {
					return nil, errs.New(errs.InternalInvariantViolation, "block %d mixes accept status or rule tags", id)
				}
			}
			result.AddFinal(resultID[id], tag)
		}

		byDest := make(map[int][]charset.CharRange)
		for mi, m := range minterms {
			d, ok := delta[rep][mi].Get()
			if !ok {
				continue
			}
			destBlock := blockOf[d]
			byDest[destBlock] = append(byDest[destBlock], m)
		}

		var destBlocks []int
		for db := range byDest {
			destBlocks = append(destBlocks, db)
		}
		sort.Ints(destBlocks)
		for _, db := range destBlocks {
			set := charset.New()
			for _, r := range byDest[db] {
				set.Insert(r)
			}
			result.AddEdge(resultID[id], resultID[db], fa.RangesLabel(set))
		}
	}

	result.UpdateAlphabet()
	return result, nil
}
