// Package fa implements the automaton graph: a directed multigraph of
// labeled nodes and edges shared by every later stage of the pipeline
// (Thompson synthesis, subset construction, Hopcroft minimization).
package fa

import (
	"sort"

	"github.com/corelang/lexgen/charset"
	"github.com/corelang/lexgen/errs"
)

// NodeID identifies a node, scoped to the owning FA. Monotonically
// increasing within a single FA (§5 ordering guarantee); re-issued on
// Merge.
type NodeID int

// Provenance replaces a mutated label string with a structured tuple:
// the rule a node was synthesized for, its pre-merge local id, and
// whether a prefix has actually been assigned yet. A sink renders this
// to "r<rule>_n<local>" at emit time; nothing in the core ever builds
// or parses that string.
type Provenance struct {
	RuleID int
	Local  int
	Valid  bool
}

// Node is one vertex of the graph. Final is a rule tag: -1 when the
// node is not accepting, else the index of the rule it accepts for —
// the mechanism that resolves ambiguity between rules sharing a state.
type Node struct {
	ID     NodeID
	Final  int
	Line   int
	Prov   Provenance
}

// LabelKind distinguishes an epsilon edge from a CharRangeSet edge —
// the only two label kinds the data model admits; there is no third
// "assertion edge" kind.
type LabelKind int

const (
	Epsilon LabelKind = iota
	Ranges
)

// Label is an edge's transition label: either Epsilon (Set is nil), or
// Ranges with a non-empty Set.
type Label struct {
	Kind LabelKind
	Set  *charset.CharRangeSet
}

// EpsilonLabel is the shared epsilon-edge label.
func EpsilonLabel() Label { return Label{Kind: Epsilon} }

// RangesLabel builds a CharRangeSet edge label.
func RangesLabel(set *charset.CharRangeSet) Label {
	return Label{Kind: Ranges, Set: set}
}

// Edge is a directed transition between two nodes of the same FA.
type Edge struct {
	From, To NodeID
	Label    Label
}

// FA is a directed multigraph: nodes, edges, one initial node, a set
// of final nodes (carried on Node.Final), and an accumulated alphabet.
// A moved-from FA (the source of a Merge) panics on any further use —
// see Merge.
type FA struct {
	nodes      []*Node
	out        map[NodeID][]*Edge
	initial    NodeID
	hasInitial bool
	alphabet   *charset.CharRangeSet
	movedFrom  bool
	nextID     NodeID
}

// New returns an empty FA with no nodes.
func New() *FA {
	return &FA{
		out:      make(map[NodeID][]*Edge),
		alphabet: charset.New(),
	}
}

func (f *FA) checkLive() {
	if f.movedFrom {
		panic(errs.New(errs.InternalInvariantViolation, "use of a moved-from FA"))
	}
}

// CreateNode adds a fresh, non-accepting node and returns its id.
func (f *FA) CreateNode() NodeID {
	f.checkLive()
	id := f.nextID
	f.nextID++
	f.nodes = append(f.nodes, &Node{ID: id, Final: -1})
	return id
}

// AddEdge adds a directed edge from -> to carrying label. Multiple
// edges between the same pair of nodes are permitted.
func (f *FA) AddEdge(from, to NodeID, label Label) {
	f.checkLive()
	f.out[from] = append(f.out[from], &Edge{From: from, To: to, Label: label})
	if label.Kind == Ranges && label.Set != nil {
		f.alphabet = charset.Union(f.alphabet, label.Set)
	}
}

// SetInitial overwrites any prior initial node.
func (f *FA) SetInitial(id NodeID) {
	f.checkLive()
	f.initial = id
	f.hasInitial = true
}

// Initial returns the initial node id. Panics if none has been set.
func (f *FA) Initial() NodeID {
	f.checkLive()
	if !f.hasInitial {
		panic(errs.New(errs.InternalInvariantViolation, "FA has no initial node"))
	}
	return f.initial
}

// AddFinal marks id as an accepting node owned by ruleTag. Additive
// across nodes; calling it again on the same node overwrites that
// node's tag.
func (f *FA) AddFinal(id NodeID, ruleTag int) {
	f.checkLive()
	n := f.mustNode(id)
	n.Final = ruleTag
}

// IsFinal reports whether id is an accepting node, and if so its rule
// tag.
func (f *FA) IsFinal(id NodeID) (int, bool) {
	f.checkLive()
	n := f.mustNode(id)
	return n.Final, n.Final >= 0
}

// Nodes returns every node id in creation order.
func (f *FA) Nodes() []NodeID {
	f.checkLive()
	out := make([]NodeID, len(f.nodes))
	for i, n := range f.nodes {
		out[i] = n.ID
	}
	return out
}

// Out returns the outgoing edges of id, in insertion order.
func (f *FA) Out(id NodeID) []*Edge {
	f.checkLive()
	return f.out[id]
}

// Edges returns every edge in the graph, grouped by source node in
// node-creation order.
func (f *FA) Edges() []*Edge {
	f.checkLive()
	var all []*Edge
	for _, n := range f.nodes {
		all = append(all, f.out[n.ID]...)
	}
	return all
}

// Alphabet returns the accumulated union of every CharRangeSet label
// occurring on a non-epsilon edge.
func (f *FA) Alphabet() *charset.CharRangeSet {
	f.checkLive()
	return f.alphabet
}

// UpdateAlphabet recomputes the alphabet field from the current edge
// labels, discarding any drift from direct edge manipulation.
func (f *FA) UpdateAlphabet() {
	f.checkLive()
	alpha := charset.New()
	for _, e := range f.Edges() {
		if e.Label.Kind == Ranges && e.Label.Set != nil {
			alpha = charset.Union(alpha, e.Label.Set)
		}
	}
	f.alphabet = alpha
}

func (f *FA) mustNode(id NodeID) *Node {
	for _, n := range f.nodes {
		if n.ID == id {
			return n
		}
	}
	panic(errs.New(errs.InternalInvariantViolation, "node %d not found", int(id)))
}

// PrefixLabels tags every node's provenance with ruleID, for reporting
// only — it never changes NodeID or graph structure. A sink renders
// Provenance to "r<rule>_n<local>"; the core never materializes that
// string itself.
func (f *FA) PrefixLabels(ruleID int) {
	f.checkLive()
	for _, n := range f.nodes {
		n.Prov = Provenance{RuleID: ruleID, Local: int(n.ID), Valid: true}
	}
}

// MergeOptions controls Merge's label-provenance behavior.
type MergeOptions struct {
	// PreserveLabels keeps each absorbed node's existing Provenance.
	// When false, absorbed nodes get the zero Provenance (Valid is
	// false); no fresh prefix is assigned.
	PreserveLabels bool
}

// Merge absorbs other's nodes and edges into f, returning a remap table
// from other's old NodeIDs to their new ids in f. other is marked
// moved-from: any further call on it panics with
// errs.InternalInvariantViolation, modeling "merge absorbs and
// consumes" as an explicit one-shot transfer rather than mutable
// in-place absorption.
func (f *FA) Merge(other *FA, opts MergeOptions) map[NodeID]NodeID {
	f.checkLive()
	other.checkLive()

	remap := make(map[NodeID]NodeID, len(other.nodes))
	for _, n := range other.nodes {
		newID := f.CreateNode()
		remap[n.ID] = newID
		fresh := f.mustNode(newID)
		fresh.Final = n.Final
		fresh.Line = n.Line
		if opts.PreserveLabels {
			fresh.Prov = n.Prov
		}
	}
	for _, e := range other.Edges() {
		f.AddEdge(remap[e.From], remap[e.To], e.Label)
	}

	other.movedFrom = true
	other.nodes = nil
	other.out = nil

	return remap
}

// SortNodeIDs returns a sorted copy of ids. Exported for callers
// (subset, hopcroft) that need deterministic iteration over a set of
// NodeIDs gathered from a map.
func SortNodeIDs(ids []NodeID) []NodeID {
	out := make([]NodeID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
