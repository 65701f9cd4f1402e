package charset

import (
	"sort"
	"strings"
)

// CharRangeSet is a set of CharRange values held as disjoint, sorted
// ranges. The negated flag is a cosmetic hint surviving from the AST
// (`[^...]`) — see Complement for where it actually gets resolved into
// enumerated, positive form before the automaton layer ever sees it.
type CharRangeSet struct {
	ranges  []CharRange
	negated bool
}

// New returns an empty, non-negated set.
func New() *CharRangeSet {
	return &CharRangeSet{}
}

// FromRanges builds a set by inserting each range in turn.
func FromRanges(rs ...CharRange) *CharRangeSet {
	s := New()
	for _, r := range rs {
		s.Insert(r)
	}
	return s
}

// Negated reports the cosmetic AST-level negation hint.
func (s *CharRangeSet) Negated() bool { return s.negated }

// SetNegated sets the cosmetic AST-level negation hint.
func (s *CharRangeSet) SetNegated(v bool) { s.negated = v }

// Ranges returns a defensive copy of the disjoint, sorted ranges.
func (s *CharRangeSet) Ranges() []CharRange {
	out := make([]CharRange, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// IsEmpty reports whether the set contains no ranges.
func (s *CharRangeSet) IsEmpty() bool { return len(s.ranges) == 0 }

// Insert merges r into the disjoint set, coalescing overlapping or
// abutting ranges. Idempotent: sort once, then fold adjacent or
// overlapping ranges left to right.
func (s *CharRangeSet) Insert(r CharRange) {
	s.ranges = append(s.ranges, r)
	s.coalesce()
}

func (s *CharRangeSet) coalesce() {
	if len(s.ranges) < 2 {
		return
	}
	sort.Slice(s.ranges, func(i, j int) bool { return s.ranges[i].Min < s.ranges[j].Min })
	out := s.ranges[:1]
	for _, cur := range s.ranges[1:] {
		last := &out[len(out)-1]
		if cur.Min <= last.Max+1 {
			if cur.Max > last.Max {
				last.Max = cur.Max
			}
			continue
		}
		out = append(out, cur)
	}
	s.ranges = out
}

// Contains reports whether c is a member of the set (ignoring the
// cosmetic negation flag; negation is only meaningful before lowering).
func (s *CharRangeSet) Contains(c rune) bool {
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].Max >= c })
	return i < len(s.ranges) && s.ranges[i].Min <= c
}

// Union returns a new set containing every code point in a or b.
func Union(a, b *CharRangeSet) *CharRangeSet {
	out := New()
	for _, r := range a.ranges {
		out.Insert(r)
	}
	for _, r := range b.ranges {
		out.Insert(r)
	}
	return out
}

// Intersect returns a new set containing every code point in both a
// and b.
func Intersect(a, b *CharRangeSet) *CharRangeSet {
	out := New()
	i, j := 0, 0
	for i < len(a.ranges) && j < len(b.ranges) {
		ra, rb := a.ranges[i], b.ranges[j]
		lo := max(ra.Min, rb.Min)
		hi := min(ra.Max, rb.Max)
		if lo <= hi {
			out.Insert(CharRange{Min: lo, Max: hi})
		}
		if ra.Max < rb.Max {
			i++
		} else {
			j++
		}
	}
	return out
}

// Subtract returns a new set containing every code point in a that is
// not in b.
func Subtract(a, b *CharRangeSet) *CharRangeSet {
	out := New()
	for _, ra := range a.ranges {
		lo := ra.Min
		for _, rb := range b.ranges {
			if rb.Max < lo || rb.Min > ra.Max {
				continue
			}
			if rb.Min > lo {
				out.Insert(CharRange{Min: lo, Max: rb.Min - 1})
			}
			if rb.Max+1 > lo {
				lo = rb.Max + 1
			}
			if lo > ra.Max {
				break
			}
		}
		if lo <= ra.Max {
			out.Insert(CharRange{Min: lo, Max: ra.Max})
		}
	}
	return out
}

// Complement materializes the set's negation against [0, ceiling]. This
// is where a `[^...]` class is lowered into enumerated, positive form —
// the only place the automaton layer encounters the AST's negation
// flag. Callers pass MaxCodePoint as ceiling rather than the full
// 32-bit space so a negated class doesn't enumerate billions of runes.
func Complement(s *CharRangeSet, ceiling rune) *CharRangeSet {
	out := New()
	next := rune(0)
	for _, r := range s.ranges {
		if r.Min > next {
			out.Insert(CharRange{Min: next, Max: r.Min - 1})
		}
		if r.Max+1 > next {
			next = r.Max + 1
		}
	}
	if next <= ceiling {
		out.Insert(CharRange{Min: next, Max: ceiling})
	}
	return out
}

// Minterms partitions the union of the supplied sets into maximal
// ranges such that each minterm is either fully contained in or fully
// disjoint from every original set — the finest alphabet over which
// subset construction's transition function is well defined.
//
// Implemented by sweeping every range boundary of every supplied set: a
// membership vector across the inputs can only change at one of those
// boundaries, so the intervals between consecutive boundaries are each
// a single minterm.
func Minterms(sets []*CharRangeSet) []CharRange {
	var points []rune
	for _, s := range sets {
		if s == nil {
			continue
		}
		for _, r := range s.ranges {
			points = append(points, r.Min, r.Max+1)
		}
	}
	if len(points) == 0 {
		return nil
	}
	sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })
	dedup := points[:1]
	for _, p := range points[1:] {
		if p != dedup[len(dedup)-1] {
			dedup = append(dedup, p)
		}
	}

	var minterms []CharRange
	for i := 0; i+1 < len(dedup); i++ {
		lo, hi := dedup[i], dedup[i+1]-1
		if lo > hi {
			continue
		}
		covered := false
		for _, s := range sets {
			if s != nil && s.Contains(lo) {
				covered = true
				break
			}
		}
		if !covered {
			continue // gap between inputs: not part of their union
		}
		minterms = append(minterms, CharRange{Min: lo, Max: hi})
	}
	return minterms
}

func (s *CharRangeSet) String() string {
	var b strings.Builder
	b.WriteByte('[')
	if s.negated {
		b.WriteByte('^')
	}
	for _, r := range s.ranges {
		b.WriteString(r.String())
	}
	b.WriteByte(']')
	return b.String()
}
