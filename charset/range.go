// Package charset implements the disjoint-interval set algebra used as
// the edge-label alphabet throughout the automaton pipeline. A single
// CharRangeSet stands in for what would otherwise be thousands of
// parallel single-symbol edges for a class like [a-zA-Z0-9].
package charset

import (
	"fmt"

	"github.com/corelang/lexgen/errs"
)

// MaxCodePoint is the ceiling used to materialize the complement of a
// negated character class: the Unicode code space ceiling, not
// math.MaxInt32. Ranges themselves are free to name any non-negative
// rune; this constant only bounds the one place an implicit "everything
// else" has to become concrete.
const MaxCodePoint rune = 0x10FFFF

// CharRange is a closed interval [Min, Max] over 32-bit code points.
type CharRange struct {
	Min, Max rune
}

// NewRange validates and constructs a CharRange. It is the only
// validating constructor: code that builds CharRange struct literals
// directly (tests, synthesized complements) bypasses this check.
func NewRange(min, max rune) (CharRange, error) {
	if min < 0 || max < 0 || min > max {
		return CharRange{}, errs.New(errs.MalformedRange, "range [%d,%d]: min must be >= 0 and <= max", min, max)
	}
	return CharRange{Min: min, Max: max}, nil
}

// Contains reports whether c falls within the range.
func (r CharRange) Contains(c rune) bool {
	return r.Min <= c && c <= r.Max
}

// Equal reports structural equality.
func (r CharRange) Equal(o CharRange) bool {
	return r.Min == o.Min && r.Max == o.Max
}

// adjacentOrOverlaps reports whether r and o should be coalesced into a
// single range when both are members of the same disjoint set.
func (r CharRange) adjacentOrOverlaps(o CharRange) bool {
	return r.Min <= o.Max+1 && o.Min <= r.Max+1
}

func (r CharRange) String() string {
	if r.Min == r.Max {
		return runeDescription(r.Min)
	}
	return fmt.Sprintf("%s-%s", runeDescription(r.Min), runeDescription(r.Max))
}

func runeDescription(r rune) string {
	switch {
	case r == '\n':
		return `\n`
	case r == '\t':
		return `\t`
	case r == '\\':
		return `\\`
	case r == ']':
		return `\]`
	case r == '-':
		return `\-`
	case r >= 0x20 && r < 0x7F:
		return string(r)
	default:
		return fmt.Sprintf("\\u%04X", r)
	}
}
