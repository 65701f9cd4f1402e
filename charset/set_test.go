package charset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertCoalescesOverlapsAndAdjacency(t *testing.T) {
	s := New()
	s.Insert(CharRange{Min: 'a', Max: 'c'})
	s.Insert(CharRange{Min: 'd', Max: 'f'}) // adjacent to the above
	s.Insert(CharRange{Min: 'b', Max: 'e'}) // overlaps both

	require.Equal(t, []CharRange{{Min: 'a', Max: 'f'}}, s.Ranges())
}

func TestInsertKeepsDisjointRangesSeparate(t *testing.T) {
	s := New()
	s.Insert(CharRange{Min: 'a', Max: 'c'})
	s.Insert(CharRange{Min: 'x', Max: 'z'})

	require.Equal(t, []CharRange{{Min: 'a', Max: 'c'}, {Min: 'x', Max: 'z'}}, s.Ranges())
}

func TestContains(t *testing.T) {
	s := FromRanges(CharRange{Min: 'a', Max: 'z'}, CharRange{Min: '0', Max: '9'})

	require.True(t, s.Contains('m'))
	require.True(t, s.Contains('5'))
	require.False(t, s.Contains('A'))
	require.False(t, s.Contains('!'))
}

func TestUnion(t *testing.T) {
	a := FromRanges(CharRange{Min: 'a', Max: 'm'})
	b := FromRanges(CharRange{Min: 'g', Max: 'z'})

	got := Union(a, b)
	require.Equal(t, []CharRange{{Min: 'a', Max: 'z'}}, got.Ranges())
}

func TestIntersect(t *testing.T) {
	a := FromRanges(CharRange{Min: 'a', Max: 'm'})
	b := FromRanges(CharRange{Min: 'g', Max: 'z'})

	got := Intersect(a, b)
	require.Equal(t, []CharRange{{Min: 'g', Max: 'm'}}, got.Ranges())
}

func TestIntersectDisjointIsEmpty(t *testing.T) {
	a := FromRanges(CharRange{Min: 'a', Max: 'c'})
	b := FromRanges(CharRange{Min: 'x', Max: 'z'})

	require.True(t, Intersect(a, b).IsEmpty())
}

func TestSubtract(t *testing.T) {
	a := FromRanges(CharRange{Min: 'a', Max: 'z'})
	b := FromRanges(CharRange{Min: 'm', Max: 'p'})

	got := Subtract(a, b)
	require.Equal(t, []CharRange{{Min: 'a', Max: 'l'}, {Min: 'q', Max: 'z'}}, got.Ranges())
}

func TestSubtractNothingOverlapping(t *testing.T) {
	a := FromRanges(CharRange{Min: 'a', Max: 'c'})
	b := FromRanges(CharRange{Min: 'x', Max: 'z'})

	require.Equal(t, a.Ranges(), Subtract(a, b).Ranges())
}

func TestComplement(t *testing.T) {
	s := FromRanges(CharRange{Min: 'b', Max: 'd'})

	got := Complement(s, 'f')
	require.Equal(t, []CharRange{{Min: 0, Max: 'a'}, {Min: 'e', Max: 'f'}}, got.Ranges())
}

func TestComplementOfEmptyIsEverything(t *testing.T) {
	got := Complement(New(), 10)
	require.Equal(t, []CharRange{{Min: 0, Max: 10}}, got.Ranges())
}

func TestComplementIsInvolution(t *testing.T) {
	s := FromRanges(CharRange{Min: 'b', Max: 'd'}, CharRange{Min: 'k', Max: 'm'})

	got := Complement(Complement(s, 'z'), 'z')
	require.Equal(t, s.Ranges(), got.Ranges())
}

func TestMintermsPartitionIsConstantWithinEachInput(t *testing.T) {
	a := FromRanges(CharRange{Min: 'a', Max: 'm'})
	b := FromRanges(CharRange{Min: 'g', Max: 'z'})

	minterms := Minterms([]*CharRangeSet{a, b})
	require.NotEmpty(t, minterms)

	for _, mt := range minterms {
		require.True(t, mt.Min <= mt.Max)
		inA := a.Contains(mt.Min)
		inB := b.Contains(mt.Min)
		for c := mt.Min; c <= mt.Max; c++ {
			require.Equal(t, inA, a.Contains(c))
			require.Equal(t, inB, b.Contains(c))
		}
	}
}

func TestMintermsOfDisjointSetsIsEachSetWhole(t *testing.T) {
	a := FromRanges(CharRange{Min: 'a', Max: 'c'})
	b := FromRanges(CharRange{Min: 'x', Max: 'z'})

	minterms := Minterms([]*CharRangeSet{a, b})
	require.Equal(t, []CharRange{{Min: 'a', Max: 'c'}, {Min: 'x', Max: 'z'}}, minterms)
}

func TestMintermsEmptyInputIsNil(t *testing.T) {
	require.Nil(t, Minterms(nil))
	require.Nil(t, Minterms([]*CharRangeSet{New(), New()}))
}

func TestStringRendersNegationAndRanges(t *testing.T) {
	s := FromRanges(CharRange{Min: 'a', Max: 'z'})
	s.SetNegated(true)

	require.Equal(t, "[^a-z]", s.String())
}
