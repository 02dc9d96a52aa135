package pattern_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ladderscope/internal/pattern"
)

// seqOf builds a sequence from short notations, most recent first.
func seqOf(t *testing.T, short string) pattern.Sequence {
	t.Helper()
	fields := strings.Fields(short)
	syms := make([]pattern.Symbol, len(fields))
	for i, f := range fields {
		s, err := pattern.ParseSymbol(f)
		require.NoError(t, err)
		syms[i] = s
	}
	return pattern.SequenceOf(syms...)
}

func blockOf(t *testing.T, short string) pattern.Block {
	t.Helper()
	return pattern.Block(seqOf(t, short).Symbols)
}

func positions(ms []pattern.Match) []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = m.Position
	}
	return out
}

// TestMatchBlock_EndToEnd walks the alternating sequence scenario.
func TestMatchBlock_EndToEnd(t *testing.T) {
	seq := seqOf(t, "L3O R4E L3O R4E L3O")
	block := blockOf(t, "L3O R4E")

	ms := pattern.MatchBlock(block, seq)
	require.Equal(t, []int{0, 2}, positions(ms), "recency order, smallest position first")

	m := ms[1]
	assert.Equal(t, 3, m.DisplayPosition())
	assert.True(t, m.Block.Equal(block))
	assert.Equal(t, pattern.MustParseSymbol("R4E"), m.Above)
	assert.Equal(t, pattern.MustParseSymbol("L3O"), m.Below, "s[4] is inside the sequence")

	assert.True(t, ms[0].Above.IsNone(), "position 0 has nothing above")
}

// TestMatchBlock_InclusiveBoundary is the regression for the last start
// index len(s)-k, which an exclusive loop bound silently drops.
func TestMatchBlock_InclusiveBoundary(t *testing.T) {
	seq := seqOf(t, "R3E R3E R3E L4O R4E")
	block := blockOf(t, "L4O R4E")

	ms := pattern.MatchBlock(block, seq)
	require.Len(t, ms, 1)
	assert.Equal(t, seq.Len()-len(block), ms[0].Position)
	assert.Equal(t, pattern.MustParseSymbol("R3E"), ms[0].Above)
	assert.True(t, ms[0].Below.IsNone(), "nothing below the earliest span")
}

func TestMatchBlock_EveryStartIndex(t *testing.T) {
	seq := seqOf(t, "L3E L3E L3E L3E L3E L3E")
	for k := 1; k <= seq.Len(); k++ {
		block := pattern.Block(seq.Symbols[:k])
		ms := pattern.MatchBlock(block, seq)
		assert.Len(t, ms, seq.Len()-k+1, "k=%d", k)
	}
}

func TestMatchBlock_NoMatchesIsEmptyNotNil(t *testing.T) {
	seq := seqOf(t, "L3O L3O L3O")

	ms := pattern.MatchBlock(blockOf(t, "R4E"), seq)
	assert.NotNil(t, ms)
	assert.Empty(t, ms)

	ms = pattern.MatchBlock(blockOf(t, "L3O L3O L3O L3O"), seq)
	assert.NotNil(t, ms)
	assert.Empty(t, ms, "sequence shorter than block")

	assert.Empty(t, pattern.MatchBlock(pattern.Block{}, seq))
	assert.Empty(t, pattern.MatchBlock(blockOf(t, "L3O"), pattern.Sequence{}))
}

func TestMatchBlock_BlockIsCopied(t *testing.T) {
	seq := seqOf(t, "L3O R4E L3O R4E")
	block := blockOf(t, "L3O R4E")
	ms := pattern.MatchBlock(block, seq)
	block[0] = pattern.MustParseSymbol("R3O")
	assert.Equal(t, "LEFT-3-ODD>RIGHT-4-EVEN", ms[0].Block.String())
}

func TestNeighbors_Boundaries(t *testing.T) {
	seq := seqOf(t, "L3O R4E L4O R3E")
	k := 2

	above, below := pattern.Neighbors(seq, 0, k)
	assert.True(t, above.IsNone())
	assert.Equal(t, pattern.MustParseSymbol("L4O"), below)

	above, below = pattern.Neighbors(seq, seq.Len()-k, k)
	assert.Equal(t, pattern.MustParseSymbol("R4E"), above)
	assert.True(t, below.IsNone())
}

func TestNeighborValues(t *testing.T) {
	seq := seqOf(t, "L3O R4E L3O R4E L3O")
	ms := pattern.MatchBlock(blockOf(t, "L3O R4E"), seq)

	assert.Equal(t, []pattern.Symbol{pattern.None, pattern.MustParseSymbol("R4E")},
		pattern.NeighborValues(ms, pattern.Above))
	assert.Equal(t, []pattern.Symbol{pattern.MustParseSymbol("L3O"), pattern.MustParseSymbol("L3O")},
		pattern.NeighborValues(ms, pattern.Below))
}

func TestBuildBlock(t *testing.T) {
	seq := seqOf(t, "L3O R4E L4O R3E L3E")

	b, err := pattern.BuildBlock(seq, 3, pattern.Identity)
	require.NoError(t, err)
	assert.Equal(t, "L3O>R4E>L4O", b.Join(pattern.Symbol.Short))

	b, err = pattern.BuildBlock(seq, 3, pattern.FlipFull)
	require.NoError(t, err)
	assert.Equal(t, "R3E>L4O>R4E", b.Join(pattern.Symbol.Short))
	assert.Equal(t, pattern.MustParseSymbol("L3O"), seq.Symbols[0], "sequence untouched")

	_, err = pattern.BuildBlock(seq, 2, pattern.Identity)
	assert.ErrorIs(t, err, pattern.ErrBlockSize)
	_, err = pattern.BuildBlock(seq, 7, pattern.Identity)
	assert.ErrorIs(t, err, pattern.ErrBlockSize)

	_, err = pattern.BuildBlock(seq, 6, pattern.Identity)
	var insuf *pattern.InsufficientDataError
	require.ErrorAs(t, err, &insuf)
	assert.ErrorIs(t, err, pattern.ErrInsufficientData)
	assert.Equal(t, 5, insuf.Have)
	assert.Equal(t, 6, insuf.Need)

	_, err = pattern.BuildBlock(pattern.Sequence{}, 3, pattern.Identity)
	assert.ErrorIs(t, err, pattern.ErrInsufficientData)
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want pattern.Mode
	}{
		{"3block_orig", pattern.Mode{Size: 3, Transform: pattern.Identity}},
		{"4block", pattern.Mode{Size: 4, Transform: pattern.Identity}},
		{"5block_flip_full", pattern.Mode{Size: 5, Transform: pattern.FlipFull}},
		{"6block_flip_start", pattern.Mode{Size: 6, Transform: pattern.FlipStart}},
		{"3BLOCK_FLIP_ODD_EVEN", pattern.Mode{Size: 3, Transform: pattern.FlipOddEven}},
	}
	for _, tc := range cases {
		got, err := pattern.ParseMode(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
	assert.Equal(t, "5block_flip_odd_even", pattern.Mode{Size: 5, Transform: pattern.FlipOddEven}.String())

	for _, bad := range []string{"", "orig", "xblock_orig", "2block_orig", "9block", "3block_mirror"} {
		_, err := pattern.ParseMode(bad)
		assert.ErrorIs(t, err, pattern.ErrUnknownMode, bad)
	}
}

func TestParseDirection(t *testing.T) {
	d, err := pattern.ParseDirection("below")
	require.NoError(t, err)
	assert.Equal(t, pattern.Below, d)

	d, err = pattern.ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, pattern.Above, d)

	_, err = pattern.ParseDirection("sideways")
	assert.ErrorIs(t, err, pattern.ErrUnknownDirection)
}
