package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ladderscope/internal/pattern"
)

func groupSymbols(g *pattern.Grouping) []pattern.Symbol {
	out := make([]pattern.Symbol, len(g.Group))
	for i, m := range g.Group {
		out[i] = m.Symbol
	}
	return out
}

func TestExcludeWeakest_Minimum(t *testing.T) {
	tally := pattern.Tally{
		{Symbol: symA, Value: 3},
		{Symbol: symB, Value: 1},
		{Symbol: symC, Value: 3},
		{Symbol: symD, Value: 3},
	}
	g, err := pattern.ExcludeWeakest(tally, pattern.Ladder4Policy())
	require.NoError(t, err)
	assert.Equal(t, symB, g.Excluded.Symbol)
	assert.Equal(t, []pattern.Symbol{symA, symC, symD}, groupSymbols(g))
	assert.Equal(t, 10, g.Total)
	assert.Equal(t, 4, g.Excluded.Rank)
	assert.Zero(t, g.Excluded.Percent, "shares are only filled on request")

	g.AnnotatePercent()
	assert.InDelta(t, 10.0, g.Excluded.Percent, 1e-9)
	assert.InDelta(t, 30.0, g.Group[0].Percent, 1e-9)
}

// TestExcludeWeakest_FullTie is deterministic: the earliest member of the
// tally is dropped.
func TestExcludeWeakest_FullTie(t *testing.T) {
	tally := pattern.Tally{
		{Symbol: symC, Value: 5},
		{Symbol: symA, Value: 5},
		{Symbol: symD, Value: 5},
		{Symbol: symB, Value: 5},
	}
	for i := 0; i < 10; i++ {
		g, err := pattern.ExcludeWeakest(tally, pattern.Ladder4Policy())
		require.NoError(t, err)
		assert.Equal(t, symC, g.Excluded.Symbol)
		assert.Equal(t, []pattern.Symbol{symA, symD, symB}, groupSymbols(g))
		assert.Equal(t, pattern.Dispersed, g.Dispersion)
		assert.InDelta(t, 1.0/3.0, g.MaxShare, 1e-9)
	}
}

func TestExcludeWeakest_TiedMinimaPickEarliest(t *testing.T) {
	tally := pattern.Tally{
		{Symbol: symA, Value: 4},
		{Symbol: symD, Value: 1},
		{Symbol: symB, Value: 1},
		{Symbol: symC, Value: 2},
	}
	g, err := pattern.ExcludeWeakest(tally, pattern.Ladder4Policy())
	require.NoError(t, err)
	assert.Equal(t, symD, g.Excluded.Symbol)
	assert.Equal(t, 4, g.Excluded.Rank, "the dropped member ranks last even when tied")

	ranks := make([]int, len(g.Group))
	for i, m := range g.Group {
		ranks[i] = m.Rank
	}
	assert.ElementsMatch(t, []int{1, 2, 3}, ranks)
	assert.Equal(t, []pattern.Symbol{symA, symB, symC}, groupSymbols(g))
	assert.Equal(t, 3, g.Group[1].Rank, "B keeps its value-1 place below C")
}

func TestExcludeWeakest_InsufficientData(t *testing.T) {
	tally := pattern.Tally{
		{Symbol: symA, Value: 3},
		{Symbol: symB, Value: 0},
		{Symbol: symC, Value: 2},
		{Symbol: pattern.MustParseSymbol("L3O"), Value: 9}, // outside ladder4
	}
	g, err := pattern.ExcludeWeakest(tally, pattern.Ladder4Policy())
	assert.Nil(t, g)
	assert.ErrorIs(t, err, pattern.ErrInsufficientData)

	var insuf *pattern.InsufficientDataError
	require.ErrorAs(t, err, &insuf)
	assert.Equal(t, 2, insuf.Have)
	assert.Equal(t, 4, insuf.Need)

	_, err = pattern.ExcludeWeakest(nil, pattern.Ladder4Policy())
	assert.ErrorIs(t, err, pattern.ErrInsufficientData)
}

func TestExcludeWeakest_IgnoresOutsideCanonical(t *testing.T) {
	tally := pattern.CountValues([]pattern.Symbol{
		pattern.MustParseSymbol("L3O"), pattern.MustParseSymbol("L3O"),
		pattern.MustParseSymbol("L3E"),
		pattern.MustParseSymbol("R3O"), pattern.MustParseSymbol("R3O"),
		pattern.MustParseSymbol("R3E"),
		symD, symD, symD, symD, // R4E is not a three-line outcome
	})
	g, err := pattern.ExcludeWeakest(tally, pattern.ThreeLinePolicy())
	require.NoError(t, err)
	assert.Equal(t, "three-line", g.Policy)
	assert.Equal(t, 6, g.Total)
	assert.Equal(t, pattern.MustParseSymbol("L3E"), g.Excluded.Symbol)
}

func TestExcludeWeakest_Dispersion(t *testing.T) {
	tally := pattern.Tally{
		{Symbol: symA, Value: 6},
		{Symbol: symB, Value: 2},
		{Symbol: symC, Value: 4},
		{Symbol: symD, Value: 1},
	}
	// retained A=6, B=2, C=4 → max share 0.5
	g, err := pattern.ExcludeWeakest(tally, pattern.Ladder4Policy())
	require.NoError(t, err)
	assert.InDelta(t, 0.5, g.MaxShare, 1e-9)
	assert.Equal(t, pattern.Concentrated, g.Dispersion, "threshold is inclusive")

	g, err = pattern.ExcludeWeakest(tally, pattern.StrictPolicy())
	require.NoError(t, err)
	assert.Equal(t, pattern.Dispersed, g.Dispersion)
	assert.Equal(t, "strict", g.Policy)

	ranks := map[pattern.Symbol]int{}
	for _, m := range g.Group {
		ranks[m.Symbol] = m.Rank
	}
	assert.Equal(t, map[pattern.Symbol]int{symA: 1, symC: 2, symB: 3}, ranks)
}

func TestExclusionPolicy_Validate(t *testing.T) {
	for _, p := range pattern.BuiltinPolicies() {
		assert.NoError(t, p.Validate(), p.Name)
	}

	cases := []pattern.ExclusionPolicy{
		{Name: "tiny", Canonical: []pattern.Symbol{symA}, Threshold: 0.5},
		{Name: "dup", Canonical: []pattern.Symbol{symA, symA}, Threshold: 0.5},
		{Name: "none", Canonical: []pattern.Symbol{symA, pattern.None}, Threshold: 0.5},
		{Name: "zero", Canonical: []pattern.Symbol{symA, symB}, Threshold: 0},
		{Name: "big", Canonical: []pattern.Symbol{symA, symB}, Threshold: 1.5},
	}
	for _, p := range cases {
		assert.ErrorIs(t, p.Validate(), pattern.ErrInvalidPolicy, p.Name)
		_, err := pattern.ExcludeWeakest(pattern.Tally{{Symbol: symA, Value: 1}}, p)
		assert.ErrorIs(t, err, pattern.ErrInvalidPolicy, p.Name)
	}
}

// TestExcludeWeakest_ThreeMember covers a smaller canonical universe.
func TestExcludeWeakest_ThreeMember(t *testing.T) {
	p := pattern.ExclusionPolicy{Name: "trio", Canonical: []pattern.Symbol{symA, symB, symC}, Threshold: 0.6}
	g, err := pattern.ExcludeWeakest(pattern.Tally{
		{Symbol: symA, Value: 1},
		{Symbol: symB, Value: 7},
		{Symbol: symC, Value: 3},
	}, p)
	require.NoError(t, err)
	assert.Equal(t, symA, g.Excluded.Symbol)
	assert.Equal(t, []pattern.Symbol{symB, symC}, groupSymbols(g))
	assert.Equal(t, pattern.Concentrated, g.Dispersion)
}

func TestParseFlavor(t *testing.T) {
	f, err := pattern.ParseFlavor("borda")
	require.NoError(t, err)
	assert.Equal(t, pattern.FlavorBorda, f)

	f, err = pattern.ParseFlavor("")
	require.NoError(t, err)
	assert.Equal(t, pattern.FlavorCount, f)

	_, err = pattern.ParseFlavor("median")
	assert.ErrorIs(t, err, pattern.ErrUnknownFlavor)
}
