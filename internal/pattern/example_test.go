package pattern_test

import (
	"fmt"

	"ladderscope/internal/pattern"
)

// ExampleMatchBlock encodes a short history, takes the three most recent
// rounds as a block and lists where else it occurred.
func ExampleMatchBlock() {
	raws := []pattern.RawRound{
		{Side: "LEFT", LineCount: 3, Parity: "EVEN", RoundNumber: 10},
		{Side: "RIGHT", LineCount: 3, Parity: "ODD", RoundNumber: 9},
		{Side: "LEFT", LineCount: 4, Parity: "ODD", RoundNumber: 8},
		{Side: "RIGHT", LineCount: 4, Parity: "EVEN", RoundNumber: 7},
		{Side: "LEFT", LineCount: 3, Parity: "EVEN", RoundNumber: 6},
		{Side: "RIGHT", LineCount: 3, Parity: "ODD", RoundNumber: 5},
		{Side: "LEFT", LineCount: 4, Parity: "ODD", RoundNumber: 4},
	}
	seq, err := pattern.EncodeSequence(raws)
	if err != nil {
		fmt.Println(err)
		return
	}

	block, _ := pattern.BuildBlock(seq, 3, pattern.Identity)
	for _, m := range pattern.MatchBlock(block, seq) {
		fmt.Printf("#%d %s next=%s\n", m.DisplayPosition(), block.Join(pattern.Symbol.Short), m.Above)
	}
	// Output:
	// #1 L3E>R3O>L4O next=NONE
	// #5 L3E>R3O>L4O next=RIGHT-4-EVEN
}

// ExampleExcludeWeakest drops the least frequent ladder outcome.
func ExampleExcludeWeakest() {
	values := []pattern.Symbol{
		pattern.MustParseSymbol("L3E"), pattern.MustParseSymbol("R3O"),
		pattern.MustParseSymbol("L3E"), pattern.MustParseSymbol("L4O"),
		pattern.MustParseSymbol("R4E"), pattern.MustParseSymbol("L3E"),
		pattern.MustParseSymbol("R3O"),
	}
	g, err := pattern.ExcludeWeakest(pattern.CountValues(values), pattern.DefaultPolicy())
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, m := range g.Group {
		fmt.Printf("%s %d\n", m.Symbol.Short(), m.Value)
	}
	fmt.Println("excluded", g.Excluded.Symbol.Short(), g.Dispersion)
	// Output:
	// L3E 3
	// R3O 2
	// R4E 1
	// excluded L4O concentrated
}
