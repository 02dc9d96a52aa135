package pattern

import "sort"

// Ranked is a symbol with an aggregated value (a count or a score).
type Ranked struct {
	Symbol Symbol `json:"symbol"`
	Value  int    `json:"value"`
}

// Tally holds one entry per distinct symbol, in first-occurrence order.
type Tally []Ranked

// CountValues counts each distinct symbol in values. None entries are
// boundary markers, not outcomes, and are skipped.
func CountValues(values []Symbol) Tally {
	b := newTallyBuilder()
	for _, v := range values {
		if v.IsNone() {
			continue
		}
		b.add(v, 1)
	}
	return b.tally
}

// Total sums all values.
func (t Tally) Total() int {
	total := 0
	for _, r := range t {
		total += r.Value
	}
	return total
}

// Get returns the value for s.
func (t Tally) Get(s Symbol) (int, bool) {
	for _, r := range t {
		if r.Symbol == s {
			return r.Value, true
		}
	}
	return 0, false
}

// Ranked orders a copy of t by descending value. Equal values keep their
// first-occurrence order. topK <= 0 disables truncation.
func (t Tally) Ranked(topK int) []Ranked {
	out := make([]Ranked, len(t))
	copy(out, t)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

// Rank counts values and returns the topK most frequent, ties broken by
// first occurrence in values.
func Rank(values []Symbol, topK int) []Ranked {
	return CountValues(values).Ranked(topK)
}

// BordaScores sums rank-weighted scores over several rankings: the entry at
// rank index r scores topK - r. Entries at or beyond topK score nothing.
// topK <= 0 uses each ranking's own length. Symbols keep the order in
// which they are first encountered across the rankings.
func BordaScores(rankings [][]Ranked, topK int) Tally {
	b := newTallyBuilder()
	for _, ranking := range rankings {
		k := topK
		if k <= 0 {
			k = len(ranking)
		}
		for r, entry := range ranking {
			if r >= k {
				break
			}
			if entry.Symbol.IsNone() {
				continue
			}
			b.add(entry.Symbol, k-r)
		}
	}
	return b.tally
}

// MergeTallies sums tallies, keeping first-encounter order across them.
func MergeTallies(tallies ...Tally) Tally {
	b := newTallyBuilder()
	for _, t := range tallies {
		for _, r := range t {
			b.add(r.Symbol, r.Value)
		}
	}
	return b.tally
}

type tallyBuilder struct {
	index map[Symbol]int
	tally Tally
}

func newTallyBuilder() *tallyBuilder {
	return &tallyBuilder{index: make(map[Symbol]int), tally: Tally{}}
}

func (b *tallyBuilder) add(s Symbol, v int) {
	if i, ok := b.index[s]; ok {
		b.tally[i].Value += v
		return
	}
	b.index[s] = len(b.tally)
	b.tally = append(b.tally, Ranked{Symbol: s, Value: v})
}
