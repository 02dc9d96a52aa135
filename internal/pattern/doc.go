// Package pattern is the block pattern matcher and prediction aggregator.
//
// What it does:
//
//	A ladder round is reduced to one of eight symbols (side × line count ×
//	parity). Given the encoded history (index 0 = most recent round), the
//	package takes the k most recent symbols as a block, optionally relabels
//	them with a symmetry flip, finds every earlier place where the block
//	occurs verbatim, and reads the symbol right outside each occurrence.
//	Those neighbors are then counted, ranked, and fed to an exclusion
//	heuristic that drops the weakest member of a small canonical outcome set.
//
// Pipeline:
//
//	RawRound ─Encode→ Symbol ─EncodeSequence→ Sequence
//	Sequence ─BuildBlock(size, Transform)→ Block ─MatchBlock→ []Match
//	[]Match ─Neighbor(Direction)→ []Symbol ─Rank / CountValues→ Tally
//	Tally ─ExcludeWeakest(policy)→ Grouping
//	[]Match ─Summarize→ SideSummary
//
// Transforms:
//   - FlipFull   : invert side and parity.
//   - FlipStart  : invert line count and parity.
//   - FlipOddEven: invert side and line count.
//
// Each flip is an involution and composing any two of them yields the third.
//
// Tie-breaking:
//
//	Every ordering decision among equal values follows first-occurrence
//	order of the input. Rank keeps the value seen first ahead; ExcludeWeakest
//	drops the earliest member among tied minima.
//
// Complexity:
//
//	MatchBlock is a plain O((n−k)·k) scan; n is a few thousand rounds and
//	k ≤ 6.
//
// All functions are pure: no logging, no shared state, safe for concurrent
// use by any number of goroutines.
package pattern
