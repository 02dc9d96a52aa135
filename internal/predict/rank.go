package predict

import (
	"context"
	stderrors "errors"

	"golang.org/x/sync/errgroup"

	"ladderscope/internal/metrics"
	"ladderscope/internal/pattern"
)

// RankRequest selects the (size, transform) pairs to scan. Empty Sizes or
// Transforms use the engine defaults; TopK 0 uses Options.TopK.
type RankRequest struct {
	Sizes      []int
	Transforms []pattern.Transform
	Direction  pattern.Direction
	TopK       int
}

// PairRanking is the ranking produced by one (size, transform) pair.
type PairRanking struct {
	Mode    pattern.Mode        `json:"mode"`
	Block   pattern.Block       `json:"block"`
	Matches int                 `json:"matches"`
	Summary pattern.SideSummary `json:"summary"`
	Ranking []pattern.Ranked    `json:"ranking"`
	// Skipped is set when the history is shorter than the block.
	Skipped bool `json:"skipped,omitempty"`
}

// RankResult holds per-pair rankings and the combined ranking over all
// collected neighbor values.
type RankResult struct {
	Direction pattern.Direction `json:"direction"`
	TopK      int               `json:"topK"`
	NextRound int64             `json:"nextRound"`
	Rounds    int               `json:"rounds"`
	Pairs     []PairRanking     `json:"pairs"`
	Combined  []pattern.Ranked  `json:"combined"`

	tallies []pattern.Tally
}

// Rank collects neighbor values on the requested side for every pair and
// ranks them, per pair and combined.
func (e *Engine) Rank(ctx context.Context, req RankRequest) (res *RankResult, err error) {
	timer := metrics.Start(metrics.OpRank)
	defer func() { timer.Done(err) }()

	return e.rank(ctx, req, metrics.OpRank)
}

func (e *Engine) rank(ctx context.Context, req RankRequest, op string) (*RankResult, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = e.opts.TopK
	}
	modes, err := e.resolvePairs(req.Sizes, req.Transforms)
	if err != nil {
		return nil, err
	}

	h, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	scans, err := scanPairs(ctx, h.seq, modes)
	if err != nil {
		return nil, err
	}

	res := &RankResult{
		Direction: req.Direction,
		TopK:      topK,
		NextRound: h.nextRound(),
		Rounds:    h.seq.Len(),
		Pairs:     make([]PairRanking, len(scans)),
		tallies:   make([]pattern.Tally, 0, len(scans)),
	}

	total := 0
	for i, s := range scans {
		pr := PairRanking{Mode: s.mode, Block: s.block, Ranking: []pattern.Ranked{}}
		if s.insufficient != nil {
			pr.Skipped = true
			res.Pairs[i] = pr
			continue
		}
		tally := pattern.CountValues(pattern.NeighborValues(s.matches, req.Direction))
		pr.Matches = len(s.matches)
		pr.Summary = pattern.Summarize(s.matches, req.Direction)
		pr.Ranking = tally.Ranked(topK)
		res.Pairs[i] = pr
		res.tallies = append(res.tallies, tally)
		total += len(s.matches)
	}
	if len(res.tallies) == 0 {
		// Every pair was skipped; report the smallest block's shortfall.
		return nil, smallestShortfall(scans)
	}
	metrics.Matches(op, total)

	res.Combined = pattern.MergeTallies(res.tallies...).Ranked(topK)
	return res, nil
}

// scanPairs runs one matcher scan per mode concurrently. Results keep the
// order of modes.
func scanPairs(ctx context.Context, seq pattern.Sequence, modes []pattern.Mode) ([]pairScan, error) {
	scans := make([]pairScan, len(modes))
	g, ctx := errgroup.WithContext(ctx)
	for i, mode := range modes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scans[i].mode = mode
			block, err := pattern.BuildBlock(seq, mode.Size, mode.Transform)
			var insufficient *pattern.InsufficientDataError
			if stderrors.As(err, &insufficient) {
				scans[i].insufficient = insufficient
				return nil
			}
			if err != nil {
				return err
			}
			scans[i].block = block
			scans[i].matches = pattern.MatchBlock(block, seq)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scans, nil
}

func smallestShortfall(scans []pairScan) error {
	var best *pattern.InsufficientDataError
	for _, s := range scans {
		if s.insufficient != nil && (best == nil || s.insufficient.Need < best.Need) {
			best = s.insufficient
		}
	}
	if best == nil {
		return pattern.ErrInsufficientData
	}
	return best
}

// GroupRequest adds the scoring flavor and exclusion policy to a rank
// request. A zero Policy uses pattern.DefaultPolicy.
type GroupRequest struct {
	RankRequest
	Flavor pattern.Flavor
	Policy pattern.ExclusionPolicy
}

// Insufficient explains why no grouping could be formed.
type Insufficient struct {
	What    string `json:"what"`
	Have    int    `json:"have"`
	Need    int    `json:"need"`
	Message string `json:"message"`
}

// GroupResult is the predicted group, or an Insufficient marker when the
// tally has too few distinct canonical outcomes.
type GroupResult struct {
	Flavor       pattern.Flavor    `json:"flavor"`
	Direction    pattern.Direction `json:"direction"`
	TopK         int               `json:"topK"`
	NextRound    int64             `json:"nextRound"`
	Policy       string            `json:"policy"`
	Tally        []pattern.Ranked  `json:"tally"`
	Grouping     *pattern.Grouping `json:"grouping,omitempty"`
	Insufficient *Insufficient     `json:"insufficient,omitempty"`
}

// Group scores canonical outcomes across the requested pairs and drops
// the weakest.
func (e *Engine) Group(ctx context.Context, req GroupRequest) (res *GroupResult, err error) {
	timer := metrics.Start(metrics.OpGroup)
	defer func() { timer.Done(err) }()

	policy := req.Policy
	if policy.Name == "" && len(policy.Canonical) == 0 {
		policy = pattern.DefaultPolicy()
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	ranked, err := e.rank(ctx, req.RankRequest, metrics.OpGroup)
	if err != nil {
		return nil, err
	}

	var tally pattern.Tally
	switch req.Flavor {
	case pattern.FlavorBorda:
		rankings := make([][]pattern.Ranked, 0, len(ranked.Pairs))
		for _, p := range ranked.Pairs {
			if !p.Skipped {
				rankings = append(rankings, p.Ranking)
			}
		}
		tally = pattern.BordaScores(rankings, ranked.TopK)
	default:
		tally = pattern.MergeTallies(ranked.tallies...)
	}

	res = &GroupResult{
		Flavor:    req.Flavor,
		Direction: req.Direction,
		TopK:      ranked.TopK,
		NextRound: ranked.NextRound,
		Policy:    policy.Name,
		Tally:     tally.Ranked(0),
	}

	grouping, err := pattern.ExcludeWeakest(tally, policy)
	var insufficient *pattern.InsufficientDataError
	switch {
	case stderrors.As(err, &insufficient):
		metrics.Insufficient(metrics.OpGroup)
		res.Insufficient = &Insufficient{
			What:    insufficient.What,
			Have:    insufficient.Have,
			Need:    insufficient.Need,
			Message: insufficient.Error(),
		}
		return res, nil
	case err != nil:
		return nil, err
	}
	if req.Flavor == pattern.FlavorPercent {
		grouping.AnnotatePercent()
	}
	res.Grouping = grouping
	return res, nil
}
