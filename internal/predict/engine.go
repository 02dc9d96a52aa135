package predict

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"ladderscope/internal/errors"
	"ladderscope/internal/metrics"
	"ladderscope/internal/pattern"
)

// Engine answers prediction queries against a RoundSource
type Engine struct {
	source RoundSource
	opts   Options
	logger *slog.Logger
}

// NewEngine creates an engine. Zero-valued option fields fall back to
// DefaultOptions.
func NewEngine(source RoundSource, opts Options, logger *slog.Logger) *Engine {
	def := DefaultOptions()
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = def.FetchLimit
	}
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.DefaultMode.Size == 0 {
		opts.DefaultMode = def.DefaultMode
	}
	if len(opts.Sizes) == 0 {
		opts.Sizes = def.Sizes
	}
	if len(opts.Transforms) == 0 {
		opts.Transforms = def.Transforms
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{source: source, opts: opts, logger: logger}
}

// Options returns the effective defaults.
func (e *Engine) Options() Options { return e.opts }

// history is the fetched window together with its encoding.
type history struct {
	rounds []pattern.RawRound
	seq    pattern.Sequence
}

// nextRound is the round number following the newest stored round.
func (h history) nextRound() int64 {
	if len(h.rounds) == 0 {
		return 0
	}
	return h.rounds[0].RoundNumber + 1
}

func (e *Engine) load(ctx context.Context) (history, error) {
	rounds, err := e.source.FetchRounds(ctx, e.opts.FetchLimit)
	if err != nil {
		return history{}, sourceError(ctx, err)
	}
	seq, err := pattern.EncodeSequence(rounds)
	if err != nil {
		return history{}, err
	}
	return history{rounds: rounds, seq: seq}, nil
}

func sourceError(ctx context.Context, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewLadderError(errors.Timeout, "round fetch timed out", err, nil)
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.NewLadderError(errors.Canceled, "round fetch canceled", err, nil)
	}
	return errors.NewLadderError(errors.StoreUnavailable, "round store unavailable", err,
		errors.GetSuggestedFixes(errors.StoreUnavailable))
}

// PredictRequest selects a mode and how many matches to display. An empty
// Mode uses the default; Limit 0 uses Options.DisplayLimit and a negative
// Limit shows every match.
type PredictRequest struct {
	Mode  string
	Limit int
}

// Prediction is the block built from the newest rounds and every earlier
// place it occurred.
type Prediction struct {
	Mode      pattern.Mode
	NextRound int64
	Rounds    int
	Block     pattern.Block
	// Matches is the full match list, most recent first.
	Matches []pattern.Match
	// Shown is how many of Matches are displayed.
	Shown int
	Above pattern.SideSummary
	Below pattern.SideSummary
}

// Displayed returns the truncated match list.
func (p *Prediction) Displayed() []pattern.Match {
	return p.Matches[:p.Shown]
}

// Predict builds the block for the requested mode and matches it against
// the fetched history.
func (e *Engine) Predict(ctx context.Context, req PredictRequest) (p *Prediction, err error) {
	timer := metrics.Start(metrics.OpPredict)
	defer func() { timer.Done(err) }()

	mode := e.opts.DefaultMode
	if req.Mode != "" {
		if mode, err = pattern.ParseMode(req.Mode); err != nil {
			return nil, err
		}
	}

	h, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	block, err := pattern.BuildBlock(h.seq, mode.Size, mode.Transform)
	if err != nil {
		return nil, err
	}
	matches := pattern.MatchBlock(block, h.seq)
	metrics.Matches(metrics.OpPredict, len(matches))

	limit := req.Limit
	if limit == 0 {
		limit = e.opts.DisplayLimit
	}
	shown := len(matches)
	if limit > 0 && limit < shown {
		shown = limit
	}

	e.logger.Debug("Prediction computed",
		"mode", mode.String(),
		"rounds", h.seq.Len(),
		"matches", len(matches),
	)

	return &Prediction{
		Mode:      mode,
		NextRound: h.nextRound(),
		Rounds:    h.seq.Len(),
		Block:     block,
		Matches:   matches,
		Shown:     shown,
		Above:     pattern.Summarize(matches, pattern.Above),
		Below:     pattern.Summarize(matches, pattern.Below),
	}, nil
}

// pairScan is one (size, transform) matcher run.
type pairScan struct {
	mode    pattern.Mode
	block   pattern.Block
	matches []pattern.Match
	// insufficient is set when the history is shorter than the block.
	insufficient *pattern.InsufficientDataError
}

func (e *Engine) resolvePairs(sizes []int, transforms []pattern.Transform) ([]pattern.Mode, error) {
	if len(sizes) == 0 {
		sizes = e.opts.Sizes
	}
	if len(transforms) == 0 {
		transforms = e.opts.Transforms
	}
	sizes, err := ParseSizes(sizes)
	if err != nil {
		return nil, err
	}

	modes := make([]pattern.Mode, 0, len(sizes)*len(transforms))
	for _, k := range sizes {
		for _, t := range transforms {
			if t > pattern.FlipOddEven {
				return nil, fmt.Errorf("%w: %d", pattern.ErrUnknownTransform, t)
			}
			modes = append(modes, pattern.Mode{Size: k, Transform: t})
		}
	}
	return modes, nil
}
