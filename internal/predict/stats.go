package predict

import (
	"context"

	"ladderscope/internal/metrics"
	"ladderscope/internal/pattern"
)

// Stats describes the stored history
type Stats struct {
	// Stored is the total number of rounds at the source, or -1 if unknown.
	Stored           int              `json:"stored"`
	Window           int              `json:"window"`
	LatestRound      int64            `json:"latestRound"`
	LatestRegistered string           `json:"latestRegistered,omitempty"`
	NextRound        int64            `json:"nextRound"`
	Distribution     []pattern.Ranked `json:"distribution"`
}

// Stats summarizes the fetched window: its size, newest round and how
// often each symbol occurs.
func (e *Engine) Stats(ctx context.Context) (st *Stats, err error) {
	timer := metrics.Start(metrics.OpStats)
	defer func() { timer.Done(err) }()

	h, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	st = &Stats{
		Stored:       -1,
		Window:       h.seq.Len(),
		NextRound:    h.nextRound(),
		Distribution: pattern.CountValues(h.seq.Symbols).Ranked(0),
	}
	latest, err := e.latest(ctx, h)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		st.LatestRound = latest.RoundNumber
		st.LatestRegistered = latest.RegisteredAt
	}
	if c, ok := e.source.(Counter); ok {
		n, err := c.Count(ctx)
		if err != nil {
			return nil, sourceError(ctx, err)
		}
		st.Stored = n
	}
	return st, nil
}

// latest asks the source for its newest round and falls back to the head
// of the fetched window.
func (e *Engine) latest(ctx context.Context, h history) (*pattern.RawRound, error) {
	if f, ok := e.source.(LatestFinder); ok {
		rr, err := f.Latest(ctx)
		if err != nil {
			return nil, sourceError(ctx, err)
		}
		return rr, nil
	}
	if len(h.rounds) == 0 {
		return nil, nil
	}
	return &h.rounds[0], nil
}
