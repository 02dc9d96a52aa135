package predict_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerrors "ladderscope/internal/errors"
	"ladderscope/internal/pattern"
	"ladderscope/internal/predict"
	"ladderscope/internal/storage"
	"ladderscope/internal/testutil"
)

// roundsOf turns "L3E R3O ..." (newest first) into raw rounds numbered
// down from testutil.FirstRound.
func roundsOf(t *testing.T, short string) []pattern.RawRound {
	t.Helper()
	return testutil.Rounds(t, short)
}

func engineFor(t *testing.T, short string) *predict.Engine {
	t.Helper()
	return predict.NewEngine(predict.NewStaticSource(roundsOf(t, short)), predict.DefaultOptions(), nil)
}

const history = "L3E R3O L4O R4E L3E R3O L4O"

// groupHistory repeats the block R3E R3E R3E with a different outcome
// above each later occurrence: L3E twice, then L4O, R3O and R4E.
const groupHistory = "R3E R3E R3E L3E R3E R3E R3E L3E R3E R3E R3E L4O " +
	"R3E R3E R3E R3O R3E R3E R3E R4E R3E R3E R3E"

func TestPredict(t *testing.T) {
	e := engineFor(t, history)

	p, err := e.Predict(context.Background(), predict.PredictRequest{Mode: "3block_orig"})
	require.NoError(t, err)

	assert.Equal(t, int64(101), p.NextRound)
	assert.Equal(t, 7, p.Rounds)
	assert.Equal(t, "L3E>R3O>L4O", p.Block.Join(pattern.Symbol.Short))
	require.Len(t, p.Matches, 2)
	assert.Equal(t, 0, p.Matches[0].Position)
	assert.Equal(t, 4, p.Matches[1].Position)

	v := p.View(predict.NotationEnglish)
	require.Len(t, v.Predictions, 2)
	assert.Equal(t, "NONE", v.Predictions[0].Value, "the newest match has nothing above it")
	assert.Equal(t, 1, *v.Predictions[0].Position)
	assert.Equal(t, "RIGHT-4-EVEN", v.Predictions[1].Value)
	assert.Equal(t, 5, *v.Predictions[1].Position)
	assert.Equal(t, "LEFT-3-EVEN>RIGHT-3-ODD>LEFT-4-ODD", v.Predictions[1].Block)

	assert.Equal(t, 2, v.Summary["above"].TotalMatches)
	assert.Equal(t, 1, v.Summary["above"].Predicted)
	assert.Equal(t, 1, v.Summary["below"].Predicted)
}

func TestPredict_DefaultModeAndNotation(t *testing.T) {
	e := engineFor(t, history)

	p, err := e.Predict(context.Background(), predict.PredictRequest{})
	require.NoError(t, err)
	assert.Equal(t, "3block_orig", p.Mode.String())

	v := p.View(predict.NotationHangul)
	assert.Equal(t, "좌3짝>우3홀>좌4홀", v.Block)
	assert.Equal(t, "우4짝", v.Predictions[1].Value)

	short := p.View(predict.NotationShort)
	assert.Equal(t, "-", short.Predictions[0].Value)
}

func TestPredict_DisplayLimit(t *testing.T) {
	e := engineFor(t, "L3O L3O L3O L3O L3O L3O L3O L3O")

	p, err := e.Predict(context.Background(), predict.PredictRequest{Mode: "3block", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, p.Matches, 6)
	assert.Len(t, p.Displayed(), 2)

	v := p.View(predict.NotationShort)
	assert.Len(t, v.Predictions, 2)
	assert.Equal(t, 6, v.TotalMatches)
	assert.Equal(t, 6, v.Summary["above"].MaxPosition, "summary covers every match")

	all, err := e.Predict(context.Background(), predict.PredictRequest{Mode: "3block", Limit: -1})
	require.NoError(t, err)
	assert.Len(t, all.Displayed(), 6)
}

func TestPredict_Sentinel(t *testing.T) {
	e := engineFor(t, history)

	p, err := e.Predict(context.Background(), predict.PredictRequest{Mode: "3block_flip_full"})
	require.NoError(t, err)
	assert.Empty(t, p.Matches)

	v := p.View(predict.NotationEnglish)
	require.Len(t, v.Predictions, 1)
	assert.Equal(t, predict.Entry{Value: "NONE", Block: "NONE"}, v.Predictions[0])
	assert.Nil(t, v.Predictions[0].Position)
	assert.Equal(t, "RIGHT-3-ODD>LEFT-3-EVEN>RIGHT-4-EVEN", v.Block)
}

func TestPredict_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := engineFor(t, history).Predict(ctx, predict.PredictRequest{Mode: "9block_orig"})
	assert.ErrorIs(t, err, pattern.ErrUnknownMode)

	_, err = engineFor(t, "L3O R3O").Predict(ctx, predict.PredictRequest{Mode: "3block_orig"})
	var insufficient *pattern.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2, insufficient.Have)
	assert.Equal(t, 3, insufficient.Need)

	bad := roundsOf(t, history)
	bad[2].Side = "UP"
	e := predict.NewEngine(predict.NewStaticSource(bad), predict.Options{}, nil)
	_, err = e.Predict(ctx, predict.PredictRequest{})
	var encErr *pattern.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, 2, encErr.Index)
}

type failingSource struct{ err error }

func (f failingSource) FetchRounds(context.Context, int) ([]pattern.RawRound, error) {
	return nil, f.err
}

type slowSource struct{}

func (slowSource) FetchRounds(ctx context.Context, _ int) ([]pattern.RawRound, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestPredict_SourceErrors(t *testing.T) {
	e := predict.NewEngine(failingSource{errors.New("database is locked")}, predict.Options{}, nil)
	_, err := e.Predict(context.Background(), predict.PredictRequest{})
	var le *lerrors.LadderError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, lerrors.StoreUnavailable, le.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = predict.NewEngine(slowSource{}, predict.Options{}, nil).Predict(ctx, predict.PredictRequest{})
	require.ErrorAs(t, err, &le)
	assert.Equal(t, lerrors.Timeout, le.Code)

	gone, stop := context.WithCancel(context.Background())
	stop()
	_, err = predict.NewEngine(slowSource{}, predict.Options{}, nil).Predict(gone, predict.PredictRequest{})
	require.ErrorAs(t, err, &le)
	assert.Equal(t, lerrors.Canceled, le.Code)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRank(t *testing.T) {
	e := engineFor(t, history)

	res, err := e.Rank(context.Background(), predict.RankRequest{
		Sizes:      []int{3},
		Transforms: []pattern.Transform{pattern.Identity},
		Direction:  pattern.Above,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TopK)
	require.Len(t, res.Pairs, 1)
	assert.Equal(t, 2, res.Pairs[0].Matches)
	assert.Equal(t, []pattern.Ranked{{Symbol: pattern.MustParseSymbol("R4E"), Value: 1}}, res.Pairs[0].Ranking)
	assert.Equal(t, res.Pairs[0].Ranking, res.Combined)

	below, err := e.Rank(context.Background(), predict.RankRequest{
		Sizes:      []int{3},
		Transforms: []pattern.Transform{pattern.Identity},
		Direction:  pattern.Below,
	})
	require.NoError(t, err)
	assert.Equal(t, []pattern.Ranked{{Symbol: pattern.MustParseSymbol("R4E"), Value: 1}}, below.Combined)
}

func TestRank_DefaultPairsAndSkips(t *testing.T) {
	e := engineFor(t, "L3E R3O L4O R4E L3E")

	res, err := e.Rank(context.Background(), predict.RankRequest{})
	require.NoError(t, err)
	assert.Len(t, res.Pairs, 16, "4 sizes x 4 transforms")

	skipped := 0
	for _, p := range res.Pairs {
		if p.Skipped {
			skipped++
			assert.Greater(t, p.Mode.Size, 5)
		}
	}
	assert.Equal(t, 4, skipped, "size 6 does not fit in 5 rounds")
	assert.Equal(t, "3block_orig", res.Pairs[0].Mode.String())
	assert.Equal(t, "3block_flip_full", res.Pairs[1].Mode.String())
}

func TestRank_AllSkipped(t *testing.T) {
	_, err := engineFor(t, "L3E R3O").Rank(context.Background(), predict.RankRequest{Sizes: []int{3, 4}})
	var insufficient *pattern.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Need)
}

func TestRank_BadSize(t *testing.T) {
	_, err := engineFor(t, history).Rank(context.Background(), predict.RankRequest{Sizes: []int{2}})
	assert.ErrorIs(t, err, pattern.ErrBlockSize)
}

func TestGroup_Count(t *testing.T) {
	e := engineFor(t, groupHistory)

	res, err := e.Group(context.Background(), predict.GroupRequest{
		RankRequest: predict.RankRequest{Sizes: []int{3}, Transforms: []pattern.Transform{pattern.Identity}},
		Flavor:      pattern.FlavorCount,
	})
	require.NoError(t, err)
	require.Nil(t, res.Insufficient)
	require.NotNil(t, res.Grouping)

	g := res.Grouping
	assert.Equal(t, "ladder4", g.Policy)
	assert.Equal(t, pattern.MustParseSymbol("L4O"), g.Excluded.Symbol, "first of the tied minima is dropped")
	require.Len(t, g.Group, 3)
	assert.Equal(t, pattern.MustParseSymbol("L3E"), g.Group[0].Symbol)
	assert.Equal(t, 2, g.Group[0].Value)
	assert.Equal(t, 5, g.Total)
	assert.InDelta(t, 0.5, g.MaxShare, 1e-9)
	assert.Equal(t, pattern.Concentrated, g.Dispersion)
}

func TestGroup_PercentAnnotatesShares(t *testing.T) {
	e := engineFor(t, groupHistory)
	req := predict.GroupRequest{
		RankRequest: predict.RankRequest{Sizes: []int{3}, Transforms: []pattern.Transform{pattern.Identity}},
		Flavor:      pattern.FlavorCount,
	}

	counted, err := e.Group(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, counted.Grouping)

	req.Flavor = pattern.FlavorPercent
	shared, err := e.Group(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, shared.Grouping)

	assert.Equal(t, counted.Grouping.Excluded.Symbol, shared.Grouping.Excluded.Symbol)
	assert.NotEqual(t, counted.Grouping, shared.Grouping)
	for _, m := range counted.Grouping.Group {
		assert.Zero(t, m.Percent, "count leaves shares unset for %s", m.Symbol)
	}
	assert.InDelta(t, 40.0, shared.Grouping.Group[0].Percent, 1e-9)
	assert.InDelta(t, 20.0, shared.Grouping.Excluded.Percent, 1e-9)

	countJSON, err := json.Marshal(counted)
	require.NoError(t, err)
	percentJSON, err := json.Marshal(shared)
	require.NoError(t, err)
	assert.NotContains(t, string(countJSON), `"percent"`)
	assert.Contains(t, string(percentJSON), `"percent":40`)
}

func TestGroup_RanksPutExcludedLast(t *testing.T) {
	res, err := engineFor(t, groupHistory).Group(context.Background(), predict.GroupRequest{
		RankRequest: predict.RankRequest{Sizes: []int{3}, Transforms: []pattern.Transform{pattern.Identity}},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Grouping)

	ranks := map[string]int{}
	for _, m := range res.Grouping.Group {
		ranks[m.Symbol.Short()] = m.Rank
	}
	assert.Equal(t, map[string]int{"L3E": 1, "R3O": 2, "R4E": 3}, ranks)
	assert.Equal(t, 4, res.Grouping.Excluded.Rank)
}

func TestGroup_Borda(t *testing.T) {
	e := engineFor(t, groupHistory)
	req := predict.GroupRequest{
		RankRequest: predict.RankRequest{Sizes: []int{3}, Transforms: []pattern.Transform{pattern.Identity}},
		Flavor:      pattern.FlavorBorda,
	}

	res, err := e.Group(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res.Insufficient, "top 3 leaves one canonical outcome unscored")
	assert.Equal(t, 3, res.Insufficient.Have)
	assert.Equal(t, 4, res.Insufficient.Need)
	assert.Nil(t, res.Grouping)

	req.TopK = 4
	res, err = e.Group(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res.Grouping)
	assert.Equal(t, pattern.MustParseSymbol("R4E"), res.Grouping.Excluded.Symbol)
	assert.Equal(t, 9, res.Grouping.Group[0].Value+res.Grouping.Group[1].Value+res.Grouping.Group[2].Value)
	assert.Equal(t, pattern.Dispersed, res.Grouping.Dispersion)
}

func TestGroup_InsufficientMarker(t *testing.T) {
	e := engineFor(t, "L3O L3O L3O L3O L3O L3O")

	res, err := e.Group(context.Background(), predict.GroupRequest{})
	require.NoError(t, err, "too few outcomes is a result, not an error")
	require.NotNil(t, res.Insufficient)
	assert.Equal(t, 0, res.Insufficient.Have)
}

func TestGroup_CustomPolicy(t *testing.T) {
	e := engineFor(t, groupHistory)
	policy := pattern.ExclusionPolicy{
		Name: "pair",
		Canonical: []pattern.Symbol{
			pattern.MustParseSymbol("L3E"),
			pattern.MustParseSymbol("R4E"),
		},
		Threshold: 0.9,
	}

	res, err := e.Group(context.Background(), predict.GroupRequest{
		RankRequest: predict.RankRequest{Sizes: []int{3}, Transforms: []pattern.Transform{pattern.Identity}},
		Policy:      policy,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Grouping)
	assert.Equal(t, "pair", res.Policy)
	assert.Equal(t, pattern.MustParseSymbol("R4E"), res.Grouping.Excluded.Symbol)
	assert.Equal(t, pattern.Concentrated, res.Grouping.Dispersion)

	_, err = e.Group(context.Background(), predict.GroupRequest{Policy: pattern.ExclusionPolicy{Name: "broken"}})
	assert.ErrorIs(t, err, pattern.ErrInvalidPolicy)
}

func TestStats(t *testing.T) {
	e := engineFor(t, history)

	st, err := e.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, st.Stored)
	assert.Equal(t, 7, st.Window)
	assert.Equal(t, int64(100), st.LatestRound)
	assert.Equal(t, int64(101), st.NextRound)
	require.NotEmpty(t, st.Distribution)
	assert.Equal(t, pattern.Ranked{Symbol: pattern.MustParseSymbol("L3E"), Value: 2}, st.Distribution[0])
}

type latestSource struct {
	predict.RoundSource
	latest *pattern.RawRound
	err    error
}

func (s latestSource) Latest(context.Context) (*pattern.RawRound, error) { return s.latest, s.err }

func TestStats_LatestFromSource(t *testing.T) {
	newest := testutil.Raw(pattern.MustParseSymbol("R4E"), 250, "2026-07-01")
	src := latestSource{RoundSource: predict.NewStaticSource(roundsOf(t, history)), latest: &newest}

	st, err := predict.NewEngine(src, predict.DefaultOptions(), nil).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(250), st.LatestRound)
	assert.Equal(t, "2026-07-01", st.LatestRegistered)
	assert.Equal(t, -1, st.Stored, "no Counter behind the wrapper")

	src.err = errors.New("disk I/O error")
	_, err = predict.NewEngine(src, predict.DefaultOptions(), nil).Stats(context.Background())
	var le *lerrors.LadderError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, lerrors.StoreUnavailable, le.Code)
}

func TestStats_StoreBacked(t *testing.T) {
	db, err := storage.Open(storage.Memory, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := storage.NewRoundRepository(db, 0)
	var _ predict.LatestFinder = repo

	e := predict.NewEngine(repo, predict.DefaultOptions(), nil)
	st, err := e.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.LatestRound, "empty store has no latest round")
	assert.Equal(t, 0, st.Stored)

	_, err = repo.Upsert(context.Background(), roundsOf(t, history))
	require.NoError(t, err)

	st, err = e.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(testutil.FirstRound), st.LatestRound)
	assert.Equal(t, testutil.FixtureDate, st.LatestRegistered)
	assert.Equal(t, 7, st.Stored)
}

func TestStats_WindowLimitedByFetchLimit(t *testing.T) {
	opts := predict.DefaultOptions()
	opts.FetchLimit = 3
	e := predict.NewEngine(predict.NewStaticSource(roundsOf(t, history)), opts, nil)

	st, err := e.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, st.Window)
	assert.Equal(t, 7, st.Stored)
}
