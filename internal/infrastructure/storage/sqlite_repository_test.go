package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StrategyScanner/internal/domain"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewWithDB(db)
	require.NoError(t, err)
	return repo
}

func TestSaveRun_RoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	started := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	run := domain.ScrapeRun{
		ID:        "run-1",
		StartedAt: started,
		Criteria:  map[string]string{"Min CAGR (%)": "20", "Keywords": "momentum"},
		Strategies: []domain.StrategyRecord{
			{
				Seq:          1,
				Name:         "Momentum Monthly",
				Source:       domain.SourceYouTube,
				Link:         "https://www.youtube.com/watch?v=abc",
				Channel:      "QuantLab",
				Date:         "2025-01-10",
				StrategyType: "Momentum",
				AssetClass:   "Equities",
				MarketRegime: "Trending",
				TradingHours: "All Hours",
				CAGR:         domain.Float(38.5),
				SharpeRatio:  domain.Float(1.4),
				QualityScore: domain.Int(8),
				Description:  "Monthly rebalance on relative strength.",
			},
			{
				Seq:          2,
				Name:         "Range Fader",
				Source:       domain.SourceReddit,
				Link:         "https://reddit.com/r/algotrading/1",
				Channel:      "r/algotrading",
				Date:         "Unknown",
				StrategyType: "Mean Reversion",
				AssetClass:   "Unknown",
				MarketRegime: "All Regimes",
				TradingHours: "All Hours",
				WinRate:      domain.Float(61),
				Description:  "Fades range extremes.",
			},
		},
		TotalStrategies: 2,
	}

	require.NoError(t, repo.SaveRun(ctx, run))

	runs, err := repo.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, "run-1", got.ID)
	assert.True(t, got.StartedAt.Equal(started))
	assert.Equal(t, run.Criteria, got.Criteria)
	assert.Equal(t, 2, got.TotalStrategies)

	require.Len(t, got.Strategies, 2)
	first := got.Strategies[0]
	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, domain.SourceYouTube, first.Source)
	require.NotNil(t, first.CAGR)
	assert.Equal(t, 38.5, *first.CAGR)
	require.NotNil(t, first.QualityScore)
	assert.Equal(t, 8, *first.QualityScore)
	assert.Nil(t, first.WinRate, "unstated metric stays null through storage")

	second := got.Strategies[1]
	assert.Equal(t, 2, second.Seq)
	assert.Nil(t, second.CAGR)
	require.NotNil(t, second.WinRate)
	assert.Equal(t, 61.0, *second.WinRate)
}

func TestRecentRuns_OrderAndLimit(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, repo.SaveRun(ctx, domain.ScrapeRun{
			ID:        id,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Criteria:  map[string]string{},
		}))
	}

	runs, err := repo.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "mid", runs[1].ID)
}

func TestRecentRuns_Empty(t *testing.T) {
	repo := newTestRepository(t)

	runs, err := repo.RecentRuns(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSaveRun_DuplicateIDFails(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	run := domain.ScrapeRun{ID: "dup", StartedAt: time.Now(), Criteria: map[string]string{}}
	require.NoError(t, repo.SaveRun(ctx, run))
	assert.Error(t, repo.SaveRun(ctx, run))
}
