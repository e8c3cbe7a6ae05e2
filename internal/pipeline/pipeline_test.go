package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobscout/jobscout-cli/internal/config"
	"github.com/jobscout/jobscout-cli/internal/export"
	"github.com/jobscout/jobscout-cli/internal/model"
	"github.com/jobscout/jobscout-cli/internal/source"
	"github.com/jobscout/jobscout-cli/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Search: config.SearchConfig{
			Sites:      []string{"indeed"},
			Term:       "engineer",
			RemoteOnly: true,
		},
		Filter: config.FilterConfig{
			TitleInclude:      testInclude,
			TitleExclude:      testExclude,
			AllowedJobTypes:   []string{"fulltime", "full-time"},
			ExcludedIntervals: []string{"hourly"},
		},
		Score: config.ScoreConfig{
			KeywordBonuses: map[string]int{"aws": 10000, "backend": 10000},
			RemoteBonus:    50000,
		},
		Export: config.ExportConfig{
			OutDir:      t.TempDir(),
			Delimiter:   ",",
			DropColumns: []string{"description"},
		},
	}
}

func testStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestPipeline_EndToEnd(t *testing.T) {
	cfg := testConfig(t)

	descA := "We run on aws."
	src := &source.Static{Postings: []model.Posting{
		{
			Title:       "Backend Engineer",
			Location:    strPtr("Austin, TX"),
			Remote:      model.TriTrue,
			MinAmount:   floatPtr(100000),
			MaxAmount:   floatPtr(140000),
			Description: &descA,
			DatePosted:  datePtr("2026-08-20"),
		},
		{
			Title:    "Marketing Intern",
			Location: strPtr("Denver, CO"),
		},
		{
			Title:    "Software Engineer",
			Location: strPtr("London, UK"),
		},
	}}

	p := New(cfg, testStore(t), src, export.NewWriter(cfg.Export))
	result, err := p.Run(context.Background())
	require.NoError(t, err)

	require.False(t, result.Empty())
	assert.Equal(t, 3, result.Fetched)
	require.Len(t, result.Survivors, 1)
	assert.Equal(t, "Backend Engineer", result.Survivors[0].Title)
	// salary 120000 + aws 10000 + remote 50000
	assert.InDelta(t, 180000, result.Survivors[0].Score, 0.001)
	assert.NotEmpty(t, result.RunID)

	// Export contains a header plus exactly one data row.
	data, err := os.ReadFile(result.ExportPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Backend Engineer")
	assert.NotContains(t, lines[0], "description")
}

func TestPipeline_EmptyFetchIsTerminalNotError(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, testStore(t), &source.Static{}, export.NewWriter(cfg.Export))

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Empty())
	assert.Equal(t, StageFetch, result.TerminalStage)
	assert.Empty(t, result.ExportPath)
}

func TestPipeline_ReportsEliminatingStage(t *testing.T) {
	tests := []struct {
		name      string
		posting   model.Posting
		wantStage string
	}{
		{
			name:      "title filter eliminates",
			posting:   model.Posting{Title: "Chef"},
			wantStage: StageTitle,
		},
		{
			name:      "remote rule eliminates",
			posting:   model.Posting{Title: "Backend Engineer", Remote: model.TriFalse},
			wantStage: StageRemote,
		},
		{
			name:      "job type rule eliminates",
			posting:   model.Posting{Title: "Backend Engineer", JobType: strPtr("contract")},
			wantStage: StageJobType,
		},
		{
			name:      "interval rule eliminates",
			posting:   model.Posting{Title: "Backend Engineer", Interval: strPtr("hourly")},
			wantStage: StageInterval,
		},
		{
			name:      "location rule eliminates",
			posting:   model.Posting{Title: "Backend Engineer", Location: strPtr("London, UK")},
			wantStage: StageLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			src := &source.Static{Postings: []model.Posting{tt.posting}}
			p := New(cfg, testStore(t), src, export.NewWriter(cfg.Export))

			result, err := p.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantStage, result.TerminalStage)
			assert.Empty(t, result.ExportPath)
		})
	}
}

func TestPipeline_FetchFailureIsFatal(t *testing.T) {
	cfg := testConfig(t)
	src := &source.Static{Err: assert.AnError}
	p := New(cfg, testStore(t), src, export.NewWriter(cfg.Export))

	_, err := p.Run(context.Background())
	assert.Error(t, err)
}

func TestPipeline_RecordsRunHistory(t *testing.T) {
	cfg := testConfig(t)
	st := testStore(t)
	src := &source.Static{Postings: []model.Posting{{Title: "Chef"}}}
	p := New(cfg, st, src, export.NewWriter(cfg.Export))

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StageTitle, runs[0].TerminalStage)
	assert.Equal(t, 1, runs[0].Fetched)
	assert.Equal(t, 0, runs[0].Exported)
}

func TestFormatSummary(t *testing.T) {
	result := &Result{
		Fetched:       4,
		StageCounts:   map[string]int{StageTitle: 0},
		TerminalStage: StageTitle,
	}
	out := FormatSummary(result)
	assert.Contains(t, out, "No jobs left after title filtering.")

	dated := datePtr("2026-08-20")
	result = &Result{
		Fetched: 2,
		StageCounts: map[string]int{
			StageTitle: 1, StageRemote: 1, StageJobType: 1, StageInterval: 1, StageLocation: 1,
		},
		Survivors: []model.ScoredPosting{
			{Posting: model.Posting{Title: "Backend Engineer", DatePosted: dated}, Score: 180000},
		},
		ExportPath: "20260829_101530_jobs_sorted.csv",
	}
	out = FormatSummary(result)
	assert.Contains(t, out, "Exported 1 postings")
	assert.Contains(t, out, "Backend Engineer")
	assert.Contains(t, out, "score=180000")
}
