package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobscout/jobscout-cli/internal/model"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "jobscout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testRun(startedAt time.Time, terminalStage string) *model.Run {
	return &model.Run{
		Query:   "software engineer",
		Sites:   []string{"indeed", "linkedin"},
		Fetched: 42,
		StageCounts: map[string]int{
			"title":  30,
			"remote": 25,
		},
		TerminalStage: terminalStage,
		Exported:      25,
		ExportPath:    "/tmp/out/20260829_101530_jobs_sorted.csv",
		StartedAt:     startedAt,
		DurationMS:    1234,
	}
}

func TestSQLiteStore_RecordAndListRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	started := time.Date(2026, 8, 29, 10, 15, 30, 0, time.UTC)
	recorded, err := st.RecordRun(ctx, testRun(started, ""))
	require.NoError(t, err)
	assert.NotEmpty(t, recorded.ID)

	runs, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, recorded.ID, got.ID)
	assert.Equal(t, "software engineer", got.Query)
	assert.Equal(t, []string{"indeed", "linkedin"}, got.Sites)
	assert.Equal(t, 42, got.Fetched)
	assert.Equal(t, map[string]int{"title": 30, "remote": 25}, got.StageCounts)
	assert.Empty(t, got.TerminalStage)
	assert.Equal(t, 25, got.Exported)
	assert.Equal(t, "/tmp/out/20260829_101530_jobs_sorted.csv", got.ExportPath)
	assert.True(t, started.Equal(got.StartedAt))
	assert.Equal(t, int64(1234), got.DurationMS)
}

func TestSQLiteStore_PreservesExplicitID(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	run := testRun(time.Now().UTC(), "")
	run.ID = "run-explicit"
	recorded, err := st.RecordRun(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, "run-explicit", recorded.ID)
}

func TestSQLiteStore_ListOrdersNewestFirst(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := st.RecordRun(ctx, testRun(base.Add(time.Duration(i)*time.Hour), ""))
		require.NoError(t, err)
	}

	runs, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
	assert.True(t, runs[1].StartedAt.After(runs[2].StartedAt))
}

func TestSQLiteStore_FilterByTerminalStage(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	_, err := st.RecordRun(ctx, testRun(now, ""))
	require.NoError(t, err)
	_, err = st.RecordRun(ctx, testRun(now.Add(time.Minute), "title"))
	require.NoError(t, err)
	_, err = st.RecordRun(ctx, testRun(now.Add(2*time.Minute), "location"))
	require.NoError(t, err)

	runs, err := st.ListRuns(ctx, RunFilter{TerminalStage: "title"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "title", runs[0].TerminalStage)
}

func TestSQLiteStore_LimitAndOffset(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := st.RecordRun(ctx, testRun(base.Add(time.Duration(i)*time.Minute), ""))
		require.NoError(t, err)
	}

	runs, err := st.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, base.Add(4*time.Minute).Equal(runs[0].StartedAt))

	paged, err := st.ListRuns(ctx, RunFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, paged, 2)
	assert.True(t, base.Add(2*time.Minute).Equal(paged[0].StartedAt))
}
