package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestChangelog(t *testing.T) *Changelog {
	t.Helper()
	cl, err := OpenChangelog(filepath.Join(t.TempDir(), "changelog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cl.Close() })
	require.NoError(t, cl.Migrate(context.Background()))
	return cl
}

func TestChangelog_RecordAndGet(t *testing.T) {
	cl := openTestChangelog(t)
	ctx := context.Background()

	started := time.Now().UTC().Add(-time.Second)
	counters := map[string]int{"dates_added": 1, "skipped": 2}
	lines := []string{
		"acme: date set to 2024-06-01 (Series A)",
		"skip ghost: no matching record",
	}

	id, err := cl.RecordRun(ctx, "enrich", "web_enrichment", counters, started, lines)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := cl.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "enrich", run.Command)
	assert.Equal(t, "web_enrichment", run.Source)
	assert.Equal(t, counters, run.Counters)
	assert.Equal(t, lines, run.Lines)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))
}

func TestChangelog_ListNewestFirst(t *testing.T) {
	cl := openTestChangelog(t)
	ctx := context.Background()

	older := time.Now().UTC().Add(-time.Hour)
	newer := time.Now().UTC()

	_, err := cl.RecordRun(ctx, "enrich", "web_enrichment", map[string]int{}, older, nil)
	require.NoError(t, err)
	_, err = cl.RecordRun(ctx, "filings", "filings", map[string]int{"new": 3}, newer, nil)
	require.NoError(t, err)

	runs, err := cl.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "filings", runs[0].Command)
	assert.Equal(t, "enrich", runs[1].Command)
	assert.Empty(t, runs[0].Lines, "list does not hydrate lines")
}

func TestChangelog_ListLimit(t *testing.T) {
	cl := openTestChangelog(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := cl.RecordRun(ctx, "enrich", "web_enrichment", map[string]int{},
			time.Now().UTC().Add(time.Duration(i)*time.Minute), nil)
		require.NoError(t, err)
	}

	runs, err := cl.ListRuns(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestChangelog_GetUnknownRun(t *testing.T) {
	cl := openTestChangelog(t)

	_, err := cl.GetRun(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
