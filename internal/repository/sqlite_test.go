package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aigoflow/risk-reporter/internal/models"
	"github.com/aigoflow/risk-reporter/internal/store"
)

func openRepo(t *testing.T) (Repository, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "journal.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteRepository(db), db
}

func TestRunsListedNewestFirst(t *testing.T) {
	repo, _ := openRepo(t)
	ctx := context.Background()

	start := time.Now().Add(-time.Minute)
	require.NoError(t, repo.Run().LogRun(ctx, &models.RunLog{
		Timestamp:   start,
		RequestID:   "RTR#first",
		Projection:  "Exchange/Symbol",
		OutputPath:  "/tmp/a.csv",
		Status:      models.RunCompleted,
		RowsWritten: 3,
		DurationMs:  120,
	}))
	require.NoError(t, repo.Run().LogRun(ctx, &models.RunLog{
		Timestamp:  start.Add(30 * time.Second),
		RequestID:  "RTR#second",
		Projection: "Exchange/Symbol",
		OutputPath: "/tmp/b.csv",
		Status:     models.RunTimeout,
		Rejections: 1,
		Error:      "timed out waiting for risk table response",
	}))

	runs, err := repo.Run().ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "RTR#second", runs[0].RequestID)
	assert.Equal(t, models.RunTimeout, runs[0].Status)
	assert.Equal(t, 1, runs[0].Rejections)
	assert.NotEmpty(t, runs[0].Error)

	assert.Equal(t, "RTR#first", runs[1].RequestID)
	assert.Equal(t, 3, runs[1].RowsWritten)
	assert.Equal(t, float64(120), runs[1].DurationMs)
	assert.WithinDuration(t, start, runs[1].Timestamp, time.Millisecond)
}

func TestListRunsLimit(t *testing.T) {
	repo, _ := openRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Run().LogRun(ctx, &models.RunLog{Timestamp: time.Now(), Status: models.RunCompleted}))
	}

	runs, err := repo.Run().ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestLogEvent(t *testing.T) {
	repo, db := openRepo(t)

	require.NoError(t, repo.Event().LogEvent(context.Background(), "info", "run.started", "Run started", map[string]interface{}{
		"projection": "Exchange/Symbol",
	}))

	var code, meta string
	require.NoError(t, db.QueryRow(`SELECT code, meta FROM events`).Scan(&code, &meta))
	assert.Equal(t, "run.started", code)
	assert.JSONEq(t, `{"projection":"Exchange/Symbol"}`, meta)
}
