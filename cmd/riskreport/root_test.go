package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aigoflow/risk-reporter/internal/models"
)

func TestArgumentCountValidated(t *testing.T) {
	assert.ErrorIs(t, rootCmd.Args(rootCmd, nil), errArgs)
	assert.ErrorIs(t, rootCmd.Args(rootCmd, []string{"a.csv", "b.csv"}), errArgs)
	assert.NoError(t, rootCmd.Args(rootCmd, []string{"a.csv"}))
}

func TestHistoryTable(t *testing.T) {
	ts := time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local)
	data := historyTable([]*models.RunLog{{
		Timestamp:   ts,
		RequestID:   "RTR#1",
		Projection:  "Exchange/Symbol",
		Status:      models.RunCompleted,
		RowsWritten: 12,
		Rejections:  1,
		DurationMs:  1500,
		OutputPath:  "/tmp/risk.csv",
	}})

	require.Len(t, data, 2)
	assert.Equal(t, "Request", data[0][1])
	assert.Equal(t, []string{"2026-10-18 09:30:00", "RTR#1", "Exchange/Symbol", "completed", "12", "1", "1.5s", "/tmp/risk.csv"}, data[1])
}
