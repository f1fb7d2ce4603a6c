package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aigoflow/risk-reporter/internal/models"
	"github.com/aigoflow/risk-reporter/internal/store"
)

// SQLiteRepository implements Repository interface using SQLite
type SQLiteRepository struct {
	db        *store.DB
	runRepo   RunRepositoryInterface
	eventRepo EventRepositoryInterface
}

func NewSQLiteRepository(db *store.DB) Repository {
	return &SQLiteRepository{
		db:        db,
		runRepo:   &SQLiteRunRepository{db: db},
		eventRepo: &SQLiteEventRepository{db: db},
	}
}

func (r *SQLiteRepository) Run() RunRepositoryInterface {
	return r.runRepo
}

func (r *SQLiteRepository) Event() EventRepositoryInterface {
	return r.eventRepo
}

// SQLiteRunRepository handles the run journal
type SQLiteRunRepository struct {
	db *store.DB
}

func (r *SQLiteRunRepository) LogRun(ctx context.Context, run *models.RunLog) error {
	if err := r.db.Run(
		run.Timestamp,
		run.RequestID,
		run.Projection,
		run.OutputPath,
		run.Status,
		run.RowsWritten,
		run.Rejections,
		time.Duration(run.DurationMs)*time.Millisecond,
		run.Error,
	); err != nil {
		return fmt.Errorf("failed to log run %s: %w", run.RequestID, err)
	}
	return nil
}

func (r *SQLiteRunRepository) ListRuns(ctx context.Context, limit int) ([]*models.RunLog, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ts,request_id,projection,output_path,status,rows_written,rejections,dur_ms,error FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.RunLog
	for rows.Next() {
		var run models.RunLog
		var tsFloat float64

		if err := rows.Scan(
			&tsFloat, &run.RequestID, &run.Projection, &run.OutputPath, &run.Status,
			&run.RowsWritten, &run.Rejections, &run.DurationMs, &run.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Timestamp = time.Unix(0, int64(tsFloat*1e9))
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// SQLiteEventRepository handles event logging
type SQLiteEventRepository struct {
	db *store.DB
}

func (r *SQLiteEventRepository) LogEvent(ctx context.Context, level, code, msg string, meta map[string]interface{}) error {
	return r.db.Event(level, code, msg, meta)
}
