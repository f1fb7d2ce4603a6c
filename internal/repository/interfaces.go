package repository

import (
	"context"

	"github.com/aigoflow/risk-reporter/internal/models"
)

// Repository aggregates all repository interfaces
type Repository interface {
	Run() RunRepositoryInterface
	Event() EventRepositoryInterface
}

// RunRepositoryInterface defines run journal operations
type RunRepositoryInterface interface {
	LogRun(ctx context.Context, run *models.RunLog) error
	ListRuns(ctx context.Context, limit int) ([]*models.RunLog, error)
}

// EventRepositoryInterface defines event logging operations
type EventRepositoryInterface interface {
	LogEvent(ctx context.Context, level, code, msg string, meta map[string]interface{}) error
}
