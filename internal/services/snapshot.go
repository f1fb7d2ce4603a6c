package services

import (
	"log/slog"

	"github.com/aigoflow/risk-reporter/internal/fixture"
	"github.com/aigoflow/risk-reporter/internal/models"
)

const (
	ErrProjectionNotFound = "projection not found"
	ErrProjectionEmpty    = "projection has no rows"
)

// SnapshotService answers snapshot requests from a fixture table
type SnapshotService struct {
	table *fixture.Table
}

func NewSnapshotService(table *fixture.Table) *SnapshotService {
	return &SnapshotService{table: table}
}

func (s *SnapshotService) Projections() []string {
	return s.table.Names()
}

// Snapshot builds the response stream for req: one response per row with
// IsLast on the final one, or a single failed response.
func (s *SnapshotService) Snapshot(req *models.RiskTableSnapshotRequest) []*models.RiskTableSnapshotResponse {
	rows, ok := s.table.Rows(req.Projection)
	if !ok {
		slog.Warn("Unknown projection requested", "req_id", req.RequestID, "projection", req.Projection)
		return []*models.RiskTableSnapshotResponse{failure(req.RequestID, ErrProjectionNotFound)}
	}
	if len(rows) == 0 {
		return []*models.RiskTableSnapshotResponse{failure(req.RequestID, ErrProjectionEmpty)}
	}

	responses := make([]*models.RiskTableSnapshotResponse, len(rows))
	for i, row := range rows {
		responses[i] = &models.RiskTableSnapshotResponse{
			RequestID:  req.RequestID,
			Success:    true,
			IsLast:     i == len(rows)-1,
			Conditions: row.Conditions,
			Limits:     row.Limits,
		}
	}
	return responses
}

func failure(requestID, msg string) *models.RiskTableSnapshotResponse {
	return &models.RiskTableSnapshotResponse{
		RequestID:    requestID,
		Success:      false,
		ErrorMessage: msg,
		IsLast:       true,
	}
}
