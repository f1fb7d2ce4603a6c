package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aigoflow/risk-reporter/internal/config"
	"github.com/aigoflow/risk-reporter/internal/models"
)

// DiscoveryService answers projection discovery requests
type DiscoveryService struct {
	nats     *nats.Conn
	config   *config.Config
	snapshot *SnapshotService
	name     string
}

func NewDiscoveryService(natsConn *nats.Conn, cfg *config.Config, snapshot *SnapshotService) *DiscoveryService {
	return &DiscoveryService{
		nats:     natsConn,
		config:   cfg,
		snapshot: snapshot,
		name:     generateWorkerID(),
	}
}

func (d *DiscoveryService) Start(ctx context.Context) error {
	sub, err := d.nats.Subscribe(d.config.DiscoverySubject, func(msg *nats.Msg) {
		catalogData, err := json.Marshal(d.catalog())
		if err != nil {
			slog.Error("Failed to marshal projection catalog", "error", err)
			return
		}

		if err := msg.Respond(catalogData); err != nil {
			slog.Error("Failed to respond to discovery request", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to discovery subject: %w", err)
	}

	slog.Info("Discovery service started", "subject", d.config.DiscoverySubject)

	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()
	return nil
}

func (d *DiscoveryService) catalog() models.ProjectionCatalog {
	return models.ProjectionCatalog{
		Responder:   d.name,
		Projections: d.snapshot.Projections(),
		Timestamp:   time.Now(),
	}
}
