package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aigoflow/risk-reporter/internal/config"
	"github.com/aigoflow/risk-reporter/internal/models"
)

// errNoReplyTo marks a request that cannot be answered
var errNoReplyTo = errors.New("request has no reply_to subject")

// generateWorkerID creates a unique worker ID using timestamp and random bytes
func generateWorkerID() string {
	timestamp := time.Now().UnixNano()
	randomBytes := make([]byte, 4)
	rand.Read(randomBytes)
	return fmt.Sprintf("worker-%d-%s", timestamp, hex.EncodeToString(randomBytes))
}

// publishFunc sends data on subject; *nats.Conn.Publish in production
type publishFunc func(subject string, data []byte) error

type NATSService struct {
	conn     *nats.Conn
	js       nats.JetStreamContext
	snapshot *SnapshotService
	cfg      *config.Config
}

func NewNATSService(cfg *config.Config, snapshot *SnapshotService) (*NATSService, error) {
	conn, err := nats.Connect(cfg.NatsURL, nats.Name("riskresponder"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSService{
		conn:     conn,
		js:       js,
		snapshot: snapshot,
		cfg:      cfg,
	}, nil
}

func (s *NATSService) Start(ctx context.Context) error {
	if err := s.ensureStream(); err != nil {
		return fmt.Errorf("failed to ensure stream: %w", err)
	}

	consumer, err := s.createConsumer()
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	slog.Info("NATS service starting",
		"stream", s.cfg.Stream,
		"subject", s.cfg.RequestSubject,
		"consumer", s.cfg.Durable,
		"concurrency", s.cfg.Concurrency)

	for i := 0; i < s.cfg.Concurrency; i++ {
		go s.worker(ctx, consumer, generateWorkerID())
	}

	<-ctx.Done()
	slog.Info("NATS service shutting down")

	s.conn.Close()
	return nil
}

func (s *NATSService) ensureStream() error {
	streamInfo, err := s.js.StreamInfo(s.cfg.Stream)
	if err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			return fmt.Errorf("failed to get stream info: %w", err)
		}
		_, err = s.js.AddStream(&nats.StreamConfig{
			Name:      s.cfg.Stream,
			Subjects:  []string{s.cfg.RequestSubject},
			MaxMsgs:   int64(s.cfg.MaxMsgs),
			MaxAge:    s.cfg.MaxAge,
			Storage:   nats.FileStorage,
			Retention: nats.WorkQueuePolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
		slog.Info("Created NATS stream", "name", s.cfg.Stream)
		return nil
	}

	for _, subject := range streamInfo.Config.Subjects {
		if subject == s.cfg.RequestSubject {
			slog.Info("NATS stream already exists", "name", s.cfg.Stream, "messages", streamInfo.State.Msgs)
			return nil
		}
	}

	newConfig := streamInfo.Config
	newConfig.Subjects = append(newConfig.Subjects, s.cfg.RequestSubject)
	if _, err := s.js.UpdateStream(&newConfig); err != nil {
		return fmt.Errorf("failed to update stream with new subject: %w", err)
	}
	slog.Info("Updated NATS stream with new subject", "name", s.cfg.Stream, "subject", s.cfg.RequestSubject)
	return nil
}

func (s *NATSService) createConsumer() (*nats.Subscription, error) {
	sub, err := s.js.PullSubscribe(s.cfg.RequestSubject, s.cfg.Durable, nats.ManualAck(), nats.AckWait(s.cfg.AckWait))
	if err != nil {
		return nil, fmt.Errorf("failed to create pull consumer: %w", err)
	}

	slog.Info("Created NATS consumer", "durable", s.cfg.Durable)
	return sub, nil
}

func (s *NATSService) worker(ctx context.Context, consumer *nats.Subscription, workerID string) {
	slog.Info("NATS worker starting", "worker_id", workerID)

	for {
		select {
		case <-ctx.Done():
			slog.Info("NATS worker shutting down", "worker_id", workerID)
			return
		default:
			msgs, err := consumer.Fetch(1, nats.MaxWait(time.Second))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				slog.Error("Failed to fetch messages", "worker_id", workerID, "error", err)
				time.Sleep(time.Second)
				continue
			}

			for _, msg := range msgs {
				s.processMessage(msg, workerID)
			}
		}
	}
}

func (s *NATSService) processMessage(msg *nats.Msg, workerID string) {
	start := time.Now()

	sent, err := s.handleRequest(msg.Data, s.conn.Publish)
	if err != nil && !errors.Is(err, errNoReplyTo) {
		slog.Error("Failed to process risk table request",
			"worker_id", workerID,
			"subject", msg.Subject,
			"error", err)
		// undecodable payloads go back for redelivery
		if nakErr := msg.Nak(); nakErr != nil {
			slog.Error("Failed to nak message", "worker_id", workerID, "error", nakErr)
		}
		return
	}

	if ackErr := msg.Ack(); ackErr != nil {
		slog.Error("Failed to acknowledge message", "worker_id", workerID, "error", ackErr)
	}

	slog.Info("Risk table request served",
		"worker_id", workerID,
		"responses", sent,
		"duration_ms", time.Since(start).Milliseconds())
}

// handleRequest decodes one request and publishes its response stream.
// Non-request messages are skipped. It returns the number of responses sent.
func (s *NATSService) handleRequest(data []byte, publish publishFunc) (int, error) {
	decoded, err := models.Decode(data)
	if err != nil {
		return 0, err
	}

	req, ok := decoded.(*models.RiskTableSnapshotRequest)
	if !ok {
		slog.Warn("Ignoring non-request message", "type", decoded.MessageType())
		return 0, nil
	}
	if req.ReplyTo == "" {
		slog.Warn("Dropping risk table request without reply subject", "req_id", req.RequestID)
		return 0, errNoReplyTo
	}

	slog.Debug("Processing risk table request",
		"req_id", req.RequestID,
		"projection", req.Projection,
		"reply_to", req.ReplyTo)

	sent := 0
	for _, resp := range s.snapshot.Snapshot(req) {
		payload, err := models.Encode(resp)
		if err != nil {
			return sent, err
		}
		if err := publish(req.ReplyTo, payload); err != nil {
			// the request is acked anyway; a partial stream ends in a client timeout
			slog.Error("Failed to publish response",
				"req_id", req.RequestID,
				"reply_subject", req.ReplyTo,
				"error", err)
			return sent, nil
		}
		sent++
	}
	return sent, nil
}

func (s *NATSService) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}

func (s *NATSService) GetConnection() *nats.Conn {
	return s.conn
}
