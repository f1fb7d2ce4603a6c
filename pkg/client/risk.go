package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"

	"github.com/aigoflow/risk-reporter/internal/models"
	"github.com/aigoflow/risk-reporter/internal/reporter"
)

// RiskClient provides a client interface for the risk table service
type RiskClient interface {
	// Snapshot stream
	Subscribe(subject string, onMessage func(models.Message)) (reporter.Subscription, error)
	Submit(ctx context.Context, req *models.RiskTableSnapshotRequest) error

	// Discovery
	ListProjections(ctx context.Context) (*models.ProjectionCatalog, error)

	// Lifecycle
	Close() error
}

var _ reporter.Transport = (*NATSRiskClient)(nil)

type Options struct {
	NatsURL          string
	ClientID         string
	RequestSubject   string
	DiscoverySubject string
}

// NATSRiskClient implements RiskClient using NATS
type NATSRiskClient struct {
	conn    *nats.Conn
	opts    Options
	timeout time.Duration
}

// NewNATSClient creates a new NATS-based risk table client
func NewNATSClient(opts Options) (*NATSRiskClient, error) {
	if opts.ClientID == "" {
		opts.ClientID = "riskreport"
	}

	conn, err := nats.Connect(opts.NatsURL, nats.Name(opts.ClientID))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSRiskClient{
		conn:    conn,
		opts:    opts,
		timeout: 5 * time.Second,
	}, nil
}

// Subscribe decodes every message on subject and hands it to onMessage.
// Payloads that are not valid envelopes are dropped with a warning.
func (c *NATSRiskClient) Subscribe(subject string, onMessage func(models.Message)) (reporter.Subscription, error) {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		decoded, err := models.Decode(msg.Data)
		if err != nil {
			slog.Warn("Dropping undecodable message",
				"subject", msg.Subject,
				"size", len(msg.Data),
				"error", err)
			return
		}
		onMessage(decoded)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to reply: %w", err)
	}
	return sub, nil
}

// Submit publishes a snapshot request on the request subject
func (c *NATSRiskClient) Submit(ctx context.Context, req *models.RiskTableSnapshotRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := models.Encode(req)
	if err != nil {
		return err
	}

	slog.Debug("Publishing risk table request",
		"subject", c.opts.RequestSubject,
		"req_id", req.RequestID,
		"reply_to", req.ReplyTo)

	if err := c.conn.Publish(c.opts.RequestSubject, data); err != nil {
		return fmt.Errorf("failed to publish request: %w", err)
	}
	if err := c.conn.FlushTimeout(c.timeout); err != nil {
		return fmt.Errorf("failed to flush request: %w", err)
	}
	return nil
}

// ListProjections asks a responder which projections it serves
func (c *NATSRiskClient) ListProjections(ctx context.Context) (*models.ProjectionCatalog, error) {
	reqID := ulid.Make().String()
	replySubject := fmt.Sprintf("%s.reply.%s.%s", c.opts.DiscoverySubject, c.opts.ClientID, reqID)

	replyChan := make(chan *nats.Msg, 1)
	sub, err := c.conn.ChanSubscribe(replySubject, replyChan)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to discovery reply: %w", err)
	}
	defer sub.Unsubscribe()

	if err := c.conn.PublishRequest(c.opts.DiscoverySubject, replySubject, nil); err != nil {
		return nil, fmt.Errorf("failed to publish discovery request: %w", err)
	}

	select {
	case msg := <-replyChan:
		var catalog models.ProjectionCatalog
		if err := json.Unmarshal(msg.Data, &catalog); err != nil {
			return nil, fmt.Errorf("failed to parse discovery response: %w", err)
		}
		return &catalog, nil

	case <-time.After(c.timeout):
		return nil, fmt.Errorf("discovery timeout after %v", c.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close closes the NATS connection
func (c *NATSRiskClient) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}

// SetTimeout configures flush and discovery timeouts
func (c *NATSRiskClient) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}
