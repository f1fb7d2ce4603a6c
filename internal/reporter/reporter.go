// Package reporter requests a risk table snapshot and writes the
// streamed response rows to a CSV file.
package reporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/aigoflow/risk-reporter/internal/export"
	"github.com/aigoflow/risk-reporter/internal/models"
	"github.com/aigoflow/risk-reporter/internal/repository"
)

const requestIDPrefix = "RTR#"

// Subscription is an active reply subscription
type Subscription interface {
	Unsubscribe() error
}

// Transport is the request/response facility the reporter talks to
type Transport interface {
	// Subscribe delivers every message arriving on subject to onMessage.
	Subscribe(subject string, onMessage func(models.Message)) (Subscription, error)
	// Submit publishes a snapshot request.
	Submit(ctx context.Context, req *models.RiskTableSnapshotRequest) error
}

type Options struct {
	Projection     string
	ClientID       string
	ResponsePrefix string
	Timeout        time.Duration
}

// Result summarizes one run
type Result struct {
	RequestID   string
	Projection  string
	OutputPath  string
	Status      string
	RowsWritten int
	Rejections  int
	Skipped     int
	Duration    time.Duration
}

type Reporter struct {
	transport  Transport
	repo       repository.Repository
	opts       Options
	createSink func(path string) (RowWriter, error)
}

// New creates a reporter. repo may be nil to disable the run journal.
func New(transport Transport, repo repository.Repository, opts Options) *Reporter {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	return &Reporter{
		transport: transport,
		repo:      repo,
		opts:      opts,
		createSink: func(path string) (RowWriter, error) {
			return export.Create(path)
		},
	}
}

// NewRequestID returns a request identifier unique to this run. The ULID
// part starts with the current time in milliseconds.
func NewRequestID() string {
	return requestIDPrefix + ulid.Make().String()
}

// ReplySubject is the subject responses for requestID are delivered on.
func (r *Reporter) ReplySubject(requestID string) string {
	return fmt.Sprintf("%s.%s.%s", r.opts.ResponsePrefix, r.opts.ClientID, requestID)
}

// Run sends one snapshot request and writes the response stream to
// outputPath. The file is closed on every path. A timeout or cancelled
// ctx is returned as an error after cleanup.
func (r *Reporter) Run(ctx context.Context, outputPath string) (*Result, error) {
	start := time.Now()
	requestID := NewRequestID()
	result := &Result{
		RequestID:  requestID,
		Projection: r.opts.Projection,
		OutputPath: outputPath,
	}

	sink, err := r.createSink(outputPath)
	if err != nil {
		return r.finish(result, start, nil, err)
	}
	h := newSnapshotHandler(requestID, r.opts.Projection, sink)

	replyTo := r.ReplySubject(requestID)
	sub, err := r.transport.Subscribe(replyTo, h.onMessage)
	if err != nil {
		return r.finish(result, start, h, fmt.Errorf("failed to subscribe to %s: %w", replyTo, err))
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			slog.Warn("Failed to unsubscribe from reply subject", "subject", replyTo, "error", err)
		}
	}()

	req := &models.RiskTableSnapshotRequest{
		RequestID:  requestID,
		Timestamp:  time.Now().UnixMilli(),
		Projection: r.opts.Projection,
		ReplyTo:    replyTo,
	}
	if err := r.transport.Submit(ctx, req); err != nil {
		return r.finish(result, start, h, fmt.Errorf("failed to submit risk table request: %w", err))
	}
	slog.Info("Sent risk table request",
		"req_id", req.RequestID,
		"projection", req.Projection,
		"reply_to", replyTo)

	if err := h.done.Wait(ctx, r.opts.Timeout); err != nil {
		if errors.Is(err, ErrTimeout) {
			slog.Error("Timeout waiting for risk table response",
				"req_id", requestID,
				"timeout", r.opts.Timeout.String())
		} else {
			slog.Error("Risk table request cancelled", "req_id", requestID, "error", err)
		}
		return r.finish(result, start, h, err)
	}

	slog.Info("Success", "req_id", requestID)
	return r.finish(result, start, h, nil)
}

// finish closes the sink, fills in the result and journals the run.
func (r *Reporter) finish(result *Result, start time.Time, h *snapshotHandler, runErr error) (*Result, error) {
	if h != nil {
		if err := h.close(); err != nil {
			slog.Error("Failed to close CSV file", "path", result.OutputPath, "error", err)
		}
		st := h.stats()
		result.RowsWritten = st.rows
		result.Rejections = st.rejections
		result.Skipped = st.skipped
	}
	result.Duration = time.Since(start)

	switch {
	case runErr == nil:
		result.Status = models.RunCompleted
	case errors.Is(runErr, ErrTimeout):
		result.Status = models.RunTimeout
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		result.Status = models.RunCancelled
	default:
		result.Status = models.RunFailed
	}

	r.journal(result, start, runErr)
	return result, runErr
}

func (r *Reporter) journal(result *Result, start time.Time, runErr error) {
	if r.repo == nil {
		return
	}

	errStr := ""
	if runErr != nil {
		errStr = runErr.Error()
	}
	// the run context may already be cancelled
	ctx := context.Background()
	if err := r.repo.Run().LogRun(ctx, &models.RunLog{
		Timestamp:   start,
		RequestID:   result.RequestID,
		Projection:  result.Projection,
		OutputPath:  result.OutputPath,
		Status:      result.Status,
		RowsWritten: result.RowsWritten,
		Rejections:  result.Rejections,
		DurationMs:  float64(result.Duration.Milliseconds()),
		Error:       errStr,
	}); err != nil {
		slog.Warn("Failed to journal run", "req_id", result.RequestID, "error", err)
	}
}
