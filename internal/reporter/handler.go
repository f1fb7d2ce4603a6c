package reporter

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/aigoflow/risk-reporter/internal/models"
)

// RowWriter receives CSV rows. Implemented by export.CSVFile.
type RowWriter interface {
	WriteRow(fields []string) error
	Close() error
}

// snapshotHandler turns the response stream of one request into CSV rows.
type snapshotHandler struct {
	mu         sync.Mutex
	requestID  string
	projection string
	sink       RowWriter
	done       *Signal

	header     []string
	rows       int
	rejections int
	skipped    int
	closed     bool
}

func newSnapshotHandler(requestID, projection string, sink RowWriter) *snapshotHandler {
	return &snapshotHandler{
		requestID:  requestID,
		projection: projection,
		sink:       sink,
		done:       NewSignal(),
	}
}

// onMessage is the transport callback. It never panics or returns an
// error; failures are logged and the stream keeps flowing.
func (h *snapshotHandler) onMessage(msg models.Message) {
	resp, ok := msg.(*models.RiskTableSnapshotResponse)
	if !ok || resp.RequestID != h.requestID {
		return
	}

	slog.Info("Received risk table snapshot",
		"req_id", resp.RequestID,
		"success", resp.Success,
		"is_last", resp.IsLast,
		"fields", len(resp.Conditions)+len(resp.Limits))

	h.mu.Lock()
	h.handle(resp)
	h.mu.Unlock()

	if resp.IsLast {
		h.done.Fire()
	}
}

func (h *snapshotHandler) handle(resp *models.RiskTableSnapshotResponse) {
	if h.closed {
		slog.Warn("Dropping risk table snapshot received after completion", "req_id", resp.RequestID)
		return
	}

	if !resp.Success {
		h.rejections++
		slog.Error("Projection was not found",
			"projection", h.projection,
			"req_id", resp.RequestID,
			"error", resp.ErrorMessage)
		return
	}

	names := resp.FieldNames()
	if h.header == nil {
		// the header is attempted once even if the write fails
		h.header = names
		if err := h.sink.WriteRow(names); err != nil {
			slog.Error("Failed to write CSV header", "req_id", resp.RequestID, "error", err)
		}
	} else if !slices.Equal(h.header, names) {
		h.skipped++
		slog.Error("Skipping risk table row with a different field set",
			"req_id", resp.RequestID,
			"expected", h.header,
			"got", names)
		return
	}

	if err := h.sink.WriteRow(resp.FieldValues()); err != nil {
		slog.Error("Failed to write CSV row", "req_id", resp.RequestID, "error", err)
		return
	}
	h.rows++
}

// close stops row handling and closes the sink. Late messages are dropped.
func (h *snapshotHandler) close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	return h.sink.Close()
}

type handlerStats struct {
	rows       int
	rejections int
	skipped    int
}

func (h *snapshotHandler) stats() handlerStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return handlerStats{rows: h.rows, rejections: h.rejections, skipped: h.skipped}
}
