package reporter

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrTimeout = errors.New("timed out waiting for risk table response")

// Signal is a one-shot completion event. Fire may be called any number
// of times from any goroutine; only the first call has an effect.
type Signal struct {
	once sync.Once
	ch   chan struct{}
}

func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{})}
}

func (s *Signal) Fire() {
	s.once.Do(func() { close(s.ch) })
}

func (s *Signal) Done() <-chan struct{} {
	return s.ch
}

func (s *Signal) Fired() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// Wait blocks until the signal fires, the timeout elapses (ErrTimeout)
// or ctx is done (ctx.Err()).
func (s *Signal) Wait(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.ch:
		return nil
	case <-timer.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
