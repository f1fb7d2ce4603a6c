package reporter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignalFireIsIdempotent(t *testing.T) {
	s := NewSignal()
	assert.False(t, s.Fired())

	s.Fire()
	s.Fire()

	assert.True(t, s.Fired())
	assert.NoError(t, s.Wait(context.Background(), time.Second))
}

func TestSignalReleasesAllWaiters(t *testing.T) {
	s := NewSignal()

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Wait(context.Background(), 5*time.Second)
		}()
	}

	// concurrent fires from several goroutines
	for i := 0; i < 5; i++ {
		go s.Fire()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestSignalTimeout(t *testing.T) {
	s := NewSignal()
	assert.ErrorIs(t, s.Wait(context.Background(), 10*time.Millisecond), ErrTimeout)
}

func TestSignalContextCancel(t *testing.T) {
	s := NewSignal()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Wait(ctx, time.Minute), context.Canceled)
}
