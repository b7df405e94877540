package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/kafka"
	"github.com/stretchr/testify/assert"
)

type fakeSink struct {
	mu      sync.Mutex
	batches [][]kafka.Event
	err     error
}

func (f *fakeSink) PublishBatch(_ context.Context, events []kafka.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, events)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func TestFlushDeliversBuffer(t *testing.T) {
	sink := &fakeSink{}
	bc := NewBatchCollector(sink, 10, time.Hour)

	bc.Track("suggest", "an")
	bc.Track("suggest", "ana")
	assert.Equal(t, 2, bc.BufferLen())

	bc.Flush(context.Background())
	assert.Zero(t, bc.BufferLen())
	assert.Equal(t, 2, sink.count())
	assert.Equal(t, int64(2), bc.Flushed())
}

func TestFullBatchFlushesInBackground(t *testing.T) {
	sink := &fakeSink{}
	bc := NewBatchCollector(sink, 2, time.Hour)

	bc.Track("suggest", "an")
	bc.Track("suggest", "ana")

	assert.Eventually(t, func() bool { return sink.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestFailedFlushRequeuesAndCaps(t *testing.T) {
	sink := &fakeSink{err: errors.New("broker down")}
	bc := NewBatchCollector(sink, 1, time.Hour)

	bc.mu.Lock()
	for i := 0; i < 5; i++ {
		bc.buffer = append(bc.buffer, kafka.Event{Key: "suggest", Value: i})
	}
	bc.mu.Unlock()

	bc.Flush(context.Background())
	assert.Equal(t, 3, bc.BufferLen())
	assert.Equal(t, int64(2), bc.Dropped())
	assert.Zero(t, bc.Flushed())
}

func TestStartFlushesOnShutdown(t *testing.T) {
	sink := &fakeSink{}
	bc := NewBatchCollector(sink, 100, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	bc.Start(ctx)

	bc.Track("suggest", "excel")
	cancel()
	bc.Close()

	assert.Equal(t, 1, sink.count())
}
