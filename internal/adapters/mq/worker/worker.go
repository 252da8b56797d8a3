// Package worker drains the event queue into a sink.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/fitquest/internal/adapters/mq/queue"
	"github.com/okian/fitquest/pkg/logger"
	"github.com/okian/fitquest/pkg/metrics"
)

const (
	publishTimeout      = 10 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Event is what workers read off the queue.
type Event = queue.Event

// Sink delivers an event downstream.
type Sink interface {
	Name() string
	Publish(ctx context.Context, e Event) error
}

// Queue is the consumer side of the event queue.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker publishes queued events.
type Worker interface {
	// Run blocks until the queue is drained and closed, ctx is cancelled or
	// Shutdown is called.
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker is one publishing loop.
type InMemoryWorker struct {
	queue Queue
	sink  Sink
	name  string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker reading q and writing to sink.
func NewInMemoryWorker(q Queue, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		sink:     sink,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	// Cancelled on return so the queue stops relaying to a stopped worker.
	dctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := w.queue.Dequeue(dctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := w.process(ctx, e); err != nil {
				w.logger.Error(ctx, "publish failed",
					logger.String("eventID", e.EventID),
					logger.String("userID", e.UserID),
					logger.Error(err),
				)
			}
		}
	}
}

func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam: events travel by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := w.sink.Publish(pctx, e); err != nil {
		metrics.RecordEventPublishError(w.sink.Name())
		metrics.RecordErrorByComponent("worker", "publish_error")
		return fmt.Errorf("publish %s: %w", e.EventID, err)
	}
	metrics.RecordEventPublished(w.sink.Name())
	return nil
}

// Pool runs several workers over one queue.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	published atomic.Int64
	logger    logger.Logger
}

// NewPool creates workerCount workers. A count below 1 uses runtime.NumCPU.
func NewPool(workerCount int, q Queue, sink Sink) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	counted := &countingSink{Sink: sink, n: &p.published}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, counted, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Published returns how many events were delivered successfully.
func (p *Pool) Published() int64 { return p.published.Load() }

// Start launches every worker. The workers stop once the queue is closed
// and drained, or when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Run starts the pool on a context detached from ctx and blocks until ctx
// is done, then drains the queue through Shutdown.
func (p *Pool) Run(ctx context.Context) error {
	p.Start(context.WithoutCancel(ctx))
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), poolShutdownTimeout)
	defer cancel()
	return p.Shutdown(shutdownCtx)
}

// Shutdown closes the queue, lets workers drain what is left and waits for
// them until ctx expires; workers still busy after that are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			close(w.shutdown)
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", ctx.Err())
	}
	p.logger.Info(ctx, "worker pool stopped", logger.Int64("published", p.published.Load()))
	return nil
}

type countingSink struct {
	Sink
	n *atomic.Int64
}

func (c *countingSink) Publish(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam: events travel by value
	if err := c.Sink.Publish(ctx, e); err != nil {
		return err
	}
	c.n.Add(1)
	return nil
}
