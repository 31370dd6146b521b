package notify

import (
	"context"
	"errors"
	"sync"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/logger"
	"orderflow-backend/pkg/metrics"
)

var (
	ErrQueueFull   = errors.New("notification queue full")
	ErrQueueClosed = errors.New("notification queue closed")
)

// AsyncSink hands notifications to a single background worker that delivers
// them to the wrapped sink. Publish never waits on delivery; a full queue
// drops the notification.
type AsyncSink struct {
	sink    Sink
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	queue  chan domain.Notification

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewAsyncSink(sink Sink, queueSize int, m *metrics.Metrics) *AsyncSink {
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &AsyncSink{
		sink:    sink,
		metrics: m,
		queue:   make(chan domain.Notification, queueSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *AsyncSink) Name() string { return s.sink.Name() }

// Publish enqueues n. The caller's context is not used for delivery, so a
// finished request does not abort it.
func (s *AsyncSink) Publish(_ context.Context, n domain.Notification) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrQueueClosed
	}
	select {
	case s.queue <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *AsyncSink) run() {
	defer close(s.done)
	log := logger.Component("notify_" + s.sink.Name())
	for n := range s.queue {
		if err := s.sink.Publish(s.ctx, n); err != nil {
			s.metrics.NotificationFailed(s.sink.Name())
			log.Warn().
				Err(err).
				Str("title", n.Title).
				Str("reference_id", n.ReferenceID).
				Msg("async notification delivery failed")
		}
	}
}

// Close stops accepting notifications and drains the queue. When ctx ends
// first, in-flight deliveries are cancelled and the rest are dropped.
func (s *AsyncSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-s.done
		return ctx.Err()
	}
}
