// Package notify delivers order notifications to the inbox store, the log,
// and an optional outbound webhook.
package notify

import (
	"context"
	"errors"
	"fmt"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/metrics"
)

// Sink is one delivery target.
type Sink interface {
	Name() string
	Publish(ctx context.Context, n domain.Notification) error
}

// Fanout publishes to every sink and joins their errors. A failing sink does
// not stop the others.
type Fanout struct {
	sinks   []Sink
	metrics *metrics.Metrics
}

func NewFanout(m *metrics.Metrics, sinks ...Sink) *Fanout {
	f := &Fanout{metrics: m}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

func (f *Fanout) Publish(ctx context.Context, n domain.Notification) error {
	var errList []error
	for _, s := range f.sinks {
		if err := s.Publish(ctx, n); err != nil {
			f.metrics.NotificationFailed(s.Name())
			errList = append(errList, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errList...)
}
