package notify

import (
	"context"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/logger"
)

type LogSink struct{}

func NewLogSink() *LogSink { return &LogSink{} }

func (LogSink) Name() string { return "log" }

func (LogSink) Publish(ctx context.Context, n domain.Notification) error {
	ev := logger.WithContext(ctx).Info().
		Str("scope", string(n.Scope)).
		Str("type", string(n.Type)).
		Str("title", n.Title).
		Str("reference_id", n.ReferenceID)
	if n.UserID != nil {
		ev = ev.Str("user_id", *n.UserID)
	}
	ev.Msg("notification")
	return nil
}
