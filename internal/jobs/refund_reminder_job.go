package jobs

import (
	"context"
	"fmt"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/logger"
	"orderflow-backend/pkg/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	DefaultRefundReminderSchedule = "@every 1h"
	DefaultRefundReminderAge      = 48 * time.Hour
)

// RefundReminderJob reports refunds that sit in Pending or Processing longer
// than the configured age. It only reads orders.
type RefundReminderJob struct {
	orders   domain.OrderRepository
	notifier domain.NotificationPort
	metrics  *metrics.Metrics
	schedule string
	age      time.Duration
	now      func() time.Time
	cron     *cron.Cron
	log      zerolog.Logger
}

func NewRefundReminderJob(orders domain.OrderRepository, notifier domain.NotificationPort, m *metrics.Metrics, schedule string, age time.Duration) *RefundReminderJob {
	if schedule == "" {
		schedule = DefaultRefundReminderSchedule
	}
	if age <= 0 {
		age = DefaultRefundReminderAge
	}
	return &RefundReminderJob{
		orders:   orders,
		notifier: notifier,
		metrics:  m,
		schedule: schedule,
		age:      age,
		now:      time.Now,
		cron:     cron.New(),
		log:      logger.Component("refund_reminder_job"),
	}
}

// Run performs one check and returns the number of stale refunds found.
func (j *RefundReminderJob) Run(ctx context.Context) (int64, error) {
	count, err := j.orders.CountStaleRefunds(ctx, j.now().Add(-j.age))
	if err != nil {
		return 0, err
	}
	j.metrics.SetStaleRefunds(count)
	if count == 0 {
		return 0, nil
	}

	n := domain.AdminNotification("Pending Refunds",
		fmt.Sprintf("%d refund(s) have been open for more than %s", count, j.age), "")
	n.Type = domain.NotificationTypeSystem
	if j.notifier != nil {
		if err := j.notifier.Publish(ctx, n); err != nil {
			j.log.Warn().Err(err).Msg("refund reminder delivery failed")
		}
	}
	return count, nil
}

func (j *RefundReminderJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := logger.NewContext(context.Background(), &j.log)
		count, err := j.Run(ctx)
		if err != nil {
			j.log.Error().Err(err).Msg("refund reminder job failed")
			return
		}
		if count > 0 {
			j.log.Info().Int64("stale_refunds", count).Msg("stale refunds reported")
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.log.Info().Str("schedule", j.schedule).Msg("refund reminder job started")
	return nil
}

// Stop waits for a running check to finish.
func (j *RefundReminderJob) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info().Msg("refund reminder job stopped")
}

func (j *RefundReminderJob) WithClock(now func() time.Time) *RefundReminderJob {
	j.now = now
	return j
}
