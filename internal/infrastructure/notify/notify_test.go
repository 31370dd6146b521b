package notify_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/internal/infrastructure/notify"
	"orderflow-backend/internal/repository/memory"
	"orderflow-backend/pkg/metrics"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSink struct{ calls int }

func (f *failingSink) Name() string { return "failing" }

func (f *failingSink) Publish(ctx context.Context, n domain.Notification) error {
	f.calls++
	return errors.New("down")
}

func TestFanoutContinuesPastFailures(t *testing.T) {
	repo := memory.NewNotificationRepository()
	bad := &failingSink{}
	f := notify.NewFanout(metrics.New(prometheus.NewRegistry()), bad, notify.NewStoreSink(repo), notify.NewLogSink())

	err := f.Publish(context.Background(), domain.UserNotification("u1", "Order Placed Successfully", "msg", "o1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing: down")
	assert.Equal(t, 1, bad.calls)

	stored, err := repo.ListForUser(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Order Placed Successfully", stored[0].Title)
}

func TestFanoutSkipsDisabledWebhook(t *testing.T) {
	hook := notify.NewWebhookSink("", "", 0)
	require.Nil(t, hook)

	f := notify.NewFanout(nil, notify.NewLogSink())
	assert.NoError(t, f.Publish(context.Background(), domain.AdminNotification("t", "m", "o1")))
	assert.NoError(t, hook.Publish(context.Background(), domain.AdminNotification("t", "m", "o1")))
}

func TestWebhookSignsPayload(t *testing.T) {
	var (
		gotSig  string
		gotBody []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(notify.SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := notify.NewWebhookSink(srv.URL, "s3cret", time.Second)
	require.NoError(t, sink.Publish(context.Background(), domain.AdminNotification("New Order Placed", "m", "o1")))

	assert.Equal(t, "sha256="+notify.Sign([]byte("s3cret"), gotBody), gotSig)

	var payload struct {
		Event        string              `json:"event"`
		Notification domain.Notification `json:"notification"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "notification.admin", payload.Event)
	assert.Equal(t, "New Order Placed", payload.Notification.Title)
}

func TestWebhookRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := notify.NewWebhookSink(srv.URL, "", time.Second).WithBackoff(time.Millisecond)
	require.NoError(t, sink.Publish(context.Background(), domain.AdminNotification("t", "m", "o1")))
	assert.Equal(t, int32(3), calls.Load())
}

func TestWebhookDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	sink := notify.NewWebhookSink(srv.URL, "", time.Second).WithBackoff(time.Millisecond)
	err := sink.Publish(context.Background(), domain.AdminNotification("t", "m", "o1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
	assert.Equal(t, int32(1), calls.Load())
}

func TestQueuedWebhookDoesNotBlockFanout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	// Default one second backoff: synchronous delivery would take 3s or more.
	queued := notify.NewAsyncSink(notify.NewWebhookSink(srv.URL, "s3cret", 5*time.Second), 8, nil)
	f := notify.NewFanout(nil, notify.NewLogSink(), queued)

	start := time.Now()
	require.NoError(t, f.Publish(context.Background(), domain.AdminNotification("Cancel Request Approved", "m", "o1")))
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start = time.Now()
	assert.ErrorIs(t, queued.Close(ctx), context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	assert.ErrorIs(t, queued.Publish(context.Background(), domain.AdminNotification("t", "m", "o1")), notify.ErrQueueClosed)
}

type blockingSink struct {
	started chan struct{}
	release chan struct{}
	got     atomic.Int32
}

func (b *blockingSink) Name() string { return "blocking" }

func (b *blockingSink) Publish(ctx context.Context, n domain.Notification) error {
	if b.got.Add(1) == 1 {
		close(b.started)
		<-b.release
	}
	return nil
}

func TestQueueDropsWhenFullAndDrainsOnClose(t *testing.T) {
	sink := &blockingSink{started: make(chan struct{}), release: make(chan struct{})}
	queued := notify.NewAsyncSink(sink, 1, nil)
	n := domain.AdminNotification("t", "m", "o1")

	require.NoError(t, queued.Publish(context.Background(), n))
	<-sink.started
	require.NoError(t, queued.Publish(context.Background(), n))
	assert.ErrorIs(t, queued.Publish(context.Background(), n), notify.ErrQueueFull)

	close(sink.release)
	require.NoError(t, queued.Close(context.Background()))
	assert.Equal(t, int32(2), sink.got.Load())
}
