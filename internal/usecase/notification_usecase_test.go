package usecase_test

import (
	"context"
	"testing"

	"orderflow-backend/internal/domain"
	"orderflow-backend/internal/infrastructure/notify"
	"orderflow-backend/internal/repository/memory"
	"orderflow-backend/internal/usecase"
	"orderflow-backend/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationInbox(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewNotificationRepository()
	port := notify.NewFanout(nil, notify.NewStoreSink(repo))

	require.NoError(t, port.Publish(ctx, domain.UserNotification("u1", "Order Placed Successfully", "placed", "o1")))
	require.NoError(t, port.Publish(ctx, domain.UserNotification("u1", "Order Status Update", "shipped", "o1")))
	require.NoError(t, port.Publish(ctx, domain.UserNotification("u2", "Order Placed Successfully", "placed", "o2")))
	require.NoError(t, port.Publish(ctx, domain.AdminNotification("New Order Placed", "o1", "o1")))

	uc := usecase.NewNotificationUsecase(repo)

	inbox, err := uc.Inbox(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, inbox.Notifications, 2)
	assert.Equal(t, int64(2), inbox.UnreadCount)

	require.NoError(t, uc.MarkRead(ctx, "u1", inbox.Notifications[0].ID))
	err = uc.MarkRead(ctx, "u2", inbox.Notifications[1].ID)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	n, err := uc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	inbox, err = uc.Inbox(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Zero(t, inbox.UnreadCount)

	admin, err := uc.ListAdmin(ctx, 0)
	require.NoError(t, err)
	require.Len(t, admin, 1)
	assert.Equal(t, "New Order Placed", admin[0].Title)
}
