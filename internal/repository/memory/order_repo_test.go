package memory_test

import (
	"context"
	"testing"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/internal/repository/memory"
	"orderflow-backend/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, repo *memory.OrderRepository, number string, createdAt time.Time) *domain.Order {
	t.Helper()
	o := domain.NewOrder("", number, "u1", nil, domain.ShippingAddress{}, "COD",
		domain.ShippingQuote{Subtotal: 100, GrandTotal: 100}, createdAt)
	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

func TestOrderRepositoryUpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	o := seedOrder(t, repo, "ORD-1", time.Now())

	first, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)

	first.Status = domain.OrderStatusProcessing
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	second.Status = domain.OrderStatusShipped
	err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)

	stored, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, stored.Status)
}

func TestOrderRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	o := seedOrder(t, repo, "ORD-1", time.Now())

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	got.Status = domain.OrderStatusDelivered

	again, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, again.Status)
}

func TestOrderRepositoryNotFound(t *testing.T) {
	_, err := memory.NewOrderRepository().GetByID(context.Background(), "missing")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestOrderRepositoryListViews(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	base := time.Now()

	a := seedOrder(t, repo, "ORD-A", base)
	seedOrder(t, repo, "ORD-B", base.Add(time.Minute))
	c := seedOrder(t, repo, "ORD-C", base.Add(2*time.Minute))

	require.NoError(t, a.RequestCancel("dup", nil, base))
	require.NoError(t, repo.Update(ctx, a))
	c.Refund.Status = domain.RefundStatusProcessing
	require.NoError(t, repo.Update(ctx, c))

	all, total, err := repo.List(ctx, domain.OrderFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 2)
	assert.Equal(t, "ORD-C", all[0].OrderNumber)

	cancels, _, err := repo.List(ctx, domain.OrderFilter{View: domain.OrderViewCancelRequests})
	require.NoError(t, err)
	require.Len(t, cancels, 1)
	assert.Equal(t, "ORD-A", cancels[0].OrderNumber)

	refunds, _, err := repo.List(ctx, domain.OrderFilter{View: domain.OrderViewPendingRefunds})
	require.NoError(t, err)
	require.Len(t, refunds, 1)
	assert.Equal(t, "ORD-C", refunds[0].OrderNumber)

	searched, _, err := repo.List(ctx, domain.OrderFilter{Search: "ord-b"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
}
