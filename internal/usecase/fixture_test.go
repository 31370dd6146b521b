package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/internal/infrastructure/cache"
	"orderflow-backend/internal/repository/memory"
	"orderflow-backend/internal/usecase"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (r *recordingNotifier) Publish(ctx context.Context, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		out = append(out, n.Title)
	}
	return out
}

func (r *recordingNotifier) last() domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent[len(r.sent)-1]
}

func (r *recordingNotifier) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

type fixture struct {
	now      time.Time
	orders   *memory.OrderRepository
	products *memory.ProductRepository
	shipRepo *memory.ShippingRepository
	notes    *recordingNotifier

	shipping *usecase.ShippingUsecase
	order    *usecase.OrderUsecase
	workflow *usecase.WorkflowUsecase
	refund   *usecase.RefundUsecase
}

// newFixture seeds two products and the slabs 0-499 (50) and 500+ (0), with
// COD enabled at a 40 surcharge.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		now:    t0,
		orders: memory.NewOrderRepository(),
		products: memory.NewProductRepository(
			domain.Product{ID: "p1", Name: "Widget", BasePrice: 150, Stock: 10, IsActive: true, Images: []string{"w.png"}},
			domain.Product{ID: "p2", Name: "Gadget", BasePrice: 1000, SalePrice: ptr(800.0), Stock: 5, IsActive: true},
			domain.Product{ID: "p3", Name: "Retired", BasePrice: 10, Stock: 5, IsActive: false},
		),
		shipRepo: memory.NewShippingRepository(),
		notes:    &recordingNotifier{},
	}
	clock := func() time.Time { return f.now }
	tx := memory.NewTxManager()

	f.shipping = usecase.NewShippingUsecase(f.shipRepo, tx, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, nil)
	f.order = usecase.NewOrderUsecase(f.orders, f.products, f.shipping, tx, f.notes, nil, 0).WithClock(clock)
	f.workflow = usecase.NewWorkflowUsecase(f.orders, f.products, tx, f.notes, nil, usecase.DefaultReturnWindow).WithClock(clock)
	f.refund = usecase.NewRefundUsecase(f.orders, f.products, tx, f.notes, nil).WithClock(clock)

	require.NoError(t, f.shipping.EnsureSettings(ctx))
	_, err := f.shipping.UpdateSettings(ctx, usecase.SettingsPatch{CODEnabled: ptr(true), CODCharge: ptr(40.0)})
	require.NoError(t, err)
	_, err = f.shipping.CreateSlab(ctx, usecase.SlabInput{MinAmount: 0, MaxAmount: ptr(499.0), ShippingCharge: 50})
	require.NoError(t, err)
	_, err = f.shipping.CreateSlab(ctx, usecase.SlabInput{MinAmount: 500, ShippingCharge: 0})
	require.NoError(t, err)
	return f
}

func testAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		Name: "Asha", Phone: "9999999999", AddressLine1: "1 Main Road",
		City: "Pune", State: "MH", Country: "IN", Zip: "411001",
	}
}

// place creates an order for u1 with two Widgets (subtotal 300, grand 350).
func (f *fixture) place(t *testing.T, method string) *domain.Order {
	t.Helper()
	o, err := f.order.PlaceOrder(context.Background(), "u1", usecase.PlaceOrderInput{
		Items:           []usecase.PlaceOrderItem{{ProductID: "p1", Quantity: 2}},
		ShippingAddress: testAddress(),
		PaymentMethod:   method,
	})
	require.NoError(t, err)
	f.notes.reset()
	return o
}

func (f *fixture) placePaid(t *testing.T) *domain.Order {
	t.Helper()
	o := f.place(t, "ONLINE")
	_, err := f.order.UpdatePaymentStatus(context.Background(), "admin", o.ID, domain.PaymentStatusPaid, "pay-1")
	require.NoError(t, err)
	f.notes.reset()
	return o
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	p, err := f.products.GetProductByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) restockLogs(t *testing.T, productID, reason string) int {
	t.Helper()
	logs, _, err := f.products.GetInventoryLogs(context.Background(), productID, 100, 0)
	require.NoError(t, err)
	n := 0
	for _, l := range logs {
		if l.Reason == reason {
			n++
		}
	}
	return n
}
