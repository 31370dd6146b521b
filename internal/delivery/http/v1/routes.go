package v1

import (
	"net/http"

	"orderflow-backend/internal/delivery/http/middleware"
)

type Handlers struct {
	Shipping      *ShippingHandler
	AdminShipping *AdminShippingHandler
	Orders        *OrderHandler
	AdminOrders   *AdminOrderHandler
	AdminStats    *AdminStatsHandler
	Notifications *NotificationHandler
	Config        *ConfigHandler
}

// RegisterRoutes mounts the v1 API on mux.
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	authed := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(fn)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(fn))
	}

	// Public
	mux.HandleFunc("GET /api/v1/config/enums", h.Config.GetEnums)
	mux.HandleFunc("GET /api/v1/shipping/checkout-info", h.Shipping.GetCheckoutInfo)
	mux.HandleFunc("POST /api/v1/shipping/calculate", h.Shipping.Calculate)

	// Orders (Protected)
	mux.Handle("POST /api/v1/orders", authed(h.Orders.PlaceOrder))
	mux.Handle("GET /api/v1/orders", authed(h.Orders.ListMyOrders))
	mux.Handle("GET /api/v1/orders/{id}", authed(h.Orders.GetOrder))
	mux.Handle("POST /api/v1/orders/{id}/cancel-request", authed(h.Orders.RequestCancel))
	mux.Handle("POST /api/v1/orders/{id}/return-request", authed(h.Orders.RequestReturn))

	// Notifications (Protected)
	mux.Handle("GET /api/v1/notifications", authed(h.Notifications.List))
	mux.Handle("PATCH /api/v1/notifications/read-all", authed(h.Notifications.MarkAllRead))
	mux.Handle("PATCH /api/v1/notifications/{id}/read", authed(h.Notifications.MarkRead))

	// Admin Shipping
	mux.Handle("GET /api/v1/admin/shipping/settings", admin(h.AdminShipping.GetSettings))
	mux.Handle("PUT /api/v1/admin/shipping/settings", admin(h.AdminShipping.UpdateSettings))
	mux.Handle("GET /api/v1/admin/shipping/slabs", admin(h.AdminShipping.ListSlabs))
	mux.Handle("POST /api/v1/admin/shipping/slabs", admin(h.AdminShipping.CreateSlab))
	mux.Handle("PUT /api/v1/admin/shipping/slabs/{id}", admin(h.AdminShipping.UpdateSlab))
	mux.Handle("DELETE /api/v1/admin/shipping/slabs/{id}", admin(h.AdminShipping.DeleteSlab))

	// Admin Orders
	mux.Handle("GET /api/v1/admin/orders", admin(h.AdminOrders.ListOrders))
	mux.Handle("GET /api/v1/admin/orders/{id}", admin(h.AdminOrders.GetOrder))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/status", admin(h.AdminOrders.UpdateStatus))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/payment-status", admin(h.AdminOrders.UpdatePaymentStatus))
	mux.Handle("GET /api/v1/admin/orders/{id}/history", admin(h.AdminOrders.GetOrderHistory))

	mux.Handle("POST /api/v1/admin/orders/{id}/cancel/approve", admin(h.AdminOrders.ApproveCancel))
	mux.Handle("POST /api/v1/admin/orders/{id}/cancel/reject", admin(h.AdminOrders.RejectCancel))
	mux.Handle("POST /api/v1/admin/orders/{id}/return/approve", admin(h.AdminOrders.ApproveReturn))
	mux.Handle("POST /api/v1/admin/orders/{id}/return/reject", admin(h.AdminOrders.RejectReturn))

	mux.Handle("POST /api/v1/admin/orders/{id}/refund/start", admin(h.AdminOrders.StartRefund))
	mux.Handle("POST /api/v1/admin/orders/{id}/refund/complete", admin(h.AdminOrders.CompleteRefund))
	mux.Handle("POST /api/v1/admin/orders/{id}/refund/reject", admin(h.AdminOrders.RejectRefund))

	// Admin Stats
	mux.Handle("GET /api/v1/admin/stats/dashboard", admin(h.AdminStats.GetDashboard))
	mux.Handle("GET /api/v1/admin/stats/analytics", admin(h.AdminStats.GetAnalytics))
	mux.Handle("GET /api/v1/admin/stats/finance", admin(h.AdminStats.GetFinance))
	mux.Handle("GET /api/v1/admin/stats/finance/transactions", admin(h.AdminStats.ListFinanceTransactions))
	mux.Handle("POST /api/v1/admin/stats/finance/export", admin(h.AdminStats.ExportFinance))

	// Admin Notifications
	mux.Handle("GET /api/v1/admin/notifications", admin(h.Notifications.ListAdmin))
}
