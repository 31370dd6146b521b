package v1

import (
	"errors"
	"net/http"
	"strings"

	"orderflow-backend/internal/domain"
	"orderflow-backend/internal/usecase"
	"orderflow-backend/pkg/errs"
	"orderflow-backend/pkg/utils"
)

// AdminOrderHandler serves the admin order queue, lifecycle, workflow and
// refund endpoints.
type AdminOrderHandler struct {
	orderUC    *usecase.OrderUsecase
	workflowUC *usecase.WorkflowUsecase
	refundUC   *usecase.RefundUsecase
}

func NewAdminOrderHandler(orderUC *usecase.OrderUsecase, workflowUC *usecase.WorkflowUsecase, refundUC *usecase.RefundUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{
		orderUC:    orderUC,
		workflowUC: workflowUC,
		refundUC:   refundUC,
	}
}

// GET /api/v1/admin/orders?status=&payment_status=&search=&view=&page=&limit=
func (h *AdminOrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.OrderFilter{
		Page:          utils.QueryInt(r, "page", 1, 1, 0),
		Limit:         utils.QueryInt(r, "limit", 20, 1, 100),
		Status:        domain.NormalizeOrderStatus(q.Get("status")),
		PaymentStatus: domain.PaymentStatus(strings.TrimSpace(q.Get("payment_status"))),
		View:          domain.OrderView(strings.TrimSpace(q.Get("view"))),
		Search:        strings.TrimSpace(q.Get("search")),
	}

	orders, pagination, err := h.orderUC.ListOrders(r.Context(), filter)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"orders":     orders,
		"pagination": pagination,
	})
}

func (h *AdminOrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	order, err := h.orderUC.GetOrder(r.Context(), user, r.PathValue("id"))
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

func (h *AdminOrderHandler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.orderUC.GetOrderHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	if history == nil {
		history = []domain.OrderHistory{}
	}
	utils.WriteJSON(w, http.StatusOK, history)
}

type updateStatusReq struct {
	Status string `json:"status"`
}

// PATCH /api/v1/admin/orders/{id}/status
func (h *AdminOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req updateStatusReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		utils.WriteDomainError(w, r, errs.NewValidationError("status", "Status is required"))
		return
	}

	order, err := h.orderUC.UpdateOrderStatus(r.Context(), user.ID, r.PathValue("id"), req.Status)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

type updatePaymentStatusReq struct {
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	TransactionID string               `json:"transactionId"`
}

// PATCH /api/v1/admin/orders/{id}/payment-status
func (h *AdminOrderHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req updatePaymentStatusReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	if !req.PaymentStatus.IsValid() {
		utils.WriteDomainError(w, r, errs.NewValidationError("paymentStatus", "Payment status must be one of Paid, Pending, Failed"))
		return
	}

	order, err := h.orderUC.UpdatePaymentStatus(r.Context(), user.ID, r.PathValue("id"), req.PaymentStatus, req.TransactionID)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

// --- Cancel / return decisions ---

type rejectReq struct {
	AdminResponse string `json:"adminResponse"`
}

// decodeOptional decodes a body that may be empty, chunked or not.
func decodeOptional(r *http.Request, dst interface{}) error {
	if err := utils.DecodeJSON(r, dst); !errors.Is(err, utils.ErrEmptyBody) {
		return err
	}
	return nil
}

// orderAction adapts an admin transition to a handler that answers with the
// updated order.
func orderAction(fn func(r *http.Request, actorID, orderID string) (*domain.Order, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		order, err := fn(r, user.ID, r.PathValue("id"))
		if err != nil {
			utils.WriteDomainError(w, r, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, order)
	}
}

func (h *AdminOrderHandler) ApproveCancel(w http.ResponseWriter, r *http.Request) {
	orderAction(func(r *http.Request, actorID, orderID string) (*domain.Order, error) {
		return h.workflowUC.ApproveCancel(r.Context(), actorID, orderID)
	})(w, r)
}

func (h *AdminOrderHandler) RejectCancel(w http.ResponseWriter, r *http.Request) {
	orderAction(func(r *http.Request, actorID, orderID string) (*domain.Order, error) {
		var req rejectReq
		if err := decodeOptional(r, &req); err != nil {
			return nil, err
		}
		return h.workflowUC.RejectCancel(r.Context(), actorID, orderID, req.AdminResponse)
	})(w, r)
}

func (h *AdminOrderHandler) ApproveReturn(w http.ResponseWriter, r *http.Request) {
	orderAction(func(r *http.Request, actorID, orderID string) (*domain.Order, error) {
		return h.workflowUC.ApproveReturn(r.Context(), actorID, orderID)
	})(w, r)
}

func (h *AdminOrderHandler) RejectReturn(w http.ResponseWriter, r *http.Request) {
	orderAction(func(r *http.Request, actorID, orderID string) (*domain.Order, error) {
		var req rejectReq
		if err := decodeOptional(r, &req); err != nil {
			return nil, err
		}
		return h.workflowUC.RejectReturn(r.Context(), actorID, orderID, req.AdminResponse)
	})(w, r)
}

// --- Refunds ---

type completeRefundReq struct {
	TransactionID string `json:"transactionId"`
}

type rejectRefundReq struct {
	AdminNote string `json:"adminNote"`
}

func (h *AdminOrderHandler) StartRefund(w http.ResponseWriter, r *http.Request) {
	orderAction(func(r *http.Request, actorID, orderID string) (*domain.Order, error) {
		return h.refundUC.StartRefund(r.Context(), actorID, orderID)
	})(w, r)
}

func (h *AdminOrderHandler) CompleteRefund(w http.ResponseWriter, r *http.Request) {
	orderAction(func(r *http.Request, actorID, orderID string) (*domain.Order, error) {
		var req completeRefundReq
		if err := decodeOptional(r, &req); err != nil {
			return nil, err
		}
		return h.refundUC.CompleteRefund(r.Context(), actorID, orderID, req.TransactionID)
	})(w, r)
}

func (h *AdminOrderHandler) RejectRefund(w http.ResponseWriter, r *http.Request) {
	orderAction(func(r *http.Request, actorID, orderID string) (*domain.Order, error) {
		var req rejectRefundReq
		if err := decodeOptional(r, &req); err != nil {
			return nil, err
		}
		return h.refundUC.RejectRefund(r.Context(), actorID, orderID, req.AdminNote)
	})(w, r)
}
