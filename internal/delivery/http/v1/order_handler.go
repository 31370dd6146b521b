package v1

import (
	"net/http"

	"orderflow-backend/internal/delivery/http/middleware"
	"orderflow-backend/internal/domain"
	"orderflow-backend/internal/usecase"
	"orderflow-backend/pkg/errs"
	"orderflow-backend/pkg/utils"
)

type OrderHandler struct {
	orderUC    *usecase.OrderUsecase
	workflowUC *usecase.WorkflowUsecase
}

func NewOrderHandler(orderUC *usecase.OrderUsecase, workflowUC *usecase.WorkflowUsecase) *OrderHandler {
	return &OrderHandler{
		orderUC:    orderUC,
		workflowUC: workflowUC,
	}
}

// currentUser returns the authenticated caller or writes 401.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return user, true
}

type placeOrderItemReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color"`
}

type placeOrderReq struct {
	Items           []placeOrderItemReq    `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

// POST /api/v1/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req placeOrderReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}

	in := usecase.PlaceOrderInput{
		Items:           make([]usecase.PlaceOrderItem, 0, len(req.Items)),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, usecase.PlaceOrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Color:     it.Color,
		})
	}

	order, err := h.orderUC.PlaceOrder(r.Context(), user.ID, in)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, order)
}

// GET /api/v1/orders
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	orders, err := h.orderUC.ListMyOrders(r.Context(), user.ID)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

// GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
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

type cancelRequestReq struct {
	Reason        string                `json:"reason"`
	RefundDetails *domain.RefundDetails `json:"refundDetails"`
}

// POST /api/v1/orders/{id}/cancel-request
func (h *OrderHandler) RequestCancel(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req cancelRequestReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}

	order, err := h.workflowUC.RequestCancel(r.Context(), user.ID, r.PathValue("id"), req.Reason, req.RefundDetails)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

type returnRequestReq struct {
	Reason        domain.ReturnReason   `json:"reason"`
	RefundDetails *domain.RefundDetails `json:"refundDetails"`
}

// POST /api/v1/orders/{id}/return-request
func (h *OrderHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req returnRequestReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	if req.Reason == "" {
		utils.WriteDomainError(w, r, errs.NewValidationError("reason", "Return reason is required"))
		return
	}

	order, err := h.workflowUC.RequestReturn(r.Context(), user.ID, r.PathValue("id"), req.Reason, req.RefundDetails)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}
