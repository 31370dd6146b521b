package v1

import (
	"net/http"

	"orderflow-backend/internal/usecase"
	"orderflow-backend/pkg/errs"
	"orderflow-backend/pkg/utils"
)

type ShippingHandler struct {
	shippingUC *usecase.ShippingUsecase
}

func NewShippingHandler(uc *usecase.ShippingUsecase) *ShippingHandler {
	return &ShippingHandler{shippingUC: uc}
}

// GET /api/v1/shipping/checkout-info
func (h *ShippingHandler) GetCheckoutInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.shippingUC.CheckoutInfo(r.Context())
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, info)
}

type calculateShippingReq struct {
	CartTotal     *float64 `json:"cartTotal"`
	PaymentMethod string   `json:"paymentMethod"`
}

// POST /api/v1/shipping/calculate
func (h *ShippingHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateShippingReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	if req.CartTotal == nil {
		utils.WriteDomainError(w, r, errs.NewValidationError("cartTotal", "Cart total is required"))
		return
	}

	quote, err := h.shippingUC.Calculate(r.Context(), *req.CartTotal, req.PaymentMethod)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, quote)
}
