package v1

import (
	"net/http"

	"orderflow-backend/internal/domain"
	"orderflow-backend/internal/usecase"
	"orderflow-backend/pkg/errs"
	"orderflow-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type AdminShippingHandler struct {
	shippingUC *usecase.ShippingUsecase
}

func NewAdminShippingHandler(uc *usecase.ShippingUsecase) *AdminShippingHandler {
	return &AdminShippingHandler{shippingUC: uc}
}

func (h *AdminShippingHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.shippingUC.GetSettings(r.Context())
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, settings)
}

type updateSettingsReq struct {
	FreeShippingEnabled *bool    `json:"freeShippingEnabled"`
	CODEnabled          *bool    `json:"codEnabled"`
	CODCharge           *float64 `json:"codCharge"`
}

func (h *AdminShippingHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}

	settings, err := h.shippingUC.UpdateSettings(r.Context(), usecase.SettingsPatch{
		FreeShippingEnabled: req.FreeShippingEnabled,
		CODEnabled:          req.CODEnabled,
		CODCharge:           req.CODCharge,
	})
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, settings)
}

func (h *AdminShippingHandler) ListSlabs(w http.ResponseWriter, r *http.Request) {
	slabs, err := h.shippingUC.ListSlabs(r.Context())
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	if slabs == nil {
		slabs = []domain.ShippingSlab{}
	}
	utils.WriteJSON(w, http.StatusOK, slabs)
}

type slabReq struct {
	MinAmount      *float64           `json:"minAmount"`
	MaxAmount      *float64           `json:"maxAmount"`
	ShippingCharge *float64           `json:"shippingCharge"`
	Status         *domain.SlabStatus `json:"status"`
}

// decodeSlabReq also reports whether maxAmount was sent as an explicit null,
// which makes the slab unbounded. An absent key leaves the bound unchanged.
func decodeSlabReq(r *http.Request) (slabReq, bool, error) {
	var fields map[string]any
	if err := utils.DecodeJSON(r, &fields); err != nil {
		return slabReq{}, false, err
	}
	v, present := fields["maxAmount"]
	clearMax := present && v == nil

	buf, err := json.Marshal(fields)
	if err != nil {
		return slabReq{}, false, errs.NewValidationErrorWithCause("body", "Invalid request body", err)
	}
	var req slabReq
	if err := json.Unmarshal(buf, &req); err != nil {
		return slabReq{}, false, errs.NewValidationErrorWithCause("body", "Invalid slab fields", err)
	}
	return req, clearMax, nil
}

func (h *AdminShippingHandler) CreateSlab(w http.ResponseWriter, r *http.Request) {
	req, _, err := decodeSlabReq(r)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	if req.MinAmount == nil {
		utils.WriteDomainError(w, r, errs.NewValidationError("minAmount", "Min amount is required"))
		return
	}
	if req.ShippingCharge == nil {
		utils.WriteDomainError(w, r, errs.NewValidationError("shippingCharge", "Shipping charge is required"))
		return
	}
	in := usecase.SlabInput{
		MinAmount:      *req.MinAmount,
		MaxAmount:      req.MaxAmount,
		ShippingCharge: *req.ShippingCharge,
	}
	if req.Status != nil {
		in.Status = *req.Status
	}

	slab, err := h.shippingUC.CreateSlab(r.Context(), in)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, slab)
}

func (h *AdminShippingHandler) UpdateSlab(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	req, clearMax, err := decodeSlabReq(r)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}

	slab, err := h.shippingUC.UpdateSlab(r.Context(), id, usecase.SlabPatch{
		MinAmount:      req.MinAmount,
		MaxAmount:      req.MaxAmount,
		ClearMaxAmount: clearMax,
		ShippingCharge: req.ShippingCharge,
		Status:         req.Status,
	})
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, slab)
}

func (h *AdminShippingHandler) DeleteSlab(w http.ResponseWriter, r *http.Request) {
	if err := h.shippingUC.DeleteSlab(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
