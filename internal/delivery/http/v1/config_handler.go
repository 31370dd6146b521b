package v1

import (
	"net/http"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/cache"
	"orderflow-backend/pkg/utils"
)

const enumsTTL = time.Hour

type ConfigHandler struct {
	cache cache.CacheService
}

func NewConfigHandler(c cache.CacheService) *ConfigHandler {
	return &ConfigHandler{cache: c}
}

// GET /api/v1/config/enums
func (h *ConfigHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	response, _, _ := cache.Remember(h.cache, cache.KeyEnums, enumsTTL, func() (map[string]interface{}, error) {
		return map[string]interface{}{
			"orderStatuses":   domain.OrderStatuses,
			"paymentStatuses": domain.PaymentStatuses,
			"refundStatuses":  domain.RefundStatuses,
			"returnReasons":   domain.ReturnReasons,
			"refundMethods":   domain.RefundMethods,
			"paymentMethods":  domain.PaymentMethods,
		}, nil
	})

	w.Header().Set("Cache-Control", "public, max-age=3600")
	utils.WriteJSON(w, http.StatusOK, response)
}
