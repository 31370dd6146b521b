package v1

import (
	"net/http"

	"orderflow-backend/internal/domain"
	"orderflow-backend/internal/usecase"
	"orderflow-backend/pkg/utils"
)

type NotificationHandler struct {
	notificationUC *usecase.NotificationUsecase
}

func NewNotificationHandler(uc *usecase.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{notificationUC: uc}
}

// GET /api/v1/notifications?limit=
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	inbox, err := h.notificationUC.Inbox(r.Context(), user.ID, utils.QueryInt(r, "limit", 0, 0, 0))
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	if inbox.Notifications == nil {
		inbox.Notifications = []domain.Notification{}
	}
	utils.WriteJSON(w, http.StatusOK, inbox)
}

// PATCH /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.notificationUC.MarkRead(r.Context(), user.ID, r.PathValue("id")); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PATCH /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	n, err := h.notificationUC.MarkAllRead(r.Context(), user.ID)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

// GET /api/v1/admin/notifications?limit=
func (h *NotificationHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	items, err := h.notificationUC.ListAdmin(r.Context(), utils.QueryInt(r, "limit", 0, 0, 0))
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Notification{}
	}
	utils.WriteJSON(w, http.StatusOK, items)
}
