package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/middleware"
)

// GetOrders возвращает заказы текущего пользователя.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Please login")
		return
	}

	orders, err := h.service.GetOrdersByUser(r.Context(), u.ID)
	if err != nil {
		h.logger.Error("get orders error", zap.Error(err), zap.Int64("userID", u.ID))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder возвращает заказ текущего пользователя.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	u, _ := middleware.PrincipalFromContext(r.Context())
	o, err := h.service.GetOrder(r.Context(), u, id)
	if err != nil {
		h.writeServiceError(w, r, err, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}
