package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/middleware"
)

type adminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLogin выполняет вход по паролю администратора и устанавливает cookie сессии.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.service.AdminLogin(r.Context(), req.Password)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}

	if err := h.authMiddleware.SetSessionCookie(w, u.OpenID, u.Name); err != nil {
		h.logger.Error("issue session error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": u})
}

// Me возвращает текущего пользователя или null для анонимного запроса.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Logout удаляет cookie сессии.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authMiddleware.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
