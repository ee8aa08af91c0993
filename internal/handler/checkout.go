package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/storefront/internal/middleware"
	"github.com/mmeshcher/storefront/internal/service"
)

// CreateCheckout создаёт сессию оплаты и возвращает ссылку на страницу оплаты.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	buyer, _ := middleware.PrincipalFromContext(r.Context())

	var req service.CheckoutInput
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.service.CreateCheckout(r.Context(), buyer, req, r.Header.Get("Origin"))
	if err != nil {
		h.writePaymentError(w, r, err, "Product not found", "Failed to create checkout session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// GetCheckoutSession возвращает состояние сессии оплаты для страницы успешной оплаты.
func (h *Handler) GetCheckoutSession(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.PrincipalFromContext(r.Context())

	details, err := h.service.GetCheckoutSession(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		h.writePaymentError(w, r, err, "Checkout session not found", "Failed to retrieve session")
		return
	}
	writeJSON(w, http.StatusOK, details)
}
