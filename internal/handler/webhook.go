package handler

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/service"
)

// stripeSignatureHeader: заголовок с подписью webhook-события.
const stripeSignatureHeader = "Stripe-Signature"

// StripeWebhook принимает webhook-события платёжной системы. Тело читается целиком и
// без преобразований: подпись проверяется по сырым байтам.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	res, err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get(stripeSignatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			writeError(w, http.StatusBadRequest, "Webhook signature verification failed")
		case errors.Is(err, service.ErrMalformedEvent):
			writeError(w, http.StatusBadRequest, "Malformed webhook event")
		case errors.Is(err, service.ErrPaymentNotConfigured):
			writeError(w, http.StatusInternalServerError, "Webhook secret not configured")
		default:
			h.logger.Error("webhook processing error", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Webhook processing failed")
		}
		return
	}

	if res.Verified {
		writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
