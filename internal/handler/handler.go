// Package handler содержит HTTP-обработчики API витрины.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/middleware"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/payment"
	"github.com/mmeshcher/storefront/internal/service"
)

const maxBodyBytes = 1 << 20

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (service.WebhookResult, error)

	ListCategories(ctx context.Context) []model.Category
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	ListProducts(ctx context.Context, categoryID *int64) []model.Product
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	Statistics(ctx context.Context) model.Stats

	CreateCheckout(ctx context.Context, buyer *model.User, in service.CheckoutInput, origin string) (*payment.Session, error)
	GetCheckoutSession(ctx context.Context, viewer *model.User, sessionID string) (*payment.SessionDetails, error)

	GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	GetOrder(ctx context.Context, viewer *model.User, id int64) (*model.Order, error)

	AdminLogin(ctx context.Context, password string) (*model.User, error)

	ListAllCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, in service.CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, in service.CategoryUpdateInput) (*model.Category, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	GetAnyProduct(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, in service.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, in service.ProductInput) (*model.Product, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	AssignRole(ctx context.Context, actor *model.User, userID int64, in service.RoleInput) (*model.User, error)
	ListOrders(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	Stats(ctx context.Context) (*model.Stats, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
}

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler реализует HTTP-обработчики API витрины.
type Handler struct {
	service         Service
	logger          *zap.Logger
	authMiddleware  *middleware.AuthMiddleware
	checkoutLimiter *middleware.RateLimiter
	pinger          Pinger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
// limiter и pinger могут быть nil.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, limiter *middleware.RateLimiter, pinger Pinger) *Handler {
	return &Handler{
		service:         s,
		logger:          logger,
		authMiddleware:  auth,
		checkoutLimiter: limiter,
		pinger:          pinger,
	}
}

// Health сообщает о доступности сервиса и базы данных.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError переводит ошибку сервиса в HTTP-ответ. Внутренние ошибки пишутся в лог
// и не раскрываются клиенту.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	h.writePaymentError(w, r, err, notFoundMsg, "Payment provider error")
}

// writePaymentError работает как writeServiceError, но с отдельным сообщением для сбоя
// платёжной системы.
func (h *Handler) writePaymentError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg, providerMsg string) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Please login")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid admin password")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "Admin access required")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, service.ErrEmailRequired):
		writeError(w, http.StatusBadRequest, "User email is required")
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPaymentNotConfigured):
		writeError(w, http.StatusInternalServerError, "Payment provider is not configured")
	case errors.Is(err, service.ErrPaymentProvider):
		writeError(w, http.StatusBadGateway, providerMsg)
	default:
		h.logger.Error("request failed",
			zap.Error(err),
			zap.String("requestID", middleware.RequestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path),
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, name)), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}
