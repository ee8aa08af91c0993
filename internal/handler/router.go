package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/storefront/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware витрины.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.RequestID)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/healthz", h.Health)

	// Webhook обрабатывается до распаковки и любых других преобразований тела.
	r.Post("/api/webhooks/stripe", h.StripeWebhook)

	r.Group(func(r chi.Router) {
		r.Use(custommiddleware.GzipMiddleware)
		r.Use(h.authMiddleware.Authenticate)

		r.Route("/api", func(r chi.Router) {
			r.Get("/categories", h.ListCategories)
			r.Get("/categories/{id}", h.GetCategory)
			r.Get("/products", h.ListProducts)
			r.Get("/products/{id}", h.GetProduct)
			r.Get("/statistics", h.GetStatistics)

			r.Route("/auth", func(r chi.Router) {
				r.Post("/admin-login", h.AdminLogin)
				r.Get("/me", h.Me)
				r.Post("/logout", h.Logout)
			})

			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.RequireAuth)

				r.With(h.checkoutLimiter.Middleware).Post("/checkout", h.CreateCheckout)
				r.Get("/checkout/sessions/{id}", h.GetCheckoutSession)

				r.Get("/orders", h.GetOrders)
				r.Get("/orders/{id}", h.GetOrder)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(custommiddleware.RequireAdmin)

				r.Get("/categories", h.AdminListCategories)
				r.Post("/categories", h.AdminCreateCategory)
				r.Put("/categories/{id}", h.AdminUpdateCategory)

				r.Get("/products", h.AdminListProducts)
				r.Post("/products", h.AdminCreateProduct)
				r.Get("/products/{id}", h.AdminGetProduct)
				r.Put("/products/{id}", h.AdminUpdateProduct)

				r.Get("/users", h.AdminListUsers)
				r.Put("/users/{id}/role", h.AdminAssignRole)

				r.Get("/orders", h.AdminListOrders)
				r.Get("/stats", h.AdminStats)
				r.Get("/revenue", h.AdminRevenue)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}
