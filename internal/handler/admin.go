package handler

import (
	"net/http"

	"github.com/mmeshcher/storefront/internal/middleware"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/service"
)

// Все обработчики ниже подключаются за middleware.RequireAdmin.

// AdminListCategories возвращает все категории.
func (h *Handler) AdminListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListAllCategories(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// AdminCreateCategory создаёт категорию.
func (h *Handler) AdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CategoryInput
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// AdminUpdateCategory обновляет категорию.
func (h *Handler) AdminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req service.CategoryUpdateInput
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.service.UpdateCategory(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, r, err, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// AdminListProducts возвращает все товары, включая скрытые.
func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListAllProducts(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// AdminGetProduct возвращает товар независимо от видимости.
func (h *Handler) AdminGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	p, err := h.service.GetAnyProduct(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// AdminCreateProduct создаёт товар.
func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// AdminUpdateProduct обновляет товар.
func (h *Handler) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req service.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, r, err, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// AdminListUsers возвращает всех пользователей.
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// AdminAssignRole назначает роль пользователю.
func (h *Handler) AdminAssignRole(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req service.RoleInput
	if !decodeJSON(w, r, &req) {
		return
	}

	actor, _ := middleware.PrincipalFromContext(r.Context())
	u, err := h.service.AssignRole(r.Context(), actor, id, req)
	if err != nil {
		h.writeServiceError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// AdminListOrders возвращает все заказы, при наличии status только с этим статусом.
func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	status := model.OrderStatus(r.URL.Query().Get("status"))

	orders, err := h.service.ListOrders(r.Context(), status)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// AdminStats возвращает показатели магазина.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// AdminRevenue возвращает сумму завершённых заказов.
func (h *Handler) AdminRevenue(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.TotalRevenue(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"totalRevenue": model.FormatMoney(total)})
}
