package handler

import (
	"net/http"
	"strconv"
)

// ListCategories возвращает активные категории.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListCategories(r.Context()))
}

// GetCategory возвращает активную категорию.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	c, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ListProducts возвращает видимые товары, при наличии categoryId только из этой категории.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid categoryId")
			return
		}
		categoryID = &id
	}

	writeJSON(w, http.StatusOK, h.service.ListProducts(r.Context(), categoryID))
}

// GetProduct возвращает видимый товар.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetStatistics возвращает публичные показатели витрины.
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Statistics(r.Context()))
}
