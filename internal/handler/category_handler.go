package handlers

import (
	"net/http"
)

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.CategoryService.ListCategories(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, categories, http.StatusOK)
}

func (h *Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	category, err := h.CategoryService.GetCategory(r.Context(), categoryID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, category, http.StatusOK)
}

func (h *Handlers) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	subcategories, err := h.CategoryService.ListSubcategories(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, subcategories, http.StatusOK)
}

func (h *Handlers) GetSubcategory(w http.ResponseWriter, r *http.Request) {
	subcategoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	subcategory, err := h.CategoryService.GetSubcategory(r.Context(), subcategoryID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, subcategory, http.StatusOK)
}

func (h *Handlers) ListSubcategoriesByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "categoryId")
	if !ok {
		return
	}

	subcategories, err := h.CategoryService.ListSubcategoriesByCategory(r.Context(), categoryID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, subcategories, http.StatusOK)
}
