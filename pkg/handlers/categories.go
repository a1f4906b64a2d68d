package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"company-workspace-backend/pkg/models"
	"company-workspace-backend/pkg/services"
	"company-workspace-backend/pkg/utils"
)

// UpdateCategoryRequest is the body of PUT /api/categories/{id}
type UpdateCategoryRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// categoryView is a category as listed to the editor
type categoryView struct {
	models.Category
	InPalette bool `json:"in_palette"`
}

type CategoryHandler struct {
	categoryService services.CategoryService
}

func NewCategoryHandler(categoryService services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to load categories")
		return
	}
	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, categoryView{Category: c, InPalette: models.InPalette(c.Color)})
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"categories": views,
		"count":      len(views),
	})
}

// GET /api/categories/palette
func (h *CategoryHandler) Palette(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccessResponse(w, map[string]interface{}{"colors": h.categoryService.Palette()})
}

// PUT /api/categories/{id}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req UpdateCategoryRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		writeInvalidInput(w, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		writeInvalidInput(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	update := services.CategoryUpdate{Name: req.Name, Color: req.Color}
	if err := h.categoryService.UpdateCategory(r.Context(), id, update); err != nil {
		writeServiceError(w, err, "Failed to update category")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"id": id, "updated": true})
}

// DELETE /api/categories/{id}
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.categoryService.DeleteCategory(r.Context(), id); err != nil {
		writeServiceError(w, err, "Failed to delete category")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"id": id, "deleted": true})
}
