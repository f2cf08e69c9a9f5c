package transport

import (
	"net/http"

	"cakeshop/internal/domain"
	"cakeshop/internal/middleware"
	"cakeshop/internal/repository"
	"cakeshop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryRequest represents the category create/update payload
type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
	IsActive    *bool  `json:"isActive"`
}

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(catalogService service.CatalogService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers category routes; writes require an admin token
func (h *CategoryHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.List)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/{id}", h.Get)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Get returns a single category for the console edit form
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	category, err := h.catalogService.GetCategory(r.Context(), id)
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("Failed to get category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get category")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, category)
}

// List returns all categories with derived product counts
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, categories)
}

// Create handles category creation
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCategory(w, r, h.logger)
	if !ok {
		return
	}

	category := categoryFromRequest(req)

	if err := h.catalogService.CreateCategory(r.Context(), category); err != nil {
		if err == repository.ErrCategoryAlreadyExists {
			middleware.RespondWithError(w, http.StatusConflict, "category with this slug already exists")
			return
		}
		h.logger.Error("Failed to create category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID.String()))
	middleware.RespondWithData(w, http.StatusCreated, category)
}

// Update handles category updates
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	req, ok := decodeCategory(w, r, h.logger)
	if !ok {
		return
	}

	category := categoryFromRequest(req)
	category.ID = id

	if err := h.catalogService.UpdateCategory(r.Context(), category); err != nil {
		switch err {
		case repository.ErrCategoryNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
		case repository.ErrCategoryAlreadyExists:
			middleware.RespondWithError(w, http.StatusConflict, "category with this slug already exists")
		default:
			h.logger.Error("Failed to update category", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update category")
		}
		return
	}

	middleware.RespondWithData(w, http.StatusOK, category)
}

// Delete handles category deletion. A category that still has products is
// rejected with a conflict; products are never cascaded.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategory(r.Context(), id); err != nil {
		switch err {
		case repository.ErrCategoryNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
		case repository.ErrCategoryInUse:
			middleware.RespondWithError(w, http.StatusConflict, "category still has products; move or delete them first")
		default:
			h.logger.Error("Failed to delete category", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		}
		return
	}

	middleware.RespondWithData(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

func decodeCategory(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*CategoryRequest, bool) {
	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		logger.Debug("Category validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return nil, false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return &req, true
}

func categoryFromRequest(req *CategoryRequest) *domain.Category {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return &domain.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Image:       req.Image,
		IsActive:    isActive,
	}
}

// parseIDParam extracts and parses the {id} route parameter
func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
