package transport

import (
	"net/http"
	"time"

	"cakeshop/internal/domain"
	"cakeshop/internal/middleware"
	"cakeshop/internal/repository"
	"cakeshop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PromotionRequest represents the promotion create/update payload. Start and
// end dates are accepted as-is; there is no ordering validation.
type PromotionRequest struct {
	Title         string    `json:"title" validate:"required"`
	Description   string    `json:"description"`
	DiscountType  string    `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue float64   `json:"discountValue" validate:"gte=0"`
	StartDate     time.Time `json:"startDate" validate:"required"`
	EndDate       time.Time `json:"endDate" validate:"required"`
	ProductIDs    []string  `json:"products"`
	CategoryIDs   []string  `json:"categories"`
	IsActive      *bool     `json:"isActive"`
}

// PromotionHandler handles HTTP requests for promotions
type PromotionHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewPromotionHandler creates a new PromotionHandler
func NewPromotionHandler(catalogService service.CatalogService, logger *zap.Logger) *PromotionHandler {
	return &PromotionHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers promotion routes; /all and writes require admin
func (h *PromotionHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/promotions", func(r chi.Router) {
		r.Get("/", h.ListActive)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/all", h.ListAll)
			r.Get("/{id}", h.Get)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Get returns a single promotion for the console edit form
func (h *PromotionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	promotion, err := h.catalogService.GetPromotion(r.Context(), id)
	if err != nil {
		if err == repository.ErrPromotionNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "promotion not found")
			return
		}
		h.logger.Error("Failed to get promotion", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get promotion")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, promotion)
}

// ListActive returns active promotions for the storefront
func (h *PromotionHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

// ListAll returns every promotion for the admin console
func (h *PromotionHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *PromotionHandler) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	promotions, err := h.catalogService.ListPromotions(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("Failed to list promotions", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list promotions")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, promotions)
}

// Create handles promotion creation
func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	promotion, ok := h.decodePromotion(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.CreatePromotion(r.Context(), promotion); err != nil {
		h.logger.Error("Failed to create promotion", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create promotion")
		return
	}

	h.logger.Info("Promotion created", zap.String("promotion_id", promotion.ID.String()))
	middleware.RespondWithData(w, http.StatusCreated, promotion)
}

// Update handles promotion updates
func (h *PromotionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	promotion, ok := h.decodePromotion(w, r)
	if !ok {
		return
	}
	promotion.ID = id

	if err := h.catalogService.UpdatePromotion(r.Context(), promotion); err != nil {
		if err == repository.ErrPromotionNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "promotion not found")
			return
		}
		h.logger.Error("Failed to update promotion", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update promotion")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, promotion)
}

// Delete handles promotion deletion
func (h *PromotionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.DeletePromotion(r.Context(), id); err != nil {
		if err == repository.ErrPromotionNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "promotion not found")
			return
		}
		h.logger.Error("Failed to delete promotion", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete promotion")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, map[string]string{"message": "promotion deleted"})
}

func (h *PromotionHandler) decodePromotion(w http.ResponseWriter, r *http.Request) (*domain.Promotion, bool) {
	var req PromotionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Promotion validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return nil, false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	productIDs, ok := parseIDList(w, req.ProductIDs, "invalid product id")
	if !ok {
		return nil, false
	}
	categoryIDs, ok := parseIDList(w, req.CategoryIDs, "invalid category id")
	if !ok {
		return nil, false
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return &domain.Promotion{
		Title:         req.Title,
		Description:   req.Description,
		DiscountType:  domain.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		ProductIDs:    productIDs,
		CategoryIDs:   categoryIDs,
		IsActive:      isActive,
	}, true
}

func parseIDList(w http.ResponseWriter, raw []string, errMessage string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, errMessage)
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
