package transport

import (
	"net/http"

	"cakeshop/internal/domain"
	"cakeshop/internal/middleware"
	"cakeshop/internal/repository"
	"cakeshop/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BannerRequest represents the banner create/update payload
type BannerRequest struct {
	Title       string `json:"title" validate:"required"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	Image       string `json:"image" validate:"required"`
	Link        string `json:"link"`
	Position    string `json:"position" validate:"required,oneof=hero sidebar footer promotion"`
	IsActive    *bool  `json:"isActive"`
	Order       int    `json:"order"`
}

// BannerHandler handles HTTP requests for banners
type BannerHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewBannerHandler creates a new BannerHandler
func NewBannerHandler(catalogService service.CatalogService, logger *zap.Logger) *BannerHandler {
	return &BannerHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers banner routes; /all and writes require admin
func (h *BannerHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/banners", func(r chi.Router) {
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

// Get returns a single banner for the console edit form
func (h *BannerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	banner, err := h.catalogService.GetBanner(r.Context(), id)
	if err != nil {
		if err == repository.ErrBannerNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "banner not found")
			return
		}
		h.logger.Error("Failed to get banner", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get banner")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, banner)
}

// ListActive returns active banners ordered for display, optionally narrowed
// to one position slot via ?position=
func (h *BannerHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	var position *domain.BannerPosition
	if raw := r.URL.Query().Get("position"); raw != "" {
		p := domain.BannerPosition(raw)
		switch p {
		case domain.BannerHero, domain.BannerSidebar, domain.BannerFooter, domain.BannerPromotion:
			position = &p
		default:
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid position")
			return
		}
	}

	banners, err := h.catalogService.ListBanners(r.Context(), position)
	if err != nil {
		h.logger.Error("Failed to list banners", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list banners")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, banners)
}

// ListAll returns every banner for the admin console
func (h *BannerHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	banners, err := h.catalogService.ListAllBanners(r.Context())
	if err != nil {
		h.logger.Error("Failed to list banners", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list banners")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, banners)
}

// Create handles banner creation
func (h *BannerHandler) Create(w http.ResponseWriter, r *http.Request) {
	banner, ok := h.decodeBanner(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.CreateBanner(r.Context(), banner); err != nil {
		h.logger.Error("Failed to create banner", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create banner")
		return
	}

	h.logger.Info("Banner created", zap.String("banner_id", banner.ID.String()))
	middleware.RespondWithData(w, http.StatusCreated, banner)
}

// Update handles banner updates
func (h *BannerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	banner, ok := h.decodeBanner(w, r)
	if !ok {
		return
	}
	banner.ID = id

	if err := h.catalogService.UpdateBanner(r.Context(), banner); err != nil {
		if err == repository.ErrBannerNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "banner not found")
			return
		}
		h.logger.Error("Failed to update banner", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update banner")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, banner)
}

// Delete handles banner deletion
func (h *BannerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteBanner(r.Context(), id); err != nil {
		if err == repository.ErrBannerNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "banner not found")
			return
		}
		h.logger.Error("Failed to delete banner", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete banner")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, map[string]string{"message": "banner deleted"})
}

func (h *BannerHandler) decodeBanner(w http.ResponseWriter, r *http.Request) (*domain.Banner, bool) {
	var req BannerRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Banner validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return nil, false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return &domain.Banner{
		Title:        req.Title,
		Subtitle:     req.Subtitle,
		Description:  req.Description,
		Image:        req.Image,
		Link:         req.Link,
		Position:     domain.BannerPosition(req.Position),
		IsActive:     isActive,
		DisplayOrder: req.Order,
	}, true
}
