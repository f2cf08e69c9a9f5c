package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cakeshop/internal/catalog"
	"cakeshop/internal/domain"
	"cakeshop/internal/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// categoryCacheKey and categoryCacheTTL mirror the storefront's category
	// revalidation window.
	categoryCacheKey = "cakeshop:categories"
	categoryCacheTTL = 5 * time.Minute
)

// CatalogService is the storefront and admin-console view over the catalog
// repositories: category listings with derived product counts, the browse
// operation, and CRUD with slug derivation.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) error
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	// BrowseProducts fetches the category-scoped product set and applies the
	// shopper's filter, sort and pagination.
	BrowseProducts(ctx context.Context, categoryID *uuid.UUID, filter catalog.Filter, page int) (catalog.View, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListPromotions(ctx context.Context, activeOnly bool) ([]domain.Promotion, error)
	GetPromotion(ctx context.Context, id uuid.UUID) (*domain.Promotion, error)
	CreatePromotion(ctx context.Context, promotion *domain.Promotion) error
	UpdatePromotion(ctx context.Context, promotion *domain.Promotion) error
	DeletePromotion(ctx context.Context, id uuid.UUID) error

	ListBanners(ctx context.Context, position *domain.BannerPosition) ([]domain.Banner, error)
	ListAllBanners(ctx context.Context) ([]domain.Banner, error)
	GetBanner(ctx context.Context, id uuid.UUID) (*domain.Banner, error)
	CreateBanner(ctx context.Context, banner *domain.Banner) error
	UpdateBanner(ctx context.Context, banner *domain.Banner) error
	DeleteBanner(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	categoryRepo  repository.CategoryRepository
	productRepo   repository.ProductRepository
	promotionRepo repository.PromotionRepository
	bannerRepo    repository.BannerRepository
	redisClient   *redis.Client
	logger        *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService. redisClient may
// be nil, in which case category caching is skipped.
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	promotionRepo repository.PromotionRepository,
	bannerRepo repository.BannerRepository,
	redisClient *redis.Client,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		categoryRepo:  categoryRepo,
		productRepo:   productRepo,
		promotionRepo: promotionRepo,
		bannerRepo:    bannerRepo,
		redisClient:   redisClient,
		logger:        logger,
	}
}

// ListCategories returns all categories with product counts, served from the
// redis cache when fresh.
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, categoryCacheKey).Bytes()
		if err == nil {
			var categories []*domain.Category
			if err := json.Unmarshal(cached, &categories); err == nil {
				return categories, nil
			}
			// Corrupt cache entry: fall through to the repository.
			s.redisClient.Del(ctx, categoryCacheKey)
		} else if err != redis.Nil {
			s.logger.Warn("Category cache read failed", zap.Error(err))
		}
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(categories); err == nil {
			if err := s.redisClient.Set(ctx, categoryCacheKey, data, categoryCacheTTL).Err(); err != nil {
				s.logger.Warn("Category cache write failed", zap.Error(err))
			}
		}
	}

	return categories, nil
}

// invalidateCategoryCache drops the cached category listing after any write
// that changes categories or their product counts.
func (s *catalogService) invalidateCategoryCache(ctx context.Context) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, categoryCacheKey).Err(); err != nil {
		s.logger.Warn("Category cache invalidation failed", zap.Error(err))
	}
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

func (s *catalogService) CreateCategory(ctx context.Context, category *domain.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	category.Slug = deriveSlug(category.Slug, category.Name)
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return err
	}
	s.invalidateCategoryCache(ctx)
	return nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, category *domain.Category) error {
	category.Slug = deriveSlug(category.Slug, category.Name)
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return err
	}
	s.invalidateCategoryCache(ctx)
	return nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	// No cascade: products referencing this category are left as-is.
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCategoryCache(ctx)
	return nil
}

// BrowseProducts reads the full category-scoped set and filters in memory
func (s *catalogService) BrowseProducts(ctx context.Context, categoryID *uuid.UUID, filter catalog.Filter, page int) (catalog.View, error) {
	products, err := s.productRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return catalog.View{}, fmt.Errorf("failed to fetch products: %w", err)
	}

	// An unset upper bound defaults to the max observed price so that an
	// unfiltered request sees everything. An explicit zero is a real bound.
	if filter.MaxPrice < 0 {
		filter.MaxPrice = catalog.MaxObservedPrice(products)
	}

	filtered := catalog.Apply(products, filter)
	pageSlice, totalPages := catalog.Paginate(filtered, page)

	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	return catalog.View{
		Products:   pageSlice,
		Total:      len(filtered),
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *catalogService) CreateProduct(ctx context.Context, product *domain.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.Slug = deriveSlug(product.Slug, product.Name)
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.productRepo.Create(ctx, product); err != nil {
		return err
	}
	s.invalidateCategoryCache(ctx)
	return nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, product *domain.Product) error {
	product.Slug = deriveSlug(product.Slug, product.Name)
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}
	s.invalidateCategoryCache(ctx)
	return nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCategoryCache(ctx)
	return nil
}

func (s *catalogService) ListPromotions(ctx context.Context, activeOnly bool) ([]domain.Promotion, error) {
	return s.promotionRepo.List(ctx, activeOnly)
}

func (s *catalogService) GetPromotion(ctx context.Context, id uuid.UUID) (*domain.Promotion, error) {
	return s.promotionRepo.FindByID(ctx, id)
}

func (s *catalogService) CreatePromotion(ctx context.Context, promotion *domain.Promotion) error {
	if promotion.ID == uuid.Nil {
		promotion.ID = uuid.New()
	}
	now := time.Now()
	promotion.CreatedAt = now
	promotion.UpdatedAt = now
	return s.promotionRepo.Create(ctx, promotion)
}

func (s *catalogService) UpdatePromotion(ctx context.Context, promotion *domain.Promotion) error {
	promotion.UpdatedAt = time.Now()
	return s.promotionRepo.Update(ctx, promotion)
}

func (s *catalogService) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	return s.promotionRepo.Delete(ctx, id)
}

func (s *catalogService) ListBanners(ctx context.Context, position *domain.BannerPosition) ([]domain.Banner, error) {
	return s.bannerRepo.ListActive(ctx, position)
}

func (s *catalogService) ListAllBanners(ctx context.Context) ([]domain.Banner, error) {
	return s.bannerRepo.ListAll(ctx)
}

func (s *catalogService) GetBanner(ctx context.Context, id uuid.UUID) (*domain.Banner, error) {
	return s.bannerRepo.FindByID(ctx, id)
}

func (s *catalogService) CreateBanner(ctx context.Context, banner *domain.Banner) error {
	if banner.ID == uuid.Nil {
		banner.ID = uuid.New()
	}
	now := time.Now()
	banner.CreatedAt = now
	banner.UpdatedAt = now
	return s.bannerRepo.Create(ctx, banner)
}

func (s *catalogService) UpdateBanner(ctx context.Context, banner *domain.Banner) error {
	banner.UpdatedAt = time.Now()
	return s.bannerRepo.Update(ctx, banner)
}

func (s *catalogService) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	return s.bannerRepo.Delete(ctx, id)
}

// deriveSlug keeps an explicit slug if provided, otherwise derives one from
// the name: lowercase, diacritics transliterated, only [a-z0-9-].
func deriveSlug(explicit, name string) string {
	if explicit != "" {
		return slug.Make(explicit)
	}
	return slug.Make(name)
}
