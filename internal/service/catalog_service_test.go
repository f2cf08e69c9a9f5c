package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"cakeshop/internal/catalog"
	"cakeshop/internal/domain"
	"cakeshop/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

// Mock catalog repositories for testing
type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
	listCalls  int
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[uuid.UUID]*domain.Category)}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if _, exists := m.categories[category.ID]; !exists {
		return repository.ErrCategoryNotFound
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.categories[id]; !exists {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, exists := m.categories[id]
	if !exists {
		return nil, repository.ErrCategoryNotFound
	}
	return category, nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	m.listCalls++
	result := make([]*domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		result = append(result, c)
	}
	return result, nil
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
	listed   []domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) ListByCategory(ctx context.Context, categoryID *uuid.UUID) ([]domain.Product, error) {
	if m.listed != nil {
		if categoryID == nil {
			return m.listed, nil
		}
		var scoped []domain.Product
		for _, p := range m.listed {
			if p.CategoryID == *categoryID {
				scoped = append(scoped, p)
			}
		}
		return scoped, nil
	}

	var result []domain.Product
	for _, p := range m.products {
		if !p.IsActive {
			continue
		}
		if categoryID != nil && p.CategoryID != *categoryID {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	result := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		result = append(result, *p)
	}
	return result, nil
}

func newTestCatalogService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) CatalogService {
	// nil redis: caching is skipped entirely.
	return NewCatalogService(categoryRepo, productRepo, nil, nil, nil, zap.NewNop())
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestCreateCategoryDerivesSlugFromName(t *testing.T) {
	categoryRepo := newMockCategoryRepository()
	service := newTestCatalogService(categoryRepo, newMockProductRepository())
	ctx := context.Background()

	category := &domain.Category{Name: "Bánh Kem Dâu!", IsActive: true}
	if err := service.CreateCategory(ctx, category); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if category.Slug != "banh-kem-dau" {
		t.Fatalf("expected slug banh-kem-dau, got %q", category.Slug)
	}
	if category.ID == uuid.Nil {
		t.Fatal("create should assign an ID")
	}
	if category.CreatedAt.IsZero() || category.UpdatedAt.IsZero() {
		t.Fatal("create should stamp timestamps")
	}
}

func TestCreateCategoryKeepsExplicitSlug(t *testing.T) {
	categoryRepo := newMockCategoryRepository()
	service := newTestCatalogService(categoryRepo, newMockProductRepository())

	category := &domain.Category{Name: "Bánh Sinh Nhật", Slug: "birthday-cakes"}
	if err := service.CreateCategory(context.Background(), category); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if category.Slug != "birthday-cakes" {
		t.Fatalf("explicit slug should be kept, got %q", category.Slug)
	}
}

func TestProperty_DerivedSlugsAreURLSafe(t *testing.T) {
	properties := gopter.NewProperties(nil)

	names := []string{
		"Bánh Kem Dâu!", "Bánh Mì Ngọt", "Sô-cô-la Đặc Biệt", "Cafe & Trà",
		"100% Bơ Sữa", "Bánh  Nhiều   Khoảng Trắng", "CHỮ HOA TOÀN BỘ",
	}

	properties.Property("every derived slug matches ^[a-z0-9-]+$ with no edge dashes", prop.ForAll(
		func(i int) bool {
			productRepo := newMockProductRepository()
			service := newTestCatalogService(newMockCategoryRepository(), productRepo)

			product := &domain.Product{Name: names[i%len(names)], Price: 1000, IsActive: true}
			if err := service.CreateProduct(context.Background(), product); err != nil {
				return false
			}
			return slugPattern.MatchString(product.Slug)
		},
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestBrowseProductsDefaultsPriceBoundToMaxObserved(t *testing.T) {
	productRepo := newMockProductRepository()
	productRepo.listed = []domain.Product{
		{ID: uuid.New(), Name: "Bánh Socola", Price: 450000},
		{ID: uuid.New(), Name: "Bánh Kem Dâu", Price: 120000},
		{ID: uuid.New(), Name: "Tiramisu", Price: 95000},
	}
	service := newTestCatalogService(newMockCategoryRepository(), productRepo)

	// No explicit bound: everything is visible, including the priciest item.
	view, err := service.BrowseProducts(context.Background(), nil, catalog.Filter{MaxPrice: catalog.NoMaxPrice, Sort: catalog.SortDefault}, 1)
	if err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	if view.Total != 3 {
		t.Fatalf("expected all 3 products, got %d", view.Total)
	}

	// An explicit bound narrows as usual.
	view, err = service.BrowseProducts(context.Background(), nil,
		catalog.Filter{MaxPrice: 100000, Sort: catalog.SortDefault}, 1)
	if err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	if view.Total != 1 {
		t.Fatalf("expected 1 product under 100000, got %d", view.Total)
	}
}

func TestBrowseProductsExplicitZeroBoundIsReal(t *testing.T) {
	productRepo := newMockProductRepository()
	productRepo.listed = []domain.Product{
		{ID: uuid.New(), Name: "Bánh Socola", Price: 450000},
		{ID: uuid.New(), Name: "Quà Tặng Kèm", Price: 0},
	}
	service := newTestCatalogService(newMockCategoryRepository(), productRepo)

	// max_price=0 asks for zero-priced items only; it is not "no bound".
	view, err := service.BrowseProducts(context.Background(), nil,
		catalog.Filter{MaxPrice: 0, Sort: catalog.SortDefault}, 1)
	if err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	if view.Total != 1 {
		t.Fatalf("expected only the zero-priced product, got %d", view.Total)
	}
	if len(view.Products) != 1 || view.Products[0].Price != 0 {
		t.Fatalf("expected the free item, got %+v", view.Products)
	}
}

func TestBrowseProductsScopesToCategory(t *testing.T) {
	cakes := uuid.New()
	pastries := uuid.New()

	productRepo := newMockProductRepository()
	productRepo.listed = []domain.Product{
		{ID: uuid.New(), Name: "Bánh Socola", Price: 100000, CategoryID: cakes},
		{ID: uuid.New(), Name: "Bánh Kem Dâu", Price: 120000, CategoryID: cakes},
		{ID: uuid.New(), Name: "Croissant", Price: 30000, CategoryID: pastries},
	}
	service := newTestCatalogService(newMockCategoryRepository(), productRepo)

	view, err := service.BrowseProducts(context.Background(), &cakes, catalog.Filter{MaxPrice: catalog.NoMaxPrice, Sort: catalog.SortDefault}, 1)
	if err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	if view.Total != 2 {
		t.Fatalf("expected 2 cakes, got %d", view.Total)
	}
}

func TestBrowseProductsPaginates(t *testing.T) {
	productRepo := newMockProductRepository()
	for i := 0; i < 21; i++ {
		productRepo.listed = append(productRepo.listed, domain.Product{
			ID:    uuid.New(),
			Name:  "Product",
			Price: float64((i + 1) * 1000),
		})
	}
	service := newTestCatalogService(newMockCategoryRepository(), productRepo)

	view, err := service.BrowseProducts(context.Background(), nil, catalog.Filter{MaxPrice: catalog.NoMaxPrice, Sort: catalog.SortDefault}, 3)
	if err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	if view.TotalPages != 3 {
		t.Fatalf("expected 3 pages for 21 products, got %d", view.TotalPages)
	}
	if len(view.Products) != 3 {
		t.Fatalf("expected 3 products on the last page, got %d", len(view.Products))
	}

	// Requesting past the end clamps to the last page.
	view, err = service.BrowseProducts(context.Background(), nil, catalog.Filter{MaxPrice: catalog.NoMaxPrice, Sort: catalog.SortDefault}, 99)
	if err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	if view.Page != 3 {
		t.Fatalf("expected clamp to page 3, got %d", view.Page)
	}
}

func TestBrowseProductsEmptyCatalog(t *testing.T) {
	service := newTestCatalogService(newMockCategoryRepository(), newMockProductRepository())

	view, err := service.BrowseProducts(context.Background(), nil, catalog.Filter{MaxPrice: catalog.NoMaxPrice, Sort: catalog.SortDefault}, 1)
	if err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	if view.Total != 0 || view.TotalPages != 0 || len(view.Products) != 0 {
		t.Fatalf("expected the empty state, got %+v", view)
	}
}

func TestGetCategoryReadsBackStoredRecord(t *testing.T) {
	categoryRepo := newMockCategoryRepository()
	service := newTestCatalogService(categoryRepo, newMockProductRepository())
	ctx := context.Background()

	category := &domain.Category{Name: "Bánh Kem"}
	if err := service.CreateCategory(ctx, category); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := service.GetCategory(ctx, category.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if found.ID != category.ID || found.Slug != "banh-kem" {
		t.Fatalf("unexpected category: %+v", found)
	}

	if _, err := service.GetCategory(ctx, uuid.New()); err != repository.ErrCategoryNotFound {
		t.Fatalf("expected ErrCategoryNotFound for an unknown id, got %v", err)
	}
}

func TestUpdateCategoryRefreshesSlugAndTimestamp(t *testing.T) {
	categoryRepo := newMockCategoryRepository()
	service := newTestCatalogService(categoryRepo, newMockProductRepository())
	ctx := context.Background()

	category := &domain.Category{Name: "Bánh Ngọt"}
	if err := service.CreateCategory(ctx, category); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	created := category.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	category.Name = "Bánh Mặn"
	category.Slug = ""
	if err := service.UpdateCategory(ctx, category); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if category.Slug != "banh-man" {
		t.Fatalf("expected slug banh-man after rename, got %q", category.Slug)
	}
	if !category.UpdatedAt.After(created) {
		t.Fatal("update should advance UpdatedAt")
	}
}
