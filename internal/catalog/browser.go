package catalog

import (
	"context"
	"sync"

	"cakeshop/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Fetcher loads the category-scoped product set. A nil categoryID means all
// products.
type Fetcher interface {
	Fetch(ctx context.Context, categoryID *uuid.UUID) ([]domain.Product, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, categoryID *uuid.UUID) ([]domain.Product, error)

func (f FetcherFunc) Fetch(ctx context.Context, categoryID *uuid.UUID) ([]domain.Product, error) {
	return f(ctx, categoryID)
}

// Browser holds one shopper's browse state: the category-scoped product set,
// the active filter, and the current page. Changing any filter input resets
// the page to 1. Selecting a category triggers a fresh fetch; overlapping
// fetches are resolved with a generation counter so a stale response never
// overwrites a newer one. A failed fetch leaves the previous set untouched.
type Browser struct {
	mu sync.Mutex

	fetcher Fetcher
	logger  *zap.Logger

	products   []domain.Product
	categoryID *uuid.UUID
	filter     Filter
	page       int
	maxPrice   float64

	generation uint64
}

// NewBrowser creates a Browser with an empty product set and an open price
// bound of [0, 0].
func NewBrowser(fetcher Fetcher, logger *zap.Logger) *Browser {
	return &Browser{
		fetcher: fetcher,
		logger:  logger,
		filter:  Filter{Sort: SortDefault},
		page:    1,
	}
}

// SelectCategory switches the category scope and refetches the product set.
// Passing nil selects all products.
func (b *Browser) SelectCategory(ctx context.Context, categoryID *uuid.UUID) {
	b.mu.Lock()
	b.categoryID = categoryID
	b.generation++
	gen := b.generation
	b.mu.Unlock()

	products, err := b.fetcher.Fetch(ctx, categoryID)

	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.generation {
		// A newer fetch was issued while this one was in flight.
		return
	}

	if err != nil {
		// Degraded behavior: keep showing the previous list.
		b.logger.Error("Failed to fetch products", zap.Error(err))
		return
	}

	b.setProductsLocked(products)
}

// SetProducts installs a fresh unfiltered set directly, recomputing the
// default price bound and resetting to page 1.
func (b *Browser) SetProducts(products []domain.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setProductsLocked(products)
}

func (b *Browser) setProductsLocked(products []domain.Product) {
	b.products = products
	b.maxPrice = MaxObservedPrice(products)
	b.filter.MinPrice = 0
	b.filter.MaxPrice = b.maxPrice
	b.page = 1
}

// SetSearch updates the search text and resets to page 1
func (b *Browser) SetSearch(search string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Search = search
	b.page = 1
}

// SetPriceRange updates the price bound and resets to page 1
func (b *Browser) SetPriceRange(min, max float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.MinPrice = min
	b.filter.MaxPrice = max
	b.page = 1
}

// SetSort updates the sort key and resets to page 1
func (b *Browser) SetSort(sort SortKey) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Sort = sort
	b.page = 1
}

// SetPage moves to the requested page without touching the filter
func (b *Browser) SetPage(page int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if page < 1 {
		page = 1
	}
	b.page = page
}

// Page returns the current page number
func (b *Browser) Page() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

// MaxObservedPrice returns the price ceiling of the current unfiltered set
func (b *Browser) MaxObservedPrice() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxPrice
}

// View is the rendered slice of the browse state
type View struct {
	Products   []domain.Product
	Total      int
	Page       int
	TotalPages int
}

// View applies the current filter and returns the visible page. An empty
// Products slice with Total 0 is the explicit "no products" state.
func (b *Browser) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	filtered := Apply(b.products, b.filter)
	pageSlice, totalPages := Paginate(filtered, b.page)

	page := b.page
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	return View{
		Products:   pageSlice,
		Total:      len(filtered),
		Page:       page,
		TotalPages: totalPages,
	}
}
