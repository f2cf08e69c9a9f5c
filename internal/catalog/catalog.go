// Package catalog implements the storefront browse model: the filter, sort
// and pagination pass a shopper's view applies to a category-scoped product
// set. The repository scopes by category; everything here is an in-memory
// pass over that full set.
package catalog

import (
	"sort"
	"strings"

	"cakeshop/internal/domain"
)

// PageSize is the fixed storefront page size
const PageSize = 9

// NoMaxPrice marks an absent upper price bound. The browse operation
// substitutes the max observed price; an explicit zero stays a real bound.
const NoMaxPrice float64 = -1

// SortKey selects the ordering applied after filtering
type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameAsc   SortKey = "name-asc"
)

// ParseSortKey maps a query parameter to a SortKey, defaulting to SortDefault
// for anything unrecognized.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortPriceAsc, SortPriceDesc, SortNameAsc:
		return SortKey(s)
	default:
		return SortDefault
	}
}

// Filter is the shopper-selected filter state
type Filter struct {
	Search   string
	MinPrice float64
	MaxPrice float64
	Sort     SortKey
}

// Apply filters and sorts a product set without mutating the input. An empty
// search matches everything; the price bound is inclusive on both ends;
// SortDefault preserves the input order (repository order, newest first).
func Apply(products []domain.Product, filter Filter) []domain.Product {
	result := make([]domain.Product, 0, len(products))

	needle := strings.ToLower(filter.Search)
	for _, p := range products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if p.Price < filter.MinPrice || p.Price > filter.MaxPrice {
			continue
		}
		result = append(result, p)
	}

	switch filter.Sort {
	case SortPriceAsc:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price < result[j].Price })
	case SortPriceDesc:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price > result[j].Price })
	case SortNameAsc:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	}

	return result
}

// TotalPages returns ceil(n / PageSize)
func TotalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// Paginate slices a filtered set into the requested 1-based page. Pages
// outside the valid range clamp: below 1 to the first page, beyond the end to
// the last. An empty set yields an empty slice and zero pages.
func Paginate(products []domain.Product, page int) ([]domain.Product, int) {
	totalPages := TotalPages(len(products))
	if totalPages == 0 {
		return []domain.Product{}, 0
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > len(products) {
		end = len(products)
	}

	return products[start:end], totalPages
}

// MaxObservedPrice returns the highest price in an unfiltered set, used to
// recompute the default price bound when a fresh set arrives.
func MaxObservedPrice(products []domain.Product) float64 {
	max := 0.0
	for _, p := range products {
		if p.Price > max {
			max = p.Price
		}
	}
	return max
}
