package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cakeshop/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func makeProducts(n int) []domain.Product {
	products := make([]domain.Product, n)
	for i := range products {
		products[i] = domain.Product{
			ID:    uuid.New(),
			Name:  "Product",
			Price: float64((i + 1) * 1000),
		}
	}
	return products
}

func newTestBrowser(fetch FetcherFunc) *Browser {
	return NewBrowser(fetch, zap.NewNop())
}

func TestProperty_FilterChangesResetToPageOne(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("any filter change lands the shopper on page 1", prop.ForAll(
		func(n, page, change int) bool {
			b := newTestBrowser(nil)
			b.SetProducts(makeProducts(n))
			b.SetPage(page)

			switch change % 3 {
			case 0:
				b.SetSearch("socola")
			case 1:
				b.SetPriceRange(1000, 50000)
			case 2:
				b.SetSort(SortPriceDesc)
			}

			return b.Page() == 1
		},
		gen.IntRange(10, 100),
		gen.IntRange(2, 12),
		gen.IntRange(0, 2),
	))

	properties.Property("a fresh product set resets the page and the price bound", prop.ForAll(
		func(n int) bool {
			b := newTestBrowser(nil)
			b.SetProducts(makeProducts(50))
			b.SetPage(4)
			b.SetPriceRange(5000, 20000)

			products := makeProducts(n)
			b.SetProducts(products)

			if b.Page() != 1 {
				return false
			}
			return b.MaxObservedPrice() == MaxObservedPrice(products)
		},
		gen.IntRange(1, 60),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestViewClampsPageAfterFilterShrinksSet(t *testing.T) {
	b := newTestBrowser(nil)
	b.SetProducts(makeProducts(30)) // 4 pages

	b.SetPage(4)
	if v := b.View(); v.Page != 4 || v.TotalPages != 4 {
		t.Fatalf("expected page 4 of 4, got page %d of %d", v.Page, v.TotalPages)
	}

	// Narrow the bound so only 5 products remain: one page.
	b.SetPriceRange(1000, 5000)
	v := b.View()
	if v.Total != 5 || v.TotalPages != 1 || v.Page != 1 {
		t.Fatalf("expected 5 products on page 1 of 1, got %d on page %d of %d",
			v.Total, v.Page, v.TotalPages)
	}
}

func TestViewEmptySetIsExplicit(t *testing.T) {
	b := newTestBrowser(nil)
	b.SetProducts(nil)

	v := b.View()
	if v.Total != 0 || v.TotalPages != 0 || len(v.Products) != 0 {
		t.Fatalf("expected the empty state, got %+v", v)
	}
}

func TestSelectCategoryDiscardsStaleResponse(t *testing.T) {
	catA := uuid.New()
	catB := uuid.New()

	productsA := makeProducts(3)
	productsB := makeProducts(7)

	started := make(chan struct{})
	release := make(chan struct{})
	fetch := FetcherFunc(func(ctx context.Context, categoryID *uuid.UUID) ([]domain.Product, error) {
		if categoryID != nil && *categoryID == catA {
			// The first request stalls until the second has completed.
			close(started)
			<-release
			return productsA, nil
		}
		return productsB, nil
	})

	b := newTestBrowser(fetch)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.SelectCategory(context.Background(), &catA)
	}()

	// The second selection supersedes the first while it is in flight.
	<-started
	b.SelectCategory(context.Background(), &catB)
	close(release)
	wg.Wait()

	v := b.View()
	if v.Total != len(productsB) {
		t.Fatalf("stale response overwrote the newer one: got %d products, want %d",
			v.Total, len(productsB))
	}
}

func TestSelectCategoryKeepsPreviousSetOnError(t *testing.T) {
	good := makeProducts(4)
	calls := 0
	fetch := FetcherFunc(func(ctx context.Context, categoryID *uuid.UUID) ([]domain.Product, error) {
		calls++
		if calls == 1 {
			return good, nil
		}
		return nil, errors.New("upstream unavailable")
	})

	b := newTestBrowser(fetch)
	b.SelectCategory(context.Background(), nil)

	failing := uuid.New()
	b.SelectCategory(context.Background(), &failing)

	if v := b.View(); v.Total != len(good) {
		t.Fatalf("failed fetch should keep the previous set, got %d products", v.Total)
	}
}
