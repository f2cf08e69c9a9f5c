package catalog

import (
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"cakeshop/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genProduct builds products with varied names and prices. Names mix ASCII
// and Vietnamese so the case-insensitive search path sees both.
func genProduct() gopter.Gen {
	names := []string{
		"Bánh Socola", "Bánh Kem Dâu", "Chocolate Cake", "Tiramisu",
		"Bánh Mì Ngọt", "Cheesecake", "Red Velvet", "Bánh Bông Lan",
	}
	return gen.IntRange(0, len(names)-1).FlatMap(func(i interface{}) gopter.Gen {
		name := names[i.(int)]
		return gen.Float64Range(1, 500000).Map(func(price float64) domain.Product {
			return domain.Product{
				ID:        uuid.New(),
				Name:      name,
				Price:     price,
				IsActive:  true,
				CreatedAt: time.Now(),
			}
		})
	}, reflect.TypeOf(domain.Product{}))
}

func genProducts() gopter.Gen {
	return gen.SliceOf(genProduct())
}

func TestProperty_PriceFilterIsInclusiveBound(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every filtered product lies inside [min, max]", prop.ForAll(
		func(products []domain.Product, lo, hi float64) bool {
			if lo > hi {
				lo, hi = hi, lo
			}

			filtered := Apply(products, Filter{MinPrice: lo, MaxPrice: hi, Sort: SortDefault})

			for _, p := range filtered {
				if p.Price < lo || p.Price > hi {
					return false
				}
			}

			// Nothing inside the bound was dropped.
			kept := 0
			for _, p := range products {
				if p.Price >= lo && p.Price <= hi {
					kept++
				}
			}
			return kept == len(filtered)
		},
		genProducts(),
		gen.Float64Range(0, 600000),
		gen.Float64Range(0, 600000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a matched product always contains the term, ignoring case", prop.ForAll(
		func(products []domain.Product, termIdx int) bool {
			terms := []string{"socola", "SOCOLA", "Socola", "cake", "CAKE", "bánh", "kem", "zzz-no-match"}
			term := terms[termIdx%len(terms)]

			filtered := Apply(products, Filter{
				Search:   term,
				MaxPrice: MaxObservedPrice(products),
				Sort:     SortDefault,
			})

			needle := strings.ToLower(term)
			for _, p := range filtered {
				if !strings.Contains(strings.ToLower(p.Name), needle) {
					return false
				}
			}

			// Every product containing the term survived.
			expected := 0
			for _, p := range products {
				if strings.Contains(strings.ToLower(p.Name), needle) {
					expected++
				}
			}
			return expected == len(filtered)
		},
		genProducts(),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestSearchMatchesRegardlessOfCase(t *testing.T) {
	products := []domain.Product{
		{ID: uuid.New(), Name: "Bánh Socola", Price: 100},
		{ID: uuid.New(), Name: "Bánh Kem Dâu", Price: 120},
	}

	for _, term := range []string{"socola", "SOCOLA", "Socola"} {
		filtered := Apply(products, Filter{Search: term, MaxPrice: 500, Sort: SortDefault})
		if len(filtered) != 1 || filtered[0].Name != "Bánh Socola" {
			t.Errorf("search %q: expected exactly Bánh Socola, got %d results", term, len(filtered))
		}
	}
}

func TestProperty_SortOrderings(t *testing.T) {
	properties := gopter.NewProperties(nil)

	openFilter := func(products []domain.Product, key SortKey) Filter {
		return Filter{MaxPrice: MaxObservedPrice(products), Sort: key}
	}

	properties.Property("price-asc yields non-decreasing prices", prop.ForAll(
		func(products []domain.Product) bool {
			sorted := Apply(products, openFilter(products, SortPriceAsc))
			return sort.SliceIsSorted(sorted, func(i, j int) bool {
				return sorted[i].Price < sorted[j].Price
			})
		},
		genProducts(),
	))

	properties.Property("price-desc yields non-increasing prices", prop.ForAll(
		func(products []domain.Product) bool {
			sorted := Apply(products, openFilter(products, SortPriceDesc))
			return sort.SliceIsSorted(sorted, func(i, j int) bool {
				return sorted[i].Price > sorted[j].Price
			})
		},
		genProducts(),
	))

	properties.Property("name-asc yields lexicographic names", prop.ForAll(
		func(products []domain.Product) bool {
			sorted := Apply(products, openFilter(products, SortNameAsc))
			return sort.SliceIsSorted(sorted, func(i, j int) bool {
				return sorted[i].Name < sorted[j].Name
			})
		},
		genProducts(),
	))

	properties.Property("default sort preserves input order", prop.ForAll(
		func(products []domain.Product) bool {
			sorted := Apply(products, openFilter(products, SortDefault))
			if len(sorted) != len(products) {
				return false
			}
			for i := range sorted {
				if sorted[i].ID != products[i].ID {
					return false
				}
			}
			return true
		},
		genProducts(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	products := []domain.Product{
		{ID: uuid.New(), Name: "C", Price: 3},
		{ID: uuid.New(), Name: "A", Price: 1},
		{ID: uuid.New(), Name: "B", Price: 2},
	}
	original := make([]domain.Product, len(products))
	copy(original, products)

	Apply(products, Filter{MaxPrice: 10, Sort: SortNameAsc})

	for i := range products {
		if products[i].ID != original[i].ID {
			t.Fatal("Apply mutated its input slice")
		}
	}
}

func TestProperty_PaginationCoversTheSetExactlyOnce(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("pages partition the filtered set with 9 items per page", prop.ForAll(
		func(n int) bool {
			products := make([]domain.Product, n)
			for i := range products {
				products[i] = domain.Product{ID: uuid.New(), Price: float64(i + 1)}
			}

			totalPages := TotalPages(n)
			if totalPages != (n+PageSize-1)/PageSize {
				return false
			}

			seen := 0
			for page := 1; page <= totalPages; page++ {
				slice, tp := Paginate(products, page)
				if tp != totalPages {
					return false
				}
				if page < totalPages && len(slice) != PageSize {
					return false
				}
				if page == totalPages {
					expectLast := n - (totalPages-1)*PageSize
					if len(slice) != expectLast {
						return false
					}
				}
				seen += len(slice)
			}

			return seen == n
		},
		gen.IntRange(1, 200),
	))

	properties.Property("out-of-range pages clamp instead of erroring", prop.ForAll(
		func(n, page int) bool {
			products := make([]domain.Product, n)
			for i := range products {
				products[i] = domain.Product{ID: uuid.New()}
			}

			slice, totalPages := Paginate(products, page)
			if n == 0 {
				return len(slice) == 0 && totalPages == 0
			}
			return len(slice) >= 1 && len(slice) <= PageSize
		},
		gen.IntRange(0, 100),
		gen.IntRange(-10, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPaginateEmptySet(t *testing.T) {
	slice, totalPages := Paginate(nil, 1)
	if len(slice) != 0 {
		t.Errorf("expected empty slice, got %d items", len(slice))
	}
	if totalPages != 0 {
		t.Errorf("expected 0 pages, got %d", totalPages)
	}
}

func TestParseSortKey(t *testing.T) {
	cases := map[string]SortKey{
		"price-asc":  SortPriceAsc,
		"price-desc": SortPriceDesc,
		"name-asc":   SortNameAsc,
		"default":    SortDefault,
		"":           SortDefault,
		"bogus":      SortDefault,
	}
	for input, want := range cases {
		if got := ParseSortKey(input); got != want {
			t.Errorf("ParseSortKey(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestMaxObservedPrice(t *testing.T) {
	if got := MaxObservedPrice(nil); got != 0 {
		t.Errorf("empty set: expected 0, got %f", got)
	}

	products := []domain.Product{
		{Price: 50000}, {Price: 120000}, {Price: 75000},
	}
	if got := MaxObservedPrice(products); got != 120000 {
		t.Errorf("expected 120000, got %f", got)
	}
}
