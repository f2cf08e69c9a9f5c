package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the bakery catalog
type Product struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Slug          string     `json:"slug" db:"slug"`
	Price         float64    `json:"price" db:"price"`
	OriginalPrice *float64   `json:"originalPrice,omitempty" db:"original_price"`
	Images        []string   `json:"images" db:"images"`
	CategoryID    uuid.UUID  `json:"category" db:"category_id"`
	Description   string     `json:"description,omitempty" db:"description"`
	Rating        *float64   `json:"rating,omitempty" db:"rating"`
	IsActive      bool       `json:"isActive" db:"is_active"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description,omitempty" db:"description"`
	Image       string    `json:"image,omitempty" db:"image"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	// ProductCount is derived per read from the active products referencing
	// this category; it is never stored.
	ProductCount int       `json:"productCount" db:"-"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// DiscountType distinguishes percentage discounts from fixed amounts
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Promotion represents an admin-managed promotion. Promotions are
// informational: nothing applies DiscountValue to stored product prices.
type Promotion struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	Title         string       `json:"title" db:"title"`
	Description   string       `json:"description,omitempty" db:"description"`
	DiscountType  DiscountType `json:"discountType" db:"discount_type"`
	DiscountValue float64      `json:"discountValue" db:"discount_value"`
	StartDate     time.Time    `json:"startDate" db:"start_date"`
	EndDate       time.Time    `json:"endDate" db:"end_date"`
	ProductIDs    []uuid.UUID  `json:"products" db:"product_ids"`
	CategoryIDs   []uuid.UUID  `json:"categories" db:"category_ids"`
	IsActive      bool         `json:"isActive" db:"is_active"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time    `json:"updatedAt" db:"updated_at"`
}

// BannerPosition is the placement slot a banner renders in
type BannerPosition string

const (
	BannerHero      BannerPosition = "hero"
	BannerSidebar   BannerPosition = "sidebar"
	BannerFooter    BannerPosition = "footer"
	BannerPromotion BannerPosition = "promotion"
)

// Banner represents a storefront banner. DisplayOrder is a sort key with no
// uniqueness guarantee.
type Banner struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	Title        string         `json:"title" db:"title"`
	Subtitle     string         `json:"subtitle,omitempty" db:"subtitle"`
	Description  string         `json:"description,omitempty" db:"description"`
	Image        string         `json:"image" db:"image"`
	Link         string         `json:"link,omitempty" db:"link"`
	Position     BannerPosition `json:"position" db:"position"`
	IsActive     bool           `json:"isActive" db:"is_active"`
	DisplayOrder int            `json:"order" db:"display_order"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" db:"updated_at"`
}
