package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cakeshop/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrBannerNotFound = errors.New("banner not found")
)

// BannerRepository defines the interface for banner data access
type BannerRepository interface {
	Create(ctx context.Context, banner *domain.Banner) error
	Update(ctx context.Context, banner *domain.Banner) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Banner, error)
	// ListActive returns active banners ordered by display_order, optionally
	// narrowed to one position slot.
	ListActive(ctx context.Context, position *domain.BannerPosition) ([]domain.Banner, error)
	// ListAll returns every banner for the admin console.
	ListAll(ctx context.Context) ([]domain.Banner, error)
}

type bannerRepository struct {
	db *sql.DB
}

// NewBannerRepository creates a new instance of BannerRepository
func NewBannerRepository(db *sql.DB) BannerRepository {
	return &bannerRepository{db: db}
}

const bannerColumns = `id, title, subtitle, description, image, link, position,
	is_active, display_order, created_at, updated_at`

// Create inserts a new banner using parameterized queries
func (r *bannerRepository) Create(ctx context.Context, banner *domain.Banner) error {
	query := `
		INSERT INTO banners (id, title, subtitle, description, image, link, position,
			is_active, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		banner.ID,
		banner.Title,
		banner.Subtitle,
		banner.Description,
		banner.Image,
		banner.Link,
		banner.Position,
		banner.IsActive,
		banner.DisplayOrder,
		banner.CreatedAt,
		banner.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create banner: %w", err)
	}

	return nil
}

// Update updates an existing banner
func (r *bannerRepository) Update(ctx context.Context, banner *domain.Banner) error {
	query := `
		UPDATE banners
		SET title = $2, subtitle = $3, description = $4, image = $5, link = $6,
		    position = $7, is_active = $8, display_order = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		banner.ID,
		banner.Title,
		banner.Subtitle,
		banner.Description,
		banner.Image,
		banner.Link,
		banner.Position,
		banner.IsActive,
		banner.DisplayOrder,
		banner.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update banner: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrBannerNotFound
	}

	return nil
}

// Delete removes a banner
func (r *bannerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM banners WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete banner: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrBannerNotFound
	}

	return nil
}

// FindByID retrieves a banner by ID
func (r *bannerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Banner, error) {
	query := fmt.Sprintf(`SELECT %s FROM banners WHERE id = $1`, bannerColumns)

	banner, err := scanBanner(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBannerNotFound
		}
		return nil, fmt.Errorf("failed to find banner by ID: %w", err)
	}

	return banner, nil
}

// ListActive retrieves active banners ordered for display
func (r *bannerRepository) ListActive(ctx context.Context, position *domain.BannerPosition) ([]domain.Banner, error) {
	args := []interface{}{}
	where := "WHERE is_active"
	if position != nil {
		where += " AND position = $1"
		args = append(args, *position)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM banners
		%s
		ORDER BY display_order ASC, created_at DESC
	`, bannerColumns, where)

	return r.queryBanners(ctx, query, args...)
}

// ListAll retrieves every banner, newest first
func (r *bannerRepository) ListAll(ctx context.Context) ([]domain.Banner, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM banners
		ORDER BY created_at DESC
	`, bannerColumns)

	return r.queryBanners(ctx, query)
}

func (r *bannerRepository) queryBanners(ctx context.Context, query string, args ...interface{}) ([]domain.Banner, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list banners: %w", err)
	}
	defer rows.Close()

	banners := []domain.Banner{}
	for rows.Next() {
		banner, err := scanBanner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan banner: %w", err)
		}
		banners = append(banners, *banner)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating banners: %w", err)
	}

	return banners, nil
}

func scanBanner(row rowScanner) (*domain.Banner, error) {
	banner := &domain.Banner{}
	err := row.Scan(
		&banner.ID,
		&banner.Title,
		&banner.Subtitle,
		&banner.Description,
		&banner.Image,
		&banner.Link,
		&banner.Position,
		&banner.IsActive,
		&banner.DisplayOrder,
		&banner.CreatedAt,
		&banner.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return banner, nil
}
