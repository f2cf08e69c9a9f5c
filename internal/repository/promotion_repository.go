package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"cakeshop/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrPromotionNotFound = errors.New("promotion not found")
)

// PromotionRepository defines the interface for promotion data access
type PromotionRepository interface {
	Create(ctx context.Context, promotion *domain.Promotion) error
	Update(ctx context.Context, promotion *domain.Promotion) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Promotion, error)
	// List returns promotions newest first; activeOnly narrows to is_active.
	List(ctx context.Context, activeOnly bool) ([]domain.Promotion, error)
}

type promotionRepository struct {
	db *sql.DB
}

// NewPromotionRepository creates a new instance of PromotionRepository
func NewPromotionRepository(db *sql.DB) PromotionRepository {
	return &promotionRepository{db: db}
}

const promotionColumns = `id, title, description, discount_type, discount_value,
	start_date, end_date, product_ids, category_ids, is_active, created_at, updated_at`

// Create inserts a new promotion using parameterized queries
func (r *promotionRepository) Create(ctx context.Context, promotion *domain.Promotion) error {
	productIDs, categoryIDs, err := marshalIDScopes(promotion)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO promotions (id, title, description, discount_type, discount_value,
			start_date, end_date, product_ids, category_ids, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		promotion.ID,
		promotion.Title,
		promotion.Description,
		promotion.DiscountType,
		promotion.DiscountValue,
		promotion.StartDate,
		promotion.EndDate,
		productIDs,
		categoryIDs,
		promotion.IsActive,
		promotion.CreatedAt,
		promotion.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create promotion: %w", err)
	}

	return nil
}

// Update updates an existing promotion
func (r *promotionRepository) Update(ctx context.Context, promotion *domain.Promotion) error {
	productIDs, categoryIDs, err := marshalIDScopes(promotion)
	if err != nil {
		return err
	}

	query := `
		UPDATE promotions
		SET title = $2, description = $3, discount_type = $4, discount_value = $5,
		    start_date = $6, end_date = $7, product_ids = $8, category_ids = $9,
		    is_active = $10, updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		promotion.ID,
		promotion.Title,
		promotion.Description,
		promotion.DiscountType,
		promotion.DiscountValue,
		promotion.StartDate,
		promotion.EndDate,
		productIDs,
		categoryIDs,
		promotion.IsActive,
		promotion.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update promotion: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPromotionNotFound
	}

	return nil
}

// Delete removes a promotion
func (r *promotionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM promotions WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete promotion: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPromotionNotFound
	}

	return nil
}

// FindByID retrieves a promotion by ID
func (r *promotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Promotion, error) {
	query := fmt.Sprintf(`SELECT %s FROM promotions WHERE id = $1`, promotionColumns)

	promotion, err := scanPromotion(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPromotionNotFound
		}
		return nil, fmt.Errorf("failed to find promotion by ID: %w", err)
	}

	return promotion, nil
}

// List retrieves promotions, newest first
func (r *promotionRepository) List(ctx context.Context, activeOnly bool) ([]domain.Promotion, error) {
	where := ""
	if activeOnly {
		where = "WHERE is_active"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM promotions
		%s
		ORDER BY created_at DESC
	`, promotionColumns, where)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	defer rows.Close()

	promotions := []domain.Promotion{}
	for rows.Next() {
		promotion, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promotion: %w", err)
		}
		promotions = append(promotions, *promotion)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating promotions: %w", err)
	}

	return promotions, nil
}

func scanPromotion(row rowScanner) (*domain.Promotion, error) {
	promotion := &domain.Promotion{}
	var productIDs, categoryIDs []byte

	err := row.Scan(
		&promotion.ID,
		&promotion.Title,
		&promotion.Description,
		&promotion.DiscountType,
		&promotion.DiscountValue,
		&promotion.StartDate,
		&promotion.EndDate,
		&productIDs,
		&categoryIDs,
		&promotion.IsActive,
		&promotion.CreatedAt,
		&promotion.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(productIDs, &promotion.ProductIDs); err != nil {
		return nil, fmt.Errorf("failed to decode promotion product ids: %w", err)
	}
	if err := json.Unmarshal(categoryIDs, &promotion.CategoryIDs); err != nil {
		return nil, fmt.Errorf("failed to decode promotion category ids: %w", err)
	}

	return promotion, nil
}

func marshalIDScopes(promotion *domain.Promotion) ([]byte, []byte, error) {
	if promotion.ProductIDs == nil {
		promotion.ProductIDs = []uuid.UUID{}
	}
	if promotion.CategoryIDs == nil {
		promotion.CategoryIDs = []uuid.UUID{}
	}

	productIDs, err := json.Marshal(promotion.ProductIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode promotion product ids: %w", err)
	}
	categoryIDs, err := json.Marshal(promotion.CategoryIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode promotion category ids: %w", err)
	}

	return productIDs, categoryIDs, nil
}
