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
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// ListByCategory returns the full active product set scoped to a
	// category, newest first. A nil categoryID means all products. Filtering,
	// sorting and pagination happen in the catalog package, not in SQL.
	ListByCategory(ctx context.Context, categoryID *uuid.UUID) ([]domain.Product, error)
	// ListAll returns every product including inactive ones, for the admin
	// console.
	ListAll(ctx context.Context) ([]domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, slug, price, original_price, images, category_id,
	description, rating, is_active, created_at, updated_at`

// Create inserts a new product using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	images, err := marshalImages(product.Images)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (id, name, slug, price, original_price, images, category_id,
			description, rating, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Slug,
		product.Price,
		product.OriginalPrice,
		images,
		product.CategoryID,
		product.Description,
		product.Rating,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	images, err := marshalImages(product.Images)
	if err != nil {
		return err
	}

	query := `
		UPDATE products
		SET name = $2, slug = $3, price = $4, original_price = $5, images = $6,
		    category_id = $7, description = $8, rating = $9, is_active = $10,
		    updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Slug,
		product.Price,
		product.OriginalPrice,
		images,
		product.CategoryID,
		product.Description,
		product.Rating,
		product.IsActive,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// ListByCategory retrieves the active product set, optionally category scoped
func (r *productRepository) ListByCategory(ctx context.Context, categoryID *uuid.UUID) ([]domain.Product, error) {
	args := []interface{}{}
	where := "WHERE is_active"
	if categoryID != nil {
		where += " AND category_id = $1"
		args = append(args, *categoryID)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY created_at DESC
	`, productColumns, where)

	return r.queryProducts(ctx, query, args...)
}

// ListAll retrieves every product, newest first
func (r *productRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		ORDER BY created_at DESC
	`, productColumns)

	return r.queryProducts(ctx, query)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var images []byte

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Slug,
		&product.Price,
		&product.OriginalPrice,
		&images,
		&product.CategoryID,
		&product.Description,
		&product.Rating,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(images, &product.Images); err != nil {
		return nil, fmt.Errorf("failed to decode product images: %w", err)
	}

	return product, nil
}

func marshalImages(images []string) ([]byte, error) {
	if images == nil {
		images = []string{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product images: %w", err)
	}
	return data, nil
}
