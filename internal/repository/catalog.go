package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront/internal/model"
)

const categoryColumns = `id, name, slug, COALESCE(icon, ''), display_order, is_active, created_at, updated_at`

const productColumns = `id, category_id, name, COALESCE(description, ''), COALESCE(image, ''), price, stock,
	is_visible, COALESCE(stripe_product_id, ''), COALESCE(stripe_price_id, ''), created_at, updated_at`

// CategoryUpdate содержит изменяемые поля категории.
type CategoryUpdate struct {
	Name         string
	Icon         string
	DisplayOrder int
	IsActive     bool
}

// ProductInput содержит изменяемые поля товара.
type ProductInput struct {
	CategoryID      int64
	Name            string
	Description     string
	Image           string
	Price           decimal.Decimal
	Stock           int
	IsVisible       bool
	StripeProductID string
	StripePriceID   string
}

// ProductFilter задаёт выборку товаров.
type ProductFilter struct {
	CategoryID  *int64
	VisibleOnly bool
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var c model.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &c.DisplayOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Image, &p.Price, &p.Stock,
		&p.IsVisible, &p.StripeProductID, &p.StripePriceID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListCategories возвращает категории в порядке отображения.
func (r *PostgresRepository) ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+categoryColumns+`
		 FROM categories
		 WHERE is_active OR NOT $1
		 ORDER BY display_order, id`,
		activeOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	res := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		res = append(res, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// GetCategory возвращает категорию по идентификатору.
func (r *PostgresRepository) GetCategory(ctx context.Context, id int64, activeOnly bool) (*model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND (is_active OR NOT $2)`,
		id, activeOnly,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// CreateCategory создаёт категорию.
func (r *PostgresRepository) CreateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	created, err := scanCategory(r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, slug, icon, display_order, is_active)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		 RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Icon, c.DisplayOrder, c.IsActive,
	))
	if err != nil {
		return nil, fmt.Errorf("create category: %w", mapConstraintError(err))
	}
	return created, nil
}

// UpdateCategory обновляет изменяемые поля категории. Категории не удаляются, только деактивируются.
func (r *PostgresRepository) UpdateCategory(ctx context.Context, id int64, upd CategoryUpdate) (*model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`UPDATE categories
		 SET name = $2, icon = NULLIF($3, ''), display_order = $4, is_active = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING `+categoryColumns,
		id, upd.Name, upd.Icon, upd.DisplayOrder, upd.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// ListProducts возвращает товары по фильтру.
func (r *PostgresRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE (is_visible OR NOT $1)
		   AND ($2::bigint IS NULL OR category_id = $2)
		 ORDER BY id`,
		filter.VisibleOnly, filter.CategoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	res := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		res = append(res, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// GetProduct возвращает товар по идентификатору.
func (r *PostgresRepository) GetProduct(ctx context.Context, id int64, visibleOnly bool) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND (is_visible OR NOT $2)`,
		id, visibleOnly,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// CreateProduct создаёт товар.
func (r *PostgresRepository) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`INSERT INTO products (category_id, name, description, image, price, stock, is_visible, stripe_product_id, stripe_price_id)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''))
		 RETURNING `+productColumns,
		in.CategoryID, in.Name, in.Description, in.Image, in.Price, in.Stock, in.IsVisible, in.StripeProductID, in.StripePriceID,
	))
	if err != nil {
		return nil, fmt.Errorf("create product: %w", mapConstraintError(err))
	}
	return p, nil
}

// UpdateProduct обновляет изменяемые поля товара.
func (r *PostgresRepository) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`UPDATE products
		 SET category_id = $2, name = $3, description = NULLIF($4, ''), image = NULLIF($5, ''), price = $6,
		     stock = $7, is_visible = $8, stripe_product_id = NULLIF($9, ''), stripe_price_id = NULLIF($10, ''),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+productColumns,
		id, in.CategoryID, in.Name, in.Description, in.Image, in.Price, in.Stock, in.IsVisible, in.StripeProductID, in.StripePriceID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update product: %w", mapConstraintError(err))
	}
	return p, nil
}
