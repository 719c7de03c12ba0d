package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/catalog"
)

const (
	listCategoriesSQL     = `SELECT id, name FROM categories ORDER BY id`
	listCategoriesPageSQL = `SELECT id, name FROM categories ORDER BY id LIMIT $1 OFFSET $2`
	getCategorySQL        = `SELECT id, name FROM categories WHERE id = $1`
	insertCategorySQL     = `INSERT INTO categories (name) VALUES ($1) RETURNING id`
	updateCategorySQL     = `UPDATE categories SET name = $2 WHERE id = $1`
	deleteCategorySQL     = `DELETE FROM categories WHERE id = $1`
)

// pgForeignKeyViolation is the PostgreSQL error code for FK violations.
const pgForeignKeyViolation = "23503"

var _ catalog.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository implements catalog.CategoryRepository backed by
// PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// List returns all categories ordered by id.
func (r *CategoryRepository) List(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

// ListPage returns one page of categories ordered by id.
func (r *CategoryRepository) ListPage(ctx context.Context, limit, offset int) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesPageSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing categories page: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

// GetByID returns a single category by its identifier.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*catalog.Category, error) {
	var c catalog.Category
	err := r.pool.QueryRow(ctx, getCategorySQL, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("getting category %d: %w", id, err)
	}
	return &c, nil
}

// Create inserts a new category and fills in the assigned id.
func (r *CategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	err := r.pool.QueryRow(ctx, insertCategorySQL, c.Name).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("creating category %q: %w", c.Name, err)
	}
	return nil
}

// Update renames an existing category.
func (r *CategoryRepository) Update(ctx context.Context, c *catalog.Category) error {
	tag, err := r.pool.Exec(ctx, updateCategorySQL, c.ID, c.Name)
	if err != nil {
		return fmt.Errorf("updating category %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category. A foreign key violation (products still
// assigned) maps to catalog.ErrCategoryInUse.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteCategorySQL, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return catalog.ErrCategoryInUse
		}
		return fmt.Errorf("deleting category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row pgx.CollectableRow) (catalog.Category, error) {
	var c catalog.Category
	err := row.Scan(&c.ID, &c.Name)
	return c, err
}
