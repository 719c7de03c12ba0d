package catalog

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrCategoryNotFound is returned when a requested category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryInUse is returned when deleting a category that still has
	// products assigned to it.
	ErrCategoryInUse = errors.New("category has products")
)

// Category groups products in the catalog.
type Category struct {
	ID   int64
	Name string
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	ListPage(ctx context.Context, limit, offset int) ([]Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
}
