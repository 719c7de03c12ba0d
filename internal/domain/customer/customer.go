package customer

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/auth"
)

var (
	// ErrNotFound is returned when a requested customer does not exist.
	ErrNotFound = errors.New("customer not found")
	// ErrHasOrders is returned when deleting a customer that still has
	// orders referencing them.
	ErrHasOrders = errors.New("customer has related orders")
	// ErrEmailTaken is returned when creating or updating a customer with an
	// email already registered to another customer.
	ErrEmailTaken = errors.New("email already registered")
)

// Customer is a registered buyer. Order assembly treats it as read-only:
// it is looked up, never mutated.
type Customer struct {
	ID         int64
	Name       string
	Email      string
	Roles      []auth.Role
	PictureURL string
}

// Repository defines persistence operations for customers.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	ListPage(ctx context.Context, limit, offset int) ([]Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	UpdatePictureURL(ctx context.Context, id int64, url string) error
	Delete(ctx context.Context, id int64) error
}
