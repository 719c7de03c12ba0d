package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned when a requested product does not exist.
var ErrProductNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID         int64
	Name       string
	Price      decimal.Decimal
	CategoryID int64
}

// ProductRepository defines read operations for the product catalog.
type ProductRepository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	PriceOf(ctx context.Context, id int64) (decimal.Decimal, error)
}

// PriceResolver returns the authoritative current price of a product.
// Order assembly uses it to overwrite any client-supplied price.
type PriceResolver interface {
	Resolve(ctx context.Context, productID int64) (decimal.Decimal, error)
}

// RepoPriceResolver implements PriceResolver by delegating to a
// ProductRepository.
type RepoPriceResolver struct {
	products ProductRepository
}

// NewRepoPriceResolver creates a RepoPriceResolver backed by the given
// repository.
func NewRepoPriceResolver(products ProductRepository) *RepoPriceResolver {
	return &RepoPriceResolver{products: products}
}

// Resolve looks up the product price. It returns ErrProductNotFound when the
// product does not exist.
func (r *RepoPriceResolver) Resolve(ctx context.Context, productID int64) (decimal.Decimal, error) {
	price, err := r.products.PriceOf(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return decimal.Zero, ErrProductNotFound
		}
		return decimal.Zero, errors.Wrapf(err, "price of product %d", productID)
	}
	return price, nil
}
