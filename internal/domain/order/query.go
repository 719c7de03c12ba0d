package order

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/auth"
)

// QueryService reads persisted orders. Single-order lookup is public by id;
// the paginated history is scoped to the authenticated caller.
type QueryService struct {
	orders Repository
}

// NewQueryService creates a QueryService.
func NewQueryService(orders Repository) *QueryService {
	return &QueryService{orders: orders}
}

// FindByID returns the order with the given id, or ErrNotFound.
func (s *QueryService) FindByID(ctx context.Context, id int64) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %d", id)
	}
	return o, nil
}

// PageForCurrentUser returns one page of the calling customer's own orders.
// It fails with auth.ErrUnauthorized when no identity is present and with
// an InvalidPageError for malformed paging or sorting parameters. Orders of
// other customers are never returned, whatever the request asks for.
func (s *QueryService) PageForCurrentUser(ctx context.Context, page PageRequest) ([]*Order, error) {
	ident, ok := auth.IdentityFrom(ctx)
	if !ok {
		return nil, auth.ErrUnauthorized
	}

	if err := page.Normalize(); err != nil {
		return nil, err
	}

	list, err := s.orders.ListByCustomer(ctx, ident.CustomerID, page)
	if err != nil {
		return nil, errors.Wrapf(err, "list orders of customer %d", ident.CustomerID)
	}
	return list, nil
}
