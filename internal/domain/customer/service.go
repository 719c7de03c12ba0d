package customer

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/auth"
)

// Service wraps the customer repository with the access policy: a customer
// may only read their own record unless they hold the ADMIN role.
type Service struct {
	customers Repository
}

// NewService creates a customer Service.
func NewService(customers Repository) *Service {
	return &Service{customers: customers}
}

// Find returns the customer with the given id. The caller must be an admin
// or the customer themselves.
func (s *Service) Find(ctx context.Context, id int64) (*Customer, error) {
	if err := auth.AuthorizeSelf(ctx, id); err != nil {
		return nil, err
	}

	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get customer %d", id)
	}
	return c, nil
}

// FindByEmail returns the customer registered under the given email address.
// The caller must be an admin or the owner of the address.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Customer, error) {
	c, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get customer by email")
	}

	if err := auth.AuthorizeSelf(ctx, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

// Create registers a new customer. The id is assigned by the repository;
// any client-supplied id is discarded.
func (s *Service) Create(ctx context.Context, c *Customer) (*Customer, error) {
	c.ID = 0
	if len(c.Roles) == 0 {
		c.Roles = []auth.Role{auth.RoleCustomer}
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the mutable fields (name, email) of an existing customer.
// The access policy of Find applies.
func (s *Service) Update(ctx context.Context, c *Customer) (*Customer, error) {
	existing, err := s.Find(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	existing.Name = c.Name
	existing.Email = c.Email
	if err := s.customers.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes a customer. Admin only. Fails with ErrHasOrders while any
// order still references the customer.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ident, ok := auth.IdentityFrom(ctx)
	if !ok || !ident.HasRole(auth.RoleAdmin) {
		return auth.ErrUnauthorized
	}

	if _, err := s.customers.GetByID(ctx, id); err != nil {
		return err
	}
	return s.customers.Delete(ctx, id)
}

// List returns all customers. Admin only.
func (s *Service) List(ctx context.Context) ([]Customer, error) {
	ident, ok := auth.IdentityFrom(ctx)
	if !ok || !ident.HasRole(auth.RoleAdmin) {
		return nil, auth.ErrUnauthorized
	}
	return s.customers.List(ctx)
}

// ListPage returns one page of customers. Admin only.
func (s *Service) ListPage(ctx context.Context, limit, offset int) ([]Customer, error) {
	ident, ok := auth.IdentityFrom(ctx)
	if !ok || !ident.HasRole(auth.RoleAdmin) {
		return nil, auth.ErrUnauthorized
	}
	return s.customers.ListPage(ctx, limit, offset)
}

// SetPicture stores the profile picture URL for a customer. The caller must
// be the customer themselves or an admin.
func (s *Service) SetPicture(ctx context.Context, id int64, url string) error {
	if err := auth.AuthorizeSelf(ctx, id); err != nil {
		return err
	}
	return s.customers.UpdatePictureURL(ctx, id, url)
}
