package auth

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
)

// ErrUnauthorized is returned when an operation requires a caller identity
// that is missing or insufficient.
var ErrUnauthorized = errors.New("unauthorized")

// Role is a permission level granted to a customer.
type Role string

const (
	// RoleCustomer is the default role for registered customers.
	RoleCustomer Role = "CUSTOMER"
	// RoleAdmin grants access to other customers' data.
	RoleAdmin Role = "ADMIN"
)

// Identity is the authenticated caller. It is carried explicitly in the
// request context rather than through ambient global state.
type Identity struct {
	CustomerID int64
	Name       string
	Roles      []Role
}

// HasRole reports whether the identity holds the given role.
func (id *Identity) HasRole(r Role) bool {
	return slices.Contains(id.Roles, r)
}

// AuthorizeSelf verifies that the caller may act on the given customer's
// data: the context identity must belong to that customer or hold the ADMIN
// role. It returns ErrUnauthorized otherwise.
func AuthorizeSelf(ctx context.Context, customerID int64) error {
	ident, ok := IdentityFrom(ctx)
	if !ok || (!ident.HasRole(RoleAdmin) && ident.CustomerID != customerID) {
		return ErrUnauthorized
	}
	return nil
}

type identityKey struct{}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extracts the caller identity from the context. The second
// return value is false when the request is unauthenticated.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok
}
