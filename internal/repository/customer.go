package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/auth"
	"github.com/xenking/storefront-api/internal/domain/customer"
)

const (
	getCustomerSQL = `SELECT id, name, email, roles, picture_url
		FROM customers WHERE id = $1`

	getCustomerByEmailSQL = `SELECT id, name, email, roles, picture_url
		FROM customers WHERE email = $1`

	listCustomersSQL = `SELECT id, name, email, roles, picture_url
		FROM customers ORDER BY id`

	listCustomersPageSQL = `SELECT id, name, email, roles, picture_url
		FROM customers ORDER BY id LIMIT $1 OFFSET $2`

	insertCustomerSQL = `INSERT INTO customers (name, email, roles)
		VALUES ($1, $2, $3) RETURNING id`

	updateCustomerSQL = `UPDATE customers SET name = $2, email = $3 WHERE id = $1`

	updateCustomerPictureSQL = `UPDATE customers SET picture_url = $2 WHERE id = $1`

	deleteCustomerSQL = `DELETE FROM customers WHERE id = $1`
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations (duplicate email).
const pgUniqueViolation = "23505"

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// GetByID returns a single customer by id.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	c, err := r.queryOne(ctx, getCustomerSQL, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByEmail returns the customer registered under the given email.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	c, err := r.queryOne(ctx, getCustomerByEmailSQL, email)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CustomerRepository) queryOne(ctx context.Context, sql string, arg any) (*customer.Customer, error) {
	var (
		c     customer.Customer
		roles []string
	)
	err := r.pool.QueryRow(ctx, sql, arg).Scan(&c.ID, &c.Name, &c.Email, &roles, &c.PictureURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer: %w", err)
	}
	c.Roles = toRoles(roles)
	return &c, nil
}

// List returns all customers ordered by id.
func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.pool.Query(ctx, listCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

// ListPage returns one page of customers ordered by id.
func (r *CustomerRepository) ListPage(ctx context.Context, limit, offset int) ([]customer.Customer, error) {
	rows, err := r.pool.Query(ctx, listCustomersPageSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing customers page: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

// Create inserts a new customer and fills in the assigned id. A duplicate
// email maps to customer.ErrEmailTaken.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	err := r.pool.QueryRow(ctx, insertCustomerSQL, c.Name, c.Email, fromRoles(c.Roles)).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return customer.ErrEmailTaken
		}
		return fmt.Errorf("creating customer %q: %w", c.Email, err)
	}
	return nil
}

// Update replaces name and email of an existing customer.
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	tag, err := r.pool.Exec(ctx, updateCustomerSQL, c.ID, c.Name, c.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return customer.ErrEmailTaken
		}
		return fmt.Errorf("updating customer %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}

// UpdatePictureURL stores the profile picture URL.
func (r *CustomerRepository) UpdatePictureURL(ctx context.Context, id int64, url string) error {
	tag, err := r.pool.Exec(ctx, updateCustomerPictureSQL, id, url)
	if err != nil {
		return fmt.Errorf("updating picture of customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}

// Delete removes a customer. A foreign key violation (orders still
// referencing the customer) maps to customer.ErrHasOrders.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteCustomerSQL, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return customer.ErrHasOrders
		}
		return fmt.Errorf("deleting customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var (
		c     customer.Customer
		roles []string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &roles, &c.PictureURL)
	c.Roles = toRoles(roles)
	return c, err
}

func toRoles(in []string) []auth.Role {
	out := make([]auth.Role, len(in))
	for i, r := range in {
		out[i] = auth.Role(r)
	}
	return out
}

func fromRoles(in []auth.Role) []string {
	out := make([]string, len(in))
	for i, r := range in {
		out[i] = string(r)
	}
	return out
}
