package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (customer_id, placed_at)
		VALUES ($1, $2) RETURNING id`

	insertPaymentSQL = `INSERT INTO payments (order_id, method, status, installments, due_date)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	getOrderSQL = `SELECT id, customer_id, placed_at FROM orders WHERE id = $1`

	getPaymentSQL = `SELECT id, method, status, COALESCE(installments, 0), due_date
		FROM payments WHERE order_id = $1`

	getItemsSQL = `SELECT order_id, product_id, price, discount, quantity
		FROM order_items WHERE order_id = $1 ORDER BY product_id`

	listOrdersSQL = `SELECT id, customer_id, placed_at FROM orders
		WHERE customer_id = $1 ORDER BY %s %s, id DESC LIMIT $2 OFFSET $3`

	listPaymentsSQL = `SELECT id, order_id, method, status, COALESCE(installments, 0), due_date
		FROM payments WHERE order_id = ANY($1)`

	listItemsSQL = `SELECT order_id, product_id, price, discount, quantity
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, product_id`
)

var (
	_ order.Store      = (*OrderRepository)(nil)
	_ order.Repository = (*OrderRepository)(nil)
)

// OrderRepository implements order.Store and order.Repository backed by
// PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// InTx runs fn inside a single transaction. A rollback on an already
// committed transaction returns pgx.ErrTxClosed, which is ignored.
func (r *OrderRepository) InTx(ctx context.Context, fn func(tx order.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&orderTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// orderTx adapts a pgx.Tx to order.Tx.
type orderTx struct {
	tx pgx.Tx
}

// InsertOrder writes the order row and returns the server-assigned id.
func (t *orderTx) InsertOrder(ctx context.Context, o *order.Order) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, insertOrderSQL, o.CustomerID, o.PlacedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}
	return id, nil
}

// InsertPayment writes the payment row. Card payments store a NULL due date,
// billed payments a NULL installment count.
func (t *orderTx) InsertPayment(ctx context.Context, p *order.Payment) (int64, error) {
	var (
		installments any
		dueDate      any
	)
	if p.Installments > 0 {
		installments = p.Installments
	}
	if !p.DueDate.IsZero() {
		dueDate = p.DueDate
	}

	var id int64
	err := t.tx.QueryRow(ctx, insertPaymentSQL,
		p.OrderID, string(p.Method), string(p.Status), installments, dueDate,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting payment for order %d: %w", p.OrderID, err)
	}
	return id, nil
}

// InsertItems writes all item rows in one COPY.
func (t *orderTx) InsertItems(ctx context.Context, items []order.Item) error {
	rows := make([][]any, len(items))
	for i, it := range items {
		rows[i] = []any{it.OrderID, it.ProductID, it.Price, it.Discount, it.Quantity}
	}

	_, err := t.tx.CopyFrom(
		ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "product_id", "price", "discount", "quantity"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copying order items: %w", err)
	}
	return nil
}

// GetByID loads one full aggregate: order row, its payment, its items.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	err := r.pool.QueryRow(ctx, getOrderSQL, id).Scan(&o.ID, &o.CustomerID, &o.PlacedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	var (
		method, status string
		due            *time.Time
	)
	err = r.pool.QueryRow(ctx, getPaymentSQL, id).Scan(
		&o.Payment.ID, &method, &status, &o.Payment.Installments, &due,
	)
	if err != nil {
		return nil, fmt.Errorf("getting payment of order %d: %w", id, err)
	}
	o.Payment.OrderID = id
	o.Payment.Method = order.PaymentMethod(method)
	o.Payment.Status = order.PaymentStatus(status)
	if due != nil {
		o.Payment.DueDate = *due
	}

	rows, err := r.pool.Query(ctx, getItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting items of order %d: %w", id, err)
	}
	o.Items, err = pgx.CollectRows(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("scanning items of order %d: %w", id, err)
	}

	return &o, nil
}

// ListByCustomer returns one page of a customer's orders with payments and
// items attached. Page ordering follows the validated sort column and
// direction; ids break ties so pages are stable.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64, page order.PageRequest) ([]*order.Order, error) {
	direction := "DESC"
	if page.Direction == order.SortAsc {
		direction = "ASC"
	}
	// SortColumn comes from the whitelist in PageRequest, never from raw input.
	query := fmt.Sprintf(listOrdersSQL, page.SortColumn(), direction)

	rows, err := r.pool.Query(ctx, query, customerID, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("listing orders of customer %d: %w", customerID, err)
	}
	defer rows.Close()

	orders := make([]*order.Order, 0, page.Size)
	byID := make(map[int64]*order.Order, page.Size)
	ids := make([]int64, 0, page.Size)
	for rows.Next() {
		o := &order.Order{}
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.PlacedAt); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order rows: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	pRows, err := r.pool.Query(ctx, listPaymentsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer pRows.Close()
	for pRows.Next() {
		var (
			p              order.Payment
			method, status string
			due            *time.Time
		)
		if err := pRows.Scan(&p.ID, &p.OrderID, &method, &status, &p.Installments, &due); err != nil {
			return nil, fmt.Errorf("scanning payment row: %w", err)
		}
		p.Method = order.PaymentMethod(method)
		p.Status = order.PaymentStatus(status)
		if due != nil {
			p.DueDate = *due
		}
		if o := byID[p.OrderID]; o != nil {
			o.Payment = p
		}
	}
	if err := pRows.Err(); err != nil {
		return nil, fmt.Errorf("payment rows: %w", err)
	}

	iRows, err := r.pool.Query(ctx, listItemsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	items, err := pgx.CollectRows(iRows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("scanning item rows: %w", err)
	}
	for _, it := range items {
		if o := byID[it.OrderID]; o != nil {
			o.Items = append(o.Items, it)
		}
	}

	return orders, nil
}

func scanItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(&it.OrderID, &it.ProductID, &it.Price, &it.Discount, &it.Quantity)
	return it, err
}
