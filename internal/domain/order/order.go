package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Order is the persisted aggregate: one customer, one payment, one or more
// items. The Order exclusively owns its Payment and Items; they point back
// at it by plain id only, assigned after the order row is inserted.
type Order struct {
	ID         int64
	CustomerID int64
	PlacedAt   time.Time
	Payment    Payment
	Items      []Item
}

// Item is a single order line. Price is the catalog price captured at
// assembly time and is immutable afterwards; Discount is always zero at
// placement.
type Item struct {
	OrderID   int64
	ProductID int64
	Price     decimal.Decimal
	Discount  decimal.Decimal
	Quantity  int
}

// Total returns the line total: (price - discount) * quantity.
func (i Item) Total() decimal.Decimal {
	return i.Price.Sub(i.Discount).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total sums the line totals of all items.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Total())
	}
	return total
}

// Tx is one placement transaction. Inserts must happen in dependency order:
// the order row first (which yields the id the other rows reference), then
// the payment, then the items.
type Tx interface {
	InsertOrder(ctx context.Context, o *Order) (int64, error)
	InsertPayment(ctx context.Context, p *Payment) (int64, error)
	InsertItems(ctx context.Context, items []Item) error
}

// Store provides the transactional boundary for order placement. If fn
// returns an error nothing written inside the transaction survives.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Repository defines read operations for persisted orders.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByCustomer(ctx context.Context, customerID int64, page PageRequest) ([]*Order, error)
}

// Notifier delivers the order confirmation to the customer. Delivery is
// best-effort: placement never fails or rolls back on a notifier error.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, o *Order) error
}
