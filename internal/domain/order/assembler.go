package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-api/internal/domain/auth"
	"github.com/xenking/storefront-api/internal/domain/catalog"
	"github.com/xenking/storefront-api/internal/domain/customer"
)

// Sentinel errors for order assembly.
var (
	ErrEmptyItems      = errors.New("items required")
	ErrCustomerUnknown = errors.New("customer not found")
)

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// ItemRequest is one requested order line. Price and Discount may arrive
// from the client but are never trusted: assembly overwrites both.
type ItemRequest struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
	Discount  decimal.Decimal
}

// PaymentRequest selects the payment variant for a new order.
type PaymentRequest struct {
	Method       PaymentMethod
	Installments int
}

// AssembleRequest holds the client input for placing an order.
type AssembleRequest struct {
	CustomerID int64
	Items      []ItemRequest
	Payment    PaymentRequest
}

// Assembler builds a fully linked Order aggregate from a request. It is pure
// aside from read-only customer and price lookups: a failure anywhere aborts
// before anything is persisted.
type Assembler struct {
	customers customer.Repository
	prices    catalog.PriceResolver
	dueLead   time.Duration
}

// NewAssembler creates an Assembler. A non-positive dueLead falls back to
// DefaultDueLeadTime for billed payments.
func NewAssembler(customers customer.Repository, prices catalog.PriceResolver, dueLead time.Duration) *Assembler {
	return &Assembler{
		customers: customers,
		prices:    prices,
		dueLead:   dueLead,
	}
}

// Assemble builds the Order aggregate:
//
//  1. authorizes the caller against the target customer (admin or self) and
//     resolves the customer (ErrCustomerUnknown when absent),
//  2. stamps the creation timestamp with now, a server-supplied clock value,
//     never client input,
//  3. links and initializes the payment using that timestamp as issue date,
//  4. prices every item via the resolver, discarding client prices and
//     resetting discounts to zero.
//
// The returned Order is internally consistent and not yet persisted.
func (a *Assembler) Assemble(ctx context.Context, req AssembleRequest, now time.Time) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: it.ProductID}
		}
	}

	if err := auth.AuthorizeSelf(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	cust, err := a.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, ErrCustomerUnknown
		}
		return nil, errors.Wrapf(err, "resolve customer %d", req.CustomerID)
	}

	o := &Order{
		CustomerID: cust.ID,
		PlacedAt:   now,
		Payment: Payment{
			Method:       req.Payment.Method,
			Installments: req.Payment.Installments,
		},
	}

	if err := o.Payment.Initialize(o.PlacedAt, a.dueLead); err != nil {
		return nil, err
	}

	o.Items = make([]Item, len(req.Items))
	for i, it := range req.Items {
		price, err := a.prices.Resolve(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				return nil, &ProductNotFoundError{ProductID: it.ProductID}
			}
			return nil, errors.Wrapf(err, "resolve price of product %d", it.ProductID)
		}
		o.Items[i] = Item{
			ProductID: it.ProductID,
			Price:     price,
			Discount:  decimal.Zero,
			Quantity:  it.Quantity,
		}
	}

	return o, nil
}
