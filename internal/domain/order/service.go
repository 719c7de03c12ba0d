package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// notifyTimeout bounds the post-commit confirmation delivery.
const notifyTimeout = 30 * time.Second

// PlacementService persists assembled orders and triggers the confirmation
// notification. It owns the transactional boundary: order, payment and items
// are written in one transaction, in that order, all-or-nothing.
type PlacementService struct {
	store    Store
	notifier Notifier
	lg       *zap.Logger
	metrics  *PlacementMetrics

	// dispatch runs the post-commit notification. Defaults to a goroutine;
	// tests replace it with an inline call.
	dispatch func(fn func())
}

// NewPlacementService creates a PlacementService.
func NewPlacementService(store Store, notifier Notifier, lg *zap.Logger) *PlacementService {
	return &PlacementService{
		store:    store,
		notifier: notifier,
		lg:       lg,
		dispatch: func(fn func()) { go fn() },
	}
}

// SetMetrics attaches placement instruments. A nil receiver field disables
// recording, so metrics stay optional in tests.
func (s *PlacementService) SetMetrics(m *PlacementMetrics) {
	s.metrics = m
}

// Place persists an order previously produced by the Assembler.
//
// Persistence ordering inside one transaction:
//
//  1. the order row first, which yields the server-assigned id,
//  2. the payment, now referencing that id,
//  3. all items, now referencing that id.
//
// If any step fails the whole transaction rolls back and the error is
// surfaced; nothing is retried here. The confirmation notification runs
// strictly after commit and never affects the result.
func (s *PlacementService) Place(ctx context.Context, o *Order) (*Order, error) {
	err := s.store.InTx(ctx, func(tx Tx) error {
		id, err := tx.InsertOrder(ctx, o)
		if err != nil {
			return errors.Wrap(err, "insert order")
		}
		o.ID = id
		o.Payment.OrderID = id
		for i := range o.Items {
			o.Items[i].OrderID = id
		}

		paymentID, err := tx.InsertPayment(ctx, &o.Payment)
		if err != nil {
			return errors.Wrap(err, "insert payment")
		}
		o.Payment.ID = paymentID

		if err := tx.InsertItems(ctx, o.Items); err != nil {
			return errors.Wrap(err, "insert items")
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "place order")
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int64("order.id", o.ID),
		attribute.String("payment.method", string(o.Payment.Method)),
	)
	s.metrics.record(ctx, o)

	s.dispatch(func() { s.notify(o) })
	return o, nil
}

// notify delivers the confirmation on its own context so a finished request
// cannot cancel it. Failures are logged and dropped: the order is already
// committed and must never appear failed to the caller.
func (s *PlacementService) notify(o *Order) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := s.notifier.SendOrderConfirmation(ctx, o); err != nil {
		s.lg.Warn("order confirmation failed",
			zap.Int64("order_id", o.ID),
			zap.Int64("customer_id", o.CustomerID),
			zap.Error(err),
		)
	}
}
