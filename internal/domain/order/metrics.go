package order

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PlacementMetrics records placement outcomes.
type PlacementMetrics struct {
	placed metric.Int64Counter
	total  metric.Float64Histogram
}

// NewPlacementMetrics registers the placement instruments on meter.
func NewPlacementMetrics(meter metric.Meter) (*PlacementMetrics, error) {
	placed, err := meter.Int64Counter("orders.placed",
		metric.WithDescription("Number of orders placed"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "orders.placed counter")
	}
	total, err := meter.Float64Histogram("orders.total",
		metric.WithDescription("Order total amount"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "orders.total histogram")
	}
	return &PlacementMetrics{placed: placed, total: total}, nil
}

func (m *PlacementMetrics) record(ctx context.Context, o *Order) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("payment.method", string(o.Payment.Method)),
	)
	m.placed.Add(ctx, 1, attrs)
	m.total.Record(ctx, o.Total().InexactFloat64(), attrs)
}
