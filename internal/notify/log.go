package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/domain/order"
)

var _ order.Notifier = (*LogNotifier)(nil)

// LogNotifier records confirmations in the log instead of delivering them.
// Used when no SMTP server is configured.
type LogNotifier struct {
	lg *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(lg *zap.Logger) *LogNotifier {
	return &LogNotifier{lg: lg}
}

func (n *LogNotifier) SendOrderConfirmation(_ context.Context, o *order.Order) error {
	n.lg.Info("order confirmation",
		zap.Int64("order_id", o.ID),
		zap.Int64("customer_id", o.CustomerID),
		zap.String("total", o.Total().StringFixed(2)),
	)
	return nil
}
