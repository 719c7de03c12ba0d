package order

import (
	"time"

	"github.com/go-faster/errors"
)

// DefaultDueLeadTime is the billing lead time applied to billed payments
// when no other lead time is configured.
const DefaultDueLeadTime = 7 * 24 * time.Hour

// PaymentMethod enumerates the supported payment variants.
type PaymentMethod string

const (
	// PaymentCard is an immediate card payment in a number of installments.
	PaymentCard PaymentMethod = "card"
	// PaymentBilled is a deferred payment with a computed due date.
	PaymentBilled PaymentMethod = "billed"
)

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	// PaymentPending is the initial status of every payment.
	PaymentPending PaymentStatus = "PENDING"
	// PaymentSettled marks a completed payment.
	PaymentSettled PaymentStatus = "SETTLED"
	// PaymentCancelled marks a cancelled payment.
	PaymentCancelled PaymentStatus = "CANCELLED"
)

var (
	// ErrUnknownPaymentMethod is returned for a payment method outside the
	// closed variant set. It indicates a programming error upstream.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	// ErrInvalidInstallments is returned when a card payment carries a
	// non-positive installment count.
	ErrInvalidInstallments = errors.New("installments must be greater than 0")
)

// Payment is the single payment of an order. Method selects the variant:
// Installments is meaningful only for card payments, DueDate only for billed
// ones. OrderID is set together with Order.Payment, never independently.
type Payment struct {
	ID           int64
	OrderID      int64
	Method       PaymentMethod
	Status       PaymentStatus
	Installments int
	DueDate      time.Time
}

// Initialize computes the variant-specific derived fields of a freshly
// assembled payment. Every payment starts PENDING. Billed payments get
// dueDate = issueDate + lead; no further bound-checking against the current
// date is performed, the rule is intentionally deterministic. A non-positive
// lead falls back to DefaultDueLeadTime.
func (p *Payment) Initialize(issueDate time.Time, lead time.Duration) error {
	switch p.Method {
	case PaymentCard:
		if p.Installments <= 0 {
			return ErrInvalidInstallments
		}
		p.Status = PaymentPending
		p.DueDate = time.Time{}
	case PaymentBilled:
		if lead <= 0 {
			lead = DefaultDueLeadTime
		}
		p.Status = PaymentPending
		p.Installments = 0
		p.DueDate = issueDate.Add(lead)
	default:
		return errors.Wrapf(ErrUnknownPaymentMethod, "%q", p.Method)
	}
	return nil
}
