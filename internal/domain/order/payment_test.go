package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentInitialize_Card(t *testing.T) {
	p := Payment{Method: PaymentCard, Installments: 3}

	require.NoError(t, p.Initialize(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 0))
	assert.Equal(t, PaymentPending, p.Status)
	assert.Equal(t, 3, p.Installments)
	assert.True(t, p.DueDate.IsZero())
}

func TestPaymentInitialize_CardInvalidInstallments(t *testing.T) {
	for _, n := range []int{0, -1} {
		p := Payment{Method: PaymentCard, Installments: n}
		err := p.Initialize(time.Now(), 0)
		require.ErrorIs(t, err, ErrInvalidInstallments)
	}
}

func TestPaymentInitialize_BilledDueDate(t *testing.T) {
	issued := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)
	p := Payment{Method: PaymentBilled}

	require.NoError(t, p.Initialize(issued, DefaultDueLeadTime))
	assert.Equal(t, PaymentPending, p.Status)
	assert.Equal(t, time.Date(2024, 1, 8, 10, 30, 0, 0, time.UTC), p.DueDate)
	assert.Zero(t, p.Installments)
}

func TestPaymentInitialize_BilledDefaultLead(t *testing.T) {
	issued := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	p := Payment{Method: PaymentBilled}

	require.NoError(t, p.Initialize(issued, 0))
	assert.Equal(t, issued.Add(7*24*time.Hour), p.DueDate)
}

func TestPaymentInitialize_BilledDropsInstallments(t *testing.T) {
	p := Payment{Method: PaymentBilled, Installments: 12}

	require.NoError(t, p.Initialize(time.Now(), time.Hour))
	assert.Zero(t, p.Installments)
}

func TestPaymentInitialize_UnknownMethod(t *testing.T) {
	p := Payment{Method: "cheque"}
	err := p.Initialize(time.Now(), 0)
	require.ErrorIs(t, err, ErrUnknownPaymentMethod)
}
