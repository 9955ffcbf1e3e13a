package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	p, err := NewPayment(uuid.New(), decimal.NewFromInt(100), PaymentTypePrepayment, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPending, p.Status)
	assert.False(t, p.PaymentDate.IsZero())

	_, err = NewPayment(uuid.New(), decimal.Zero, PaymentTypeFull, time.Now())
	assert.Error(t, err)
	_, err = NewPayment(uuid.New(), decimal.NewFromInt(1), "barter", time.Now())
	assert.Error(t, err)
}

func TestPayment_SetBankDetails(t *testing.T) {
	p, _ := NewPayment(uuid.New(), decimal.NewFromInt(1), PaymentTypeFull, time.Now())

	require.NoError(t, p.SetBankDetails(BankDetails{BIC: "044525225", Account: "40702810400000012345"}))
	assert.Error(t, p.SetBankDetails(BankDetails{BIC: "12"}))
	assert.Error(t, p.SetBankDetails(BankDetails{Account: "123"}))
}

func TestPaidTotal(t *testing.T) {
	orderID := uuid.New()
	mk := func(amount int64, typ PaymentType, status PaymentStatus) Payment {
		p, _ := NewPayment(orderID, decimal.NewFromInt(amount), typ, time.Now())
		p.Status = status
		return *p
	}

	total := PaidTotal([]Payment{
		mk(100, PaymentTypePrepayment, PaymentStatusCompleted),
		mk(50, PaymentTypePartial, PaymentStatusCompleted),
		mk(30, PaymentTypeRefund, PaymentStatusCompleted),
		mk(999, PaymentTypeFull, PaymentStatusPending),
	})
	assert.True(t, total.Equal(decimal.NewFromInt(120)), total.String())
}
