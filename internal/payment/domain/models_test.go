package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferType(t *testing.T) {
	cases := []struct {
		name       string
		total      int64
		paidBefore int64
		amount     int64
		want       Type
	}{
		{"full price in one go", 10000, 0, 10000, TypeFull},
		{"remainder of a started plan", 10000, 4000, 6000, TypeRemainingBalance},
		{"first partial payment", 10000, 0, 4000, TypeDeposit},
		{"middle installment", 10000, 2000, 3000, TypeInstallment},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, InferType(tc.total, tc.paidBefore, tc.amount))
		})
	}
}

func TestRefundable(t *testing.T) {
	assert.Equal(t, int64(10000), (&Payment{Amount: 10000}).Refundable())
	assert.Equal(t, int64(4000), (&Payment{Amount: 10000, RefundedAmount: 6000}).Refundable())
	assert.Equal(t, int64(0), (&Payment{Amount: 10000, RefundedAmount: 10000}).Refundable())

	// negative entries are never refundable themselves
	assert.Equal(t, int64(0), (&Payment{Amount: -5000}).Refundable())
}
