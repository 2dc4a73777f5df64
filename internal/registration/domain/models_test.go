package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name    string
		current Status
		total   int64
		paid    int64
		want    Status
	}{
		{"nothing paid stays pending", StatusPending, 10000, 0, StatusPending},
		{"partial payment", StatusPending, 10000, 4000, StatusPartiallyPaid},
		{"paid in full", StatusPending, 10000, 10000, StatusConfirmed},
		{"overpaid still confirmed", StatusPartiallyPaid, 10000, 12000, StatusConfirmed},
		{"refund below total drops back", StatusConfirmed, 10000, 6000, StatusPartiallyPaid},
		{"refund to zero drops to pending", StatusConfirmed, 10000, 0, StatusPending},
		{"zero-price registration confirms", StatusPending, 0, 0, StatusConfirmed},
		{"cancelled is sticky", StatusCancelled, 10000, 10000, StatusCancelled},
		{"waiting is sticky even when paid", StatusWaiting, 10000, 10000, StatusWaiting},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(tc.current, tc.total, tc.paid))
		})
	}
}

func TestStatusOccupies(t *testing.T) {
	assert.True(t, StatusConfirmed.Occupies())
	assert.True(t, StatusPartiallyPaid.Occupies())
	assert.False(t, StatusPending.Occupies())
	assert.False(t, StatusWaiting.Occupies())
	assert.False(t, StatusCancelled.Occupies())
}
