package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreditApply(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("consumes and appends a trail line", func(t *testing.T) {
		credit := &Credit{Amount: 10000}

		assert.NoError(t, credit.Apply(4000, "registration 1", at))
		assert.Equal(t, int64(4000), credit.AmountUsed)
		assert.Equal(t, int64(6000), credit.Balance())
		assert.Equal(t, "2026-03-01T12:00:00Z: applied 4000 (registration 1)", credit.Notes)

		assert.NoError(t, credit.Apply(6000, "registration 2", at.Add(time.Hour)))
		assert.Equal(t, int64(0), credit.Balance())
		assert.Contains(t, credit.Notes, "\n2026-03-01T13:00:00Z: applied 6000 (registration 2)")
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		credit := &Credit{Amount: 10000}
		assert.ErrorIs(t, credit.Apply(0, "", at), ErrInvalidAmount)
		assert.ErrorIs(t, credit.Apply(-100, "", at), ErrInvalidAmount)
		assert.Equal(t, int64(0), credit.AmountUsed)
	})

	t.Run("rejects spending past the balance", func(t *testing.T) {
		credit := &Credit{Amount: 10000, AmountUsed: 8000}
		assert.ErrorIs(t, credit.Apply(3000, "", at), ErrExceedsBalance)
		assert.Equal(t, int64(8000), credit.AmountUsed)
	})
}
