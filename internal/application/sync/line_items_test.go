package sync

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestStandardLineItemReconciler_Reconcile(t *testing.T) {
	ctx := context.Background()
	r := NewStandardLineItemReconciler(zap.NewNop())

	t.Run("matches by correlation id and updates fields", func(t *testing.T) {
		order := shippedOrder(t)
		order.LineItems[0].Corr = "575714"

		changed, results, err := r.Reconcile(ctx, order, []LineItemInput{{
			Corr:      "575714",
			SKU:       "136270",
			Quantity:  decimal.NewFromInt(2),
			UnitPrice: dec("17.99"),
		}})

		assert.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 2, order.LineItems[0].Quantity)
		assert.True(t, order.LineItems[0].UnitPrice.Equal(dec("17.99")))
		assert.Len(t, results, 1)
		assert.Equal(t, order.LineItems[0].ID.String(), results[0].Refnum)
	})

	t.Run("falls back to sku for uncorrelated lines and persists corr", func(t *testing.T) {
		order := shippedOrder(t)

		changed, _, err := r.Reconcile(ctx, order, []LineItemInput{{
			Corr:     "575714",
			SKU:      "136270",
			Quantity: decimal.NewFromInt(1),
		}})

		assert.NoError(t, err)
		assert.True(t, changed, "corr assignment alone is a change")
		assert.Equal(t, "575714", order.LineItems[0].Corr)
	})

	t.Run("removed flag deletes the line", func(t *testing.T) {
		order := shippedOrder(t)
		order.LineItems[0].Corr = "575714"

		changed, results, err := r.Reconcile(ctx, order, []LineItemInput{{
			Corr:    "575714",
			SKU:     "136270",
			Removed: true,
		}})

		assert.NoError(t, err)
		assert.True(t, changed)
		assert.Empty(t, order.LineItems)
		assert.Len(t, results, 1)
		assert.Empty(t, results[0].Refnum, "removed lines report no refnum")
	})

	t.Run("zero quantity never zeroes a line", func(t *testing.T) {
		order := shippedOrder(t)
		order.LineItems[0].Corr = "575714"
		order.LineItems[0].Quantity = 3

		_, _, err := r.Reconcile(ctx, order, []LineItemInput{{
			Corr:     "575714",
			SKU:      "136270",
			Quantity: decimal.Zero,
		}})

		assert.NoError(t, err)
		assert.Equal(t, 3, order.LineItems[0].Quantity)
	})

	t.Run("unmatched input is reported without creating lines", func(t *testing.T) {
		order := shippedOrder(t)

		changed, results, err := r.Reconcile(ctx, order, []LineItemInput{{
			Corr:     "999999",
			SKU:      "NOPE",
			Quantity: decimal.NewFromInt(1),
		}})

		assert.NoError(t, err)
		assert.False(t, changed)
		assert.Len(t, order.LineItems, 1)
		assert.Len(t, results, 1)
		assert.Empty(t, results[0].Refnum)
	})

	t.Run("ship date arrives as unix seconds", func(t *testing.T) {
		order := shippedOrder(t)
		order.LineItems[0].Corr = "575714"
		when := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)

		changed, _, err := r.Reconcile(ctx, order, []LineItemInput{{
			Corr:              "575714",
			SKU:               "136270",
			Quantity:          decimal.NewFromInt(1),
			EstimatedShipDate: when.Unix(),
		}})

		assert.NoError(t, err)
		assert.True(t, changed)
		assert.NotNil(t, order.LineItems[0].ExpectedShipDate)
		assert.True(t, order.LineItems[0].ExpectedShipDate.Equal(when))
	})

	t.Run("sku fallback never steals a line correlated elsewhere", func(t *testing.T) {
		order := shippedOrder(t)
		order.LineItems[0].Corr = "previous-cycle"

		_, results, err := r.Reconcile(ctx, order, []LineItemInput{{
			Corr:     "575714",
			SKU:      "136270",
			Quantity: decimal.NewFromInt(2),
		}})

		assert.NoError(t, err)
		assert.Equal(t, "previous-cycle", order.LineItems[0].Corr)
		assert.Empty(t, results[0].Refnum)
	})
}
