package channel

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRmaNumber(t *testing.T) {
	assert.Equal(t, "RMA-RO-17", RmaNumber(17))
	assert.Equal(t, "RMA-RET-9", SubReturnNumber(9))
	// same input, same number
	assert.Equal(t, RmaNumber(17), RmaNumber(17))
}

func TestNewReturnAuthorization(t *testing.T) {
	orderID := uuid.New()

	t.Run("starts pending with zero amount", func(t *testing.T) {
		rma, err := NewReturnAuthorization(orderID, RmaNumber(1))
		assert.NoError(t, err)
		assert.Equal(t, RmaStatePending, rma.State)
		assert.True(t, rma.Amount.IsZero())
		assert.False(t, rma.IsReceived())
	})

	t.Run("rejects empty number", func(t *testing.T) {
		_, err := NewReturnAuthorization(orderID, "")
		assert.Error(t, err)
	})
}

func TestReturnAuthorization_MarkReceived(t *testing.T) {
	rma, _ := NewReturnAuthorization(uuid.New(), RmaNumber(1))

	assert.NoError(t, rma.MarkReceived())
	assert.True(t, rma.IsReceived())

	// terminal state
	assert.Error(t, rma.MarkReceived())
}

func TestReturnAuthorization_SetVariantQuantity(t *testing.T) {
	rma, _ := NewReturnAuthorization(uuid.New(), RmaNumber(1))
	variantID := uuid.New()

	t.Run("sets rather than adds", func(t *testing.T) {
		rma.SetVariantQuantity(variantID, 2)
		rma.SetVariantQuantity(variantID, 3)
		assert.Equal(t, 3, rma.QuantityForVariant(variantID))
		assert.Len(t, rma.Items, 1)
	})

	t.Run("negative quantities clamp to zero", func(t *testing.T) {
		rma.SetVariantQuantity(variantID, -5)
		assert.Equal(t, 0, rma.QuantityForVariant(variantID))
	})

	t.Run("zero quantity keeps the row", func(t *testing.T) {
		assert.Len(t, rma.Items, 1)
		rma.SetVariantQuantity(variantID, 4)
		assert.Equal(t, 4, rma.QuantityForVariant(variantID))
		assert.Len(t, rma.Items, 1)
	})

	t.Run("total sums across variants", func(t *testing.T) {
		other := uuid.New()
		rma.SetVariantQuantity(other, 2)
		assert.Equal(t, 6, rma.TotalQuantity())
	})
}

func TestReturnAuthorization_SetAmount(t *testing.T) {
	rma, _ := NewReturnAuthorization(uuid.New(), RmaNumber(1))

	assert.True(t, rma.SetAmount(dec("42.00")))
	assert.False(t, rma.SetAmount(dec("42.00")))
	assert.True(t, rma.SetAmount(dec("41.99")))
}
