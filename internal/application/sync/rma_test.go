package sync

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/GudTech/spree-retailops/internal/domain/channel"
)

func TestService_reconcileRMA(t *testing.T) {
	ctx := context.Background()

	claim := func(corr string, qty int64) RmaInput {
		return RmaInput{
			ID:    42,
			Items: []RmaItemInput{{Corr: corr, Quantity: decimal.NewFromInt(qty)}},
		}
	}

	t.Run("creates an rma for claimed quantity", func(t *testing.T) {
		repo := new(MockOrderRepository)
		order := shippedOrder(t)
		order.LineItems[0].Corr = "575714"
		order.LineItems[0].Quantity = 3
		service := newTestService(repo)

		repo.On("SaveReturnAuthorization", ctx, mock.AnythingOfType("*channel.ReturnAuthorization")).Return(nil)

		changed, err := service.reconcileRMA(ctx, repo, order, claim("575714", 2))

		assert.NoError(t, err)
		assert.True(t, changed)
		rma := order.FindReturnAuthorization("RMA-RO-42")
		assert.NotNil(t, rma)
		assert.Equal(t, 2, rma.QuantityForVariant(order.LineItems[0].VariantID))
		repo.AssertExpectations(t)
	})

	t.Run("claim resolves by channel_refnum when corr is absent", func(t *testing.T) {
		repo := new(MockOrderRepository)
		order := shippedOrder(t)
		order.LineItems[0].Corr = ""
		order.LineItems[0].Quantity = 3
		service := newTestService(repo)

		repo.On("SaveReturnAuthorization", ctx, mock.AnythingOfType("*channel.ReturnAuthorization")).Return(nil)

		in := RmaInput{
			ID: 42,
			Items: []RmaItemInput{{
				ChannelRefnum: order.LineItems[0].ID.String(),
				Quantity:      decimal.NewFromInt(2),
			}},
		}

		changed, err := service.reconcileRMA(ctx, repo, order, in)

		assert.NoError(t, err)
		assert.True(t, changed)
		rma := order.FindReturnAuthorization("RMA-RO-42")
		assert.NotNil(t, rma)
		assert.Equal(t, 2, rma.QuantityForVariant(order.LineItems[0].VariantID))
	})

	t.Run("no-op before anything has shipped", func(t *testing.T) {
		repo := new(MockOrderRepository)
		order := shippedOrder(t)
		order.LineItems[0].Corr = "575714"
		order.Shipments[0].State = channel.ShipmentStatePending
		service := newTestService(repo)

		changed, err := service.reconcileRMA(ctx, repo, order, claim("575714", 2))

		assert.NoError(t, err)
		assert.False(t, changed)
		assert.Empty(t, order.ReturnAuthorizations)
	})

	t.Run("received rma is never mutated", func(t *testing.T) {
		repo := new(MockOrderRepository)
		order := shippedOrder(t)
		order.LineItems[0].Corr = "575714"
		service := newTestService(repo)

		rma, _ := channel.NewReturnAuthorization(order.ID, channel.RmaNumber(42))
		assert.NoError(t, rma.MarkReceived())
		order.AddReturnAuthorization(*rma)

		changed, err := service.reconcileRMA(ctx, repo, order, claim("575714", 2))

		assert.NoError(t, err)
		assert.False(t, changed)
		repo.AssertNotCalled(t, "SaveReturnAuthorization", mock.Anything, mock.Anything)
	})

	t.Run("claim with no outstanding quantity creates nothing", func(t *testing.T) {
		repo := new(MockOrderRepository)
		order := shippedOrder(t)
		order.LineItems[0].Corr = "575714"
		service := newTestService(repo)

		// the whole claim is already covered by a received sub-return
		sub, _ := channel.NewReturnAuthorization(order.ID, channel.SubReturnNumber(7))
		assert.NoError(t, sub.MarkReceived())
		order.AddReturnAuthorization(*sub)

		in := claim("575714", 2)
		in.Returns = []SubReturnInput{{
			ID:    7,
			Items: []RmaItemInput{{Corr: "575714", Quantity: decimal.NewFromInt(2)}},
		}}

		changed, err := service.reconcileRMA(ctx, repo, order, in)

		assert.NoError(t, err)
		assert.False(t, changed)
		assert.Nil(t, order.FindReturnAuthorization("RMA-RO-42"))
	})

	t.Run("fully closed claim deletes the existing rma", func(t *testing.T) {
		repo := new(MockOrderRepository)
		order := shippedOrder(t)
		order.LineItems[0].Corr = "575714"
		service := newTestService(repo)

		existing, _ := channel.NewReturnAuthorization(order.ID, channel.RmaNumber(42))
		existing.SetVariantQuantity(order.LineItems[0].VariantID, 2)
		order.AddReturnAuthorization(*existing)

		sub, _ := channel.NewReturnAuthorization(order.ID, channel.SubReturnNumber(7))
		assert.NoError(t, sub.MarkReceived())
		order.AddReturnAuthorization(*sub)

		repo.On("DeleteReturnAuthorization", ctx, mock.AnythingOfType("*channel.ReturnAuthorization")).Return(nil)

		in := claim("575714", 2)
		in.Returns = []SubReturnInput{{
			ID:    7,
			Items: []RmaItemInput{{Corr: "575714", Quantity: decimal.NewFromInt(2)}},
		}}

		changed, err := service.reconcileRMA(ctx, repo, order, in)

		assert.NoError(t, err)
		assert.True(t, changed)
		assert.Nil(t, order.FindReturnAuthorization("RMA-RO-42"))
		repo.AssertExpectations(t)
	})

	t.Run("amount is refund net of tax and shipping", func(t *testing.T) {
		repo := new(MockOrderRepository)
		order := shippedOrder(t)
		order.LineItems[0].Corr = "575714"
		order.LineItems[0].Quantity = 3
		service := newTestService(repo)

		repo.On("SaveReturnAuthorization", ctx, mock.AnythingOfType("*channel.ReturnAuthorization")).Return(nil)

		in := claim("575714", 2)
		in.RefundAmt = decPtr("50.00")
		in.TaxAmt = decPtr("5.00")
		in.ShippingAmt = decPtr("3.00")

		changed, err := service.reconcileRMA(ctx, repo, order, in)

		assert.NoError(t, err)
		assert.True(t, changed)
		rma := order.FindReturnAuthorization("RMA-RO-42")
		assert.True(t, rma.Amount.Equal(dec("42.00")), "amount %s", rma.Amount)
	})

	t.Run("without tax the refund is taken as already net", func(t *testing.T) {
		repo := new(MockOrderRepository)
		order := shippedOrder(t)
		order.LineItems[0].Corr = "575714"
		service := newTestService(repo)

		repo.On("SaveReturnAuthorization", ctx, mock.AnythingOfType("*channel.ReturnAuthorization")).Return(nil)

		in := claim("575714", 1)
		in.RefundAmt = decPtr("50.00")
		in.ShippingAmt = decPtr("3.00")

		_, err := service.reconcileRMA(ctx, repo, order, in)

		assert.NoError(t, err)
		rma := order.FindReturnAuthorization("RMA-RO-42")
		assert.True(t, rma.Amount.Equal(dec("50.00")), "amount %s", rma.Amount)
	})

	t.Run("received sub-return value reduces the rma amount", func(t *testing.T) {
		repo := new(MockOrderRepository)
		order := shippedOrder(t)
		order.LineItems[0].Corr = "575714"
		order.LineItems[0].Quantity = 4
		service := newTestService(repo)

		sub, _ := channel.NewReturnAuthorization(order.ID, channel.SubReturnNumber(7))
		assert.NoError(t, sub.MarkReceived())
		order.AddReturnAuthorization(*sub)

		repo.On("SaveReturnAuthorization", ctx, mock.AnythingOfType("*channel.ReturnAuthorization")).Return(nil)

		in := claim("575714", 3)
		in.RefundAmt = decPtr("60.00")
		in.Returns = []SubReturnInput{{
			ID:        7,
			RefundAmt: decPtr("20.00"),
			Items:     []RmaItemInput{{Corr: "575714", Quantity: decimal.NewFromInt(1)}},
		}}

		changed, err := service.reconcileRMA(ctx, repo, order, in)

		assert.NoError(t, err)
		assert.True(t, changed)
		rma := order.FindReturnAuthorization("RMA-RO-42")
		// 3 claimed minus 1 already received
		assert.Equal(t, 2, rma.QuantityForVariant(order.LineItems[0].VariantID))
		// 60 claimed minus 20 already refunded
		assert.True(t, rma.Amount.Equal(dec("40.00")), "amount %s", rma.Amount)
	})
}
