package sync

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// LineItemInput is one authoritative line-item instruction from the channel.
// Amounts and quantities arrive as JSON strings or numbers interchangeably;
// decimal.Decimal accepts both.
type LineItemInput struct {
	Corr                  string          `json:"corr"`
	SKU                   string          `json:"sku"`
	Quantity              decimal.Decimal `json:"quantity"`
	UnitPrice             decimal.Decimal `json:"unit_price"`
	EstimatedUnitCost     decimal.Decimal `json:"estimated_unit_cost"`
	EstimatedCost         decimal.Decimal `json:"estimated_cost"`
	EstimatedExtendedCost decimal.Decimal `json:"estimated_extended_cost"`
	ApportionedShipAmt    decimal.Decimal `json:"apportioned_ship_amt"`
	DirectShipAmt         decimal.Decimal `json:"direct_ship_amt"`
	EstimatedShipDate     int64           `json:"estimated_ship_date"`
	Removed               bool            `json:"removed"`
}

// RmaItemInput claims a return quantity against one local line item. The
// line is resolved by correlation id when one is present, otherwise by
// channel_refnum, the local line id echoed back in LineItemResult.
type RmaItemInput struct {
	Corr          string          `json:"corr"`
	ChannelRefnum string          `json:"channel_refnum"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// SubReturnInput is a return nested under an RMA in the channel payload.
// Sub-returns already received locally contribute closed value and closed
// quantities that are subtracted to avoid double-counting.
type SubReturnInput struct {
	ID          int64            `json:"id"`
	RefundAmt   *decimal.Decimal `json:"refund_amt"`
	TaxAmt      *decimal.Decimal `json:"tax_amt"`
	ShippingAmt *decimal.Decimal `json:"shipping_amt"`
	Items       []RmaItemInput   `json:"items"`
}

// RmaInput is one external return-group to reconcile against local state
type RmaInput struct {
	ID          int64            `json:"id"`
	Items       []RmaItemInput   `json:"items"`
	Returns     []SubReturnInput `json:"returns"`
	RefundAmt   *decimal.Decimal `json:"refund_amt"`
	SubtotalAmt *decimal.Decimal `json:"subtotal_amt"`
	TaxAmt      *decimal.Decimal `json:"tax_amt"`
	ShippingAmt *decimal.Decimal `json:"shipping_amt"`
}

// OrderAmounts carries order-level amount fields from the channel
type OrderAmounts struct {
	ShippingAmt  *decimal.Decimal `json:"shipping_amt"`
	DiscountAmt  *decimal.Decimal `json:"discount_amt"`
	TaxAmt       *decimal.Decimal `json:"tax_amt"`
	DirectTaxAmt *decimal.Decimal `json:"direct_tax_amt"`
}

// Options is the free-form options map of a synchronize call. Unrecognized
// keys pass through untouched to the writeback hook.
type Options map[string]any

// AuthoritativeShipping reports whether the channel owns the order's
// shipping price. Channels serialize the flag loosely, so true, non-zero
// numbers and the strings strconv.ParseBool accepts all count as set.
func (o Options) AuthoritativeShipping() bool {
	switch v := o["ro_authoritative_ship"].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}

// SynchronizeRequest is the full payload of one synchronize call. A nil Rmas
// slice means no return action at all; an empty non-nil slice means the
// channel sent an explicit empty list.
type SynchronizeRequest struct {
	OrderRefnum string          `json:"order_refnum"`
	LineItems   []LineItemInput `json:"line_items"`
	Rmas        []RmaInput      `json:"rmas"`
	OrderAmts   OrderAmounts    `json:"order_amts"`
	Options     Options         `json:"options"`
}

// LineItemResult is the per-line outcome annotation returned to the channel
type LineItemResult struct {
	Corr      string          `json:"corr"`
	Refnum    string          `json:"channel_refnum"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SynchronizeResponse is the full outcome of one synchronize call
type SynchronizeResponse struct {
	Changed bool             `json:"changed"`
	Dump    map[string]any   `json:"dump"`
	Result  []LineItemResult `json:"result"`
}
