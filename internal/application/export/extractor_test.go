package export

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GudTech/spree-retailops/internal/domain/channel"
	"github.com/GudTech/spree-retailops/internal/domain/shared"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func exportableOrder(t *testing.T) *channel.Order {
	t.Helper()
	order, err := channel.NewOrder("R100200300")
	require.NoError(t, err)
	order.ID = uuid.New()
	order.Email = "buyer@example.com"
	order.State = "complete"
	order.ImportState = channel.ImportStateYes
	completed := time.Date(2015, 3, 14, 9, 26, 53, 0, time.UTC)
	order.CompletedAt = &completed

	variant := channel.Variant{BaseEntity: shared.NewBaseEntity(), SKU: "136270", Name: "Widget", Advisory: true}
	line, err := channel.NewLineItem(order.ID, variant, 2, dec("19.99"))
	require.NoError(t, err)
	line.Corr = "575714"
	order.LineItems = append(order.LineItems, *line)

	order.Shipments = append(order.Shipments, channel.Shipment{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    order.ID,
		Number:     "H100",
		State:      channel.ShipmentStateShipped,
		Cost:       dec("4.98"),
	})

	order.Payments = append(order.Payments, channel.Payment{
		BaseEntity:   shared.NewBaseEntity(),
		OrderID:      order.ID,
		Amount:       dec("44.96"),
		State:        "completed",
		MethodName:   "credit_card",
		CCBrand:      "visa",
		CCLastDigits: "4242",
	})
	order.Payments[0].HydrateSource()

	ship := &channel.Address{
		BaseEntity: shared.NewBaseEntity(),
		FirstName:  "Pat",
		LastName:   "Doe",
		City:       "Portland",
		StateName:  "Oregon",
		CountryISO: "US",
	}
	order.ShipAddress = ship
	order.ShipAddressID = &ship.ID

	return order
}

func TestDefaultExtractor(t *testing.T) {
	// the descriptor table keys slice-bearing aggregates; building it must
	// not trip on unhashable prototypes
	var e *Extractor
	require.NotPanics(t, func() { e = DefaultExtractor() })
	require.NotNil(t, e)
	assert.Same(t, e, DefaultExtractor())
}

func TestExtractor_OrderSnapshot(t *testing.T) {
	e := DefaultExtractor()
	order := exportableOrder(t)
	snap := e.OrderSnapshot(order)
	require.NotNil(t, snap)

	t.Run("scalar fields use snake_case keys and string amounts", func(t *testing.T) {
		assert.Equal(t, "R100200300", snap["refnum"])
		assert.Equal(t, "buyer@example.com", snap["email"])
		assert.Equal(t, order.ID.String(), snap["id"])
		assert.Equal(t, "2015-03-14T09:26:53Z", snap["completed_at"])
	})

	t.Run("line items expand with computed advisory flag", func(t *testing.T) {
		lines, ok := snap["line_items"].([]any)
		require.True(t, ok)
		require.Len(t, lines, 1)

		line := lines[0].(map[string]any)
		assert.Equal(t, "136270", line["sku"])
		assert.Equal(t, "575714", line["corr"])
		assert.Equal(t, "19.99", line["unit_price"])
		assert.Equal(t, true, line["advisory"])
		_, hasVariant := line["variant"]
		assert.False(t, hasVariant, "variant association is omitted")
	})

	t.Run("payment source dispatches on concrete type", func(t *testing.T) {
		payments := snap["payments"].([]any)
		require.Len(t, payments, 1)

		payment := payments[0].(map[string]any)
		assert.Equal(t, "credit_card", payment["method_class"])
		assert.Equal(t, "4242", payment["cc_last_digits"])

		source, ok := payment["source"].(map[string]any)
		require.True(t, ok, "credit card source walks through its own descriptor")
		assert.Equal(t, "visa", source["brand"])
		assert.Equal(t, "4242", source["last_digits"])
	})

	t.Run("addresses carry the computed state_text", func(t *testing.T) {
		addr, ok := snap["ship_address"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Oregon", addr["state_text"])
		assert.Equal(t, "US", addr["country_iso"])
	})

	t.Run("missing to-one relation is nil", func(t *testing.T) {
		assert.Nil(t, snap["bill_address"])
	})

	t.Run("empty to-many relation is an empty list", func(t *testing.T) {
		rmas, ok := snap["return_authorizations"].([]any)
		require.True(t, ok)
		assert.Empty(t, rmas)
	})
}

func TestExtractor_PanicBecomesErrorRecord(t *testing.T) {
	e := NewExtractor(map[any]Descriptor{
		&channel.Order{}: {
			Computed: map[string]ComputedFunc{
				"boom": func(any) any { panic("extraction exploded") },
			},
		},
	})

	order, _ := channel.NewOrder("R900")
	snap := e.OrderSnapshot(order)

	require.NotNil(t, snap)
	assert.Contains(t, snap["error"], "extraction exploded")
	assert.Equal(t, "R900", snap["number"])
	assert.NotEmpty(t, snap["trace"])
}

func TestExtractor_WalkUnknownType(t *testing.T) {
	e := DefaultExtractor()
	assert.Nil(t, e.Walk(nil))
	assert.Nil(t, e.Walk(42))
	assert.Nil(t, e.Walk(struct{ X int }{1}))
}

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Refnum":       "refnum",
		"SKU":          "sku",
		"CCBrand":      "cc_brand",
		"CCLastDigits": "cc_last_digits",
		"ShipAddress":  "ship_address",
		"ItemTotal":    "item_total",
		"ID":           "id",
	}
	for in, want := range cases {
		assert.Equal(t, want, snakeCase(in), "snakeCase(%q)", in)
	}
}

func TestExtractor_Snapshots(t *testing.T) {
	e := DefaultExtractor()
	orders := []channel.Order{*exportableOrder(t), *exportableOrder(t)}

	snaps := e.Snapshots(orders)
	require.Len(t, snaps, 2)
	for _, snap := range snaps {
		assert.Equal(t, "R100200300", snap["refnum"])
	}
}
