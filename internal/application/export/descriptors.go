package export

import (
	"sync"

	"github.com/GudTech/spree-retailops/internal/domain/channel"
)

// orderDescriptors is the static table describing how the order graph
// flattens for the channel. Built once; never mutated afterwards.
// Prototypes are pointers: the aggregate types carry slice fields and are
// not usable as map keys by value.
func orderDescriptors() map[any]Descriptor {
	return map[any]Descriptor{
		&channel.Order{}: {
			Relations: []string{
				"LineItems", "Adjustments", "Shipments",
				"ShipAddress", "BillAddress", "Payments",
				"ReturnAuthorizations",
			},
		},
		&channel.LineItem{}: {
			Omit: []string{"Variant"},
			Computed: map[string]ComputedFunc{
				"advisory": func(entity any) any {
					return entity.(*channel.LineItem).Variant.Advisory
				},
			},
		},
		&channel.Adjustment{}: {},
		&channel.Shipment{}:   {},
		&channel.Address{}: {
			Computed: map[string]ComputedFunc{
				"state_text": func(entity any) any {
					return entity.(*channel.Address).StateName
				},
			},
		},
		&channel.Payment{}: {
			Relations: []string{"Source"},
			Computed: map[string]ComputedFunc{
				"method_class": func(entity any) any {
					return entity.(*channel.Payment).MethodName
				},
			},
		},
		&channel.CreditCard{}:  {},
		&channel.StoreCredit{}: {},
		&channel.ReturnAuthorization{}: {
			Relations: []string{"Items"},
		},
		&channel.ReturnAuthorizationItem{}: {},
	}
}

var (
	defaultExtractor     *Extractor
	defaultExtractorOnce sync.Once
)

// DefaultExtractor returns the process-wide extractor for the order graph
func DefaultExtractor() *Extractor {
	defaultExtractorOnce.Do(func() {
		defaultExtractor = NewExtractor(orderDescriptors())
	})
	return defaultExtractor
}

// OrderSnapshot flattens one order for the channel. Panics during the walk
// become an error record keyed by the order's refnum.
func (e *Extractor) OrderSnapshot(order *channel.Order) map[string]any {
	return e.safeSnapshot(order, order.Refnum)
}

// Snapshots flattens a batch of orders; a failure in one order yields an
// error record in its slot and the batch continues.
func (e *Extractor) Snapshots(orders []channel.Order) []map[string]any {
	out := make([]map[string]any, 0, len(orders))
	for idx := range orders {
		out = append(out, e.OrderSnapshot(&orders[idx]))
	}
	return out
}
