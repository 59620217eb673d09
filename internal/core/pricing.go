package core

// OrderTotals is the pricing breakdown of an order.
type OrderTotals struct {
	Subtotal   Money `json:"subtotal"`
	GrandTotal Money `json:"grandTotal"`
	Remaining  Money `json:"remaining"`
}

// groupPrice resolves the price for a quantity group: the group-specific
// price when present, otherwise the legacy single unit price. Orders
// created before prices were split only carry UnitPrice.
func groupPrice(split *Money, legacy Money) Money {
	if split != nil {
		return *split
	}
	return legacy
}

// StandardQuantity flattens the nested size map (category -> label -> qty)
// and sums every leaf quantity. A nil map counts as zero.
func StandardQuantity(sizes map[string]map[string]int) int64 {
	var total int64
	for _, labels := range sizes {
		for _, qty := range labels {
			if qty > 0 {
				total += int64(qty)
			}
		}
	}
	return total
}

// PricePart computes the subtotal of a single part by summing its three
// quantity groups: tallied sizes and specific-dimension entries at their
// group prices, plus named detail entries at the single unit price. A part
// normally fills only the group matching its input type; the other groups
// are empty and contribute zero. Missing collections never error.
func PricePart(p Part) Money {
	standard := StandardQuantity(p.Sizes) * groupPrice(p.UnitPriceStandard, p.UnitPrice).Cents
	specific := int64(len(p.Specifics)) * groupPrice(p.UnitPriceSpecific, p.UnitPrice).Cents
	detailed := int64(len(p.Details)) * p.UnitPrice.Cents
	return Money{Cents: standard + specific + detailed}
}

// PriceOrder computes the order subtotal across parts, the grand total
// after discount (clamped at zero) and the remaining balance after the
// down payment (not clamped; a negative remainder is shown as-is).
func PriceOrder(parts []Part, discount, downPayment Money) OrderTotals {
	var subtotal int64
	for _, p := range parts {
		subtotal += PricePart(p).Cents
	}
	grand := subtotal - discount.Cents
	if grand < 0 {
		grand = 0
	}
	return OrderTotals{
		Subtotal:   Money{Cents: subtotal},
		GrandTotal: Money{Cents: grand},
		Remaining:  Money{Cents: grand - downPayment.Cents},
	}
}

// Totals is a convenience wrapper pricing a whole order.
func (o Order) Totals() OrderTotals {
	return PriceOrder(o.Parts, o.Discount, o.DownPayment)
}
