package cart

import (
	"github.com/shopspring/decimal"

	"github.com/rosema/rosema-backend/pkg/enums"
)

// State is the persisted part of an engine: its lines and manual discount.
type State struct {
	Items    []LineItem `json:"items"`
	Discount Discount   `json:"discount"`
}

// Snapshot is an immutable view of an engine with its derived totals.
type Snapshot struct {
	Surface        enums.Surface   `json:"surface"`
	Items          []LineItem      `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Discount       *Discount       `json:"discount,omitempty"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"item_count"`
}

// IsEmpty reports whether the snapshot has no lines.
func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

func subtotalOf(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func itemCountOf(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, item.clone())
	}
	return out
}

// normalizeState drops lines that could not have been produced by an engine
// and clamps quantities to the recorded stock ceiling.
func normalizeState(state State) State {
	items := make([]LineItem, 0, len(state.Items))
	for _, item := range state.Items {
		if item.LineID == "" || item.Quantity <= 0 {
			continue
		}
		if item.StockCeiling <= 0 {
			item.StockCeiling = item.Quantity
		}
		if item.Quantity > item.StockCeiling {
			item.Quantity = item.StockCeiling
		}
		items = append(items, item.clone())
	}
	discount := state.Discount
	if discount.Amount.IsNegative() {
		discount = Discount{}
	}
	return State{Items: items, Discount: discount}
}
