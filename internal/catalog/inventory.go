package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/rosema/rosema-backend/pkg/enums"
)

// InventoryStats summarizes the catalog for the POS dashboard. Value is
// price times stock, summed.
type InventoryStats struct {
	TotalProducts int64           `json:"total_products"`
	TotalStock    int64           `json:"total_stock"`
	TotalValue    decimal.Decimal `json:"total_value"`
	Featured      int64           `json:"featured_products"`
	OnSale        int64           `json:"on_sale_products"`
	OutOfStock    int64           `json:"out_of_stock"`
	Categories    []CategoryStats `json:"categories"`
}

type CategoryStats struct {
	Category enums.ProductCategory `json:"category"`
	Products int64                 `json:"products"`
	Stock    int64                 `json:"stock"`
	Value    decimal.Decimal       `json:"value"`
}
