package models

import "time"

// Product carries the pricing-relevant fields of a catalog product.
// PriceUnit must resolve to exactly one measure (by name or short name); that
// measure is the product's base measure. PriceMatrix holds explicit per-measure
// price overrides keyed by measure ID and wins over computed conversions.
type Product struct {
	ID          int             `json:"id" example:"1"`
	Name        string          `json:"name" example:"Basmati Rice"`
	SKU         string          `json:"sku" example:"RICE-BAS-01"`
	Description string          `json:"description,omitempty"`
	BasePrice   float64         `json:"base_price" example:"8.5"`
	PriceUnit   string          `json:"price_unit" example:"kg"`
	Currency    string          `json:"currency" example:"USD"`
	PriceMatrix map[int]float64 `json:"price_matrix,omitempty"`
	CategoryID  int             `json:"category_id,omitempty"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PricePreview is the server-side conversion result for one (product, measure)
// pair, served to the UI so live subtotals match what persistence will store.
type PricePreview struct {
	ProductID  int     `json:"product_id"`
	MeasureID  int     `json:"measure_id"`
	Available  bool    `json:"available"`
	UnitPrice  float64 `json:"unit_price,omitempty"`
	Quantity   int     `json:"quantity,omitempty"`
	TotalPrice float64 `json:"total_price,omitempty"`
	Currency   string  `json:"currency"`
}
