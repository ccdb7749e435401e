// Package pricing turns a scaled bill of materials into a priced quote
// summary, converting material costs into the quote currency.
package pricing

import "context"

// Defaults are the process-wide pricing defaults, loaded once at startup.
// Markup and VAT are fractional (0.0-1.0).
type Defaults struct {
	Currency  string
	LaborRate float64
	MarkupPct float64
	VATPct    float64
}

// Inputs are the fully-resolved parameters for one estimate or quote.
// Built fresh per tool invocation; never persisted.
type Inputs struct {
	JobType       string  `json:"job_type"`
	Quantity      int     `json:"quantity"`
	DueDate       string  `json:"due_date,omitempty"`
	CompanyName   string  `json:"company_name,omitempty"`
	CustomerName  string  `json:"customer_name,omitempty"`
	CustomerEmail string  `json:"customer_email,omitempty"`
	Currency      string  `json:"currency"`
	LaborRate     float64 `json:"labor_rate"`
	MarkupPct     float64 `json:"markup_pct"`
	VATPct        float64 `json:"vat_pct"`
	Notes         string  `json:"notes,omitempty"`
}

// Line is one priced material line in the quote currency.
type Line struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Qty      float64 `json:"qty"`
	UnitCost float64 `json:"unit_cost"`
	Cost     float64 `json:"cost"`
	Currency string  `json:"currency"`
}

// Summary holds the currency-denominated totals of one estimate.
// All values are rounded to 2 decimals at this boundary.
type Summary struct {
	MaterialsSubtotal float64 `json:"materials_subtotal"`
	LaborCost         float64 `json:"labor_cost"`
	Subtotal          float64 `json:"subtotal"`
	MarkupValue       float64 `json:"markup_value"`
	PriceBeforeVAT    float64 `json:"price_before_vat"`
	VATValue          float64 `json:"vat_value"`
	Total             float64 `json:"total"`
	UnitPrice         float64 `json:"unit_price"`
	LaborHours        float64 `json:"labor_hours"`
}

// Material is a priced material record from the price store.
type Material struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	UnitCost float64 `json:"unit_cost"`
	Currency string  `json:"currency"`
}

// Catalog reads material prices. Get returns (nil, nil) when the material
// has no price record.
type Catalog interface {
	Get(ctx context.Context, name string) (*Material, error)
	List(ctx context.Context) ([]Material, error)
}
