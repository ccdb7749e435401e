package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"bakery_quote_backend/internal/bom"
	"bakery_quote_backend/platform/apperr"
)

// Estimator computes deterministic quote totals from the BOM registry,
// the material price store, and the configured FX table.
type Estimator struct {
	registry *bom.Registry
	catalog  Catalog
	fx       map[string]float64
	defaults Defaults
}

// NewEstimator wires an estimator. FX rates are relative to GBP (GBP = 1).
func NewEstimator(registry *bom.Registry, catalog Catalog, fx map[string]float64, defaults Defaults) *Estimator {
	return &Estimator{registry: registry, catalog: catalog, fx: fx, defaults: defaults}
}

// Defaults returns the process-wide pricing defaults.
func (e *Estimator) Defaults() Defaults {
	return e.defaults
}

// JobTypes lists the quotable job types.
func (e *Estimator) JobTypes() []string {
	return e.registry.JobTypes()
}

// Currencies lists the currencies with a configured FX rate.
func (e *Estimator) Currencies() []string {
	codes := make([]string, 0, len(e.fx))
	for code := range e.fx {
		codes = append(codes, code)
	}
	return codes
}

// Estimate scales the BOM for the inputs and prices it in the quote
// currency. Returns per-material lines, the rounded summary, and a list of
// human-readable warnings for lines that could not be fully priced.
// Unknown job types, non-positive quantities, and unsupported currencies
// are validation errors; a missing material price is only a warning.
func (e *Estimator) Estimate(ctx context.Context, in Inputs) ([]Line, *Summary, []string, error) {
	scaled, err := e.registry.Scale(in.JobType, in.Quantity)
	if err != nil {
		if errors.Is(err, bom.ErrUnknownJobType) || errors.Is(err, bom.ErrInvalidQuantity) {
			return nil, nil, nil, apperr.Validation(err.Error())
		}
		return nil, nil, nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = e.defaults.Currency
	}
	quoteRate, ok := e.fx[currency]
	if !ok {
		return nil, nil, nil, apperr.Validation(fmt.Sprintf("unsupported currency %q", currency))
	}

	var warnings []string
	var materialsSubtotal float64
	lines := make([]Line, 0, len(scaled.Materials))

	for _, mat := range scaled.Materials {
		unitCost, warning := e.unitCostIn(ctx, mat.Name, currency, quoteRate)
		if warning != "" {
			warnings = append(warnings, warning)
		}
		cost := round2(mat.Qty * unitCost)
		materialsSubtotal += cost
		lines = append(lines, Line{
			Name:     mat.Name,
			Unit:     mat.Unit,
			Qty:      mat.Qty,
			UnitCost: round4(unitCost),
			Cost:     cost,
			Currency: currency,
		})
	}

	laborRate := in.LaborRate
	if laborRate == 0 {
		laborRate = e.defaults.LaborRate
	}
	laborCost := round2(laborRate * scaled.LaborHours)

	subtotal := round2(round2(materialsSubtotal) + laborCost)
	markupValue := round2(subtotal * in.MarkupPct)
	priceBeforeVAT := round2(subtotal + markupValue)
	vatValue := round2(priceBeforeVAT * in.VATPct)
	total := round2(priceBeforeVAT + vatValue)

	summary := &Summary{
		MaterialsSubtotal: round2(materialsSubtotal),
		LaborCost:         laborCost,
		Subtotal:          subtotal,
		MarkupValue:       markupValue,
		PriceBeforeVAT:    priceBeforeVAT,
		VATValue:          vatValue,
		Total:             total,
		UnitPrice:         round2(total / float64(in.Quantity)),
		LaborHours:        scaled.LaborHours,
	}

	return lines, summary, warnings, nil
}

// unitCostIn returns the material's unit cost converted into the quote
// currency, plus a warning when the price is missing or unconvertible.
func (e *Estimator) unitCostIn(ctx context.Context, name, currency string, quoteRate float64) (float64, string) {
	mat, err := e.catalog.Get(ctx, name)
	if err != nil {
		return 0, fmt.Sprintf("price lookup failed for %s; assumed 0.00", name)
	}
	if mat == nil {
		return 0, fmt.Sprintf("no price on file for %s; assumed 0.00", name)
	}

	matCurrency := strings.ToUpper(strings.TrimSpace(mat.Currency))
	if matCurrency == currency {
		return mat.UnitCost, ""
	}
	matRate, ok := e.fx[matCurrency]
	if !ok {
		return 0, fmt.Sprintf("no FX rate for %s (%s); assumed 0.00", matCurrency, name)
	}
	return mat.UnitCost / matRate * quoteRate, ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
