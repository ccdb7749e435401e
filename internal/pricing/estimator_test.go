package pricing

import (
	"context"
	"math"
	"strings"
	"testing"

	"bakery_quote_backend/internal/bom"
	"bakery_quote_backend/platform/apperr"
)

type fakeCatalog struct {
	materials map[string]Material
}

func (f *fakeCatalog) Get(_ context.Context, name string) (*Material, error) {
	mat, ok := f.materials[name]
	if !ok {
		return nil, nil
	}
	return &mat, nil
}

func (f *fakeCatalog) List(_ context.Context) ([]Material, error) {
	out := make([]Material, 0, len(f.materials))
	for _, mat := range f.materials {
		out = append(out, mat)
	}
	return out, nil
}

func gbpCatalog() *fakeCatalog {
	return &fakeCatalog{materials: map[string]Material{
		"flour":         {Name: "flour", Unit: "kg", UnitCost: 1.20, Currency: "GBP"},
		"sugar":         {Name: "sugar", Unit: "kg", UnitCost: 0.90, Currency: "GBP"},
		"butter":        {Name: "butter", Unit: "kg", UnitCost: 6.50, Currency: "GBP"},
		"eggs":          {Name: "eggs", Unit: "each", UnitCost: 0.25, Currency: "GBP"},
		"milk":          {Name: "milk", Unit: "L", UnitCost: 1.10, Currency: "GBP"},
		"vanilla":       {Name: "vanilla", Unit: "ml", UnitCost: 0.15, Currency: "GBP"},
		"baking_powder": {Name: "baking_powder", Unit: "kg", UnitCost: 4.00, Currency: "GBP"},
	}}
}

func testDefaults() Defaults {
	return Defaults{Currency: "GBP", LaborRate: 20.0, MarkupPct: 0.15, VATPct: 0.20}
}

func newTestEstimator(catalog Catalog) *Estimator {
	fx := map[string]float64{"GBP": 1.0, "EUR": 1.17, "USD": 1.27}
	return NewEstimator(bom.NewRegistry(), catalog, fx, testDefaults())
}

func TestEstimate_CupcakesHundredIsInternallyConsistent(t *testing.T) {
	est := newTestEstimator(gbpCatalog())

	lines, summary, warnings, err := est.Estimate(context.Background(), Inputs{
		JobType:   "cupcakes",
		Quantity:  100,
		Currency:  "GBP",
		LaborRate: 20.0,
		MarkupPct: 0.15,
		VATPct:    0.20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d", len(lines))
	}

	if summary.LaborHours != 5.0 {
		t.Fatalf("expected labor hours 5.0, got %v", summary.LaborHours)
	}
	if summary.LaborCost != 100.0 {
		t.Fatalf("expected labor cost 100.0, got %v", summary.LaborCost)
	}

	var lineSum float64
	for _, line := range lines {
		lineSum += line.Cost
	}
	if math.Abs(lineSum-summary.MaterialsSubtotal) > 0.01 {
		t.Fatalf("line costs %v do not sum to materials subtotal %v", lineSum, summary.MaterialsSubtotal)
	}
	if math.Abs(summary.Total-(summary.PriceBeforeVAT+summary.VATValue)) > 0.005 {
		t.Fatalf("total %v != price_before_vat %v + vat %v", summary.Total, summary.PriceBeforeVAT, summary.VATValue)
	}
	if math.Abs(summary.UnitPrice-summary.Total/100) > 0.005 {
		t.Fatalf("unit price %v inconsistent with total %v", summary.UnitPrice, summary.Total)
	}
}

func TestEstimate_UnknownJobTypeIsValidationError(t *testing.T) {
	est := newTestEstimator(gbpCatalog())

	_, _, _, err := est.Estimate(context.Background(), Inputs{JobType: "croissant", Quantity: 5, Currency: "GBP"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEstimate_NonPositiveQuantityIsValidationError(t *testing.T) {
	est := newTestEstimator(gbpCatalog())

	for _, q := range []int{0, -3} {
		_, _, _, err := est.Estimate(context.Background(), Inputs{JobType: "cake", Quantity: q, Currency: "GBP"})
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("quantity %d: expected validation error, got %v", q, err)
		}
	}
}

func TestEstimate_UnsupportedCurrencyIsValidationError(t *testing.T) {
	est := newTestEstimator(gbpCatalog())

	_, _, _, err := est.Estimate(context.Background(), Inputs{JobType: "cake", Quantity: 1, Currency: "JPY"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEstimate_MissingPriceWarnsAndStillTotals(t *testing.T) {
	catalog := gbpCatalog()
	delete(catalog.materials, "vanilla")
	est := newTestEstimator(catalog)

	_, summary, warnings, err := est.Estimate(context.Background(), Inputs{
		JobType:   "cupcakes",
		Quantity:  10,
		Currency:  "GBP",
		LaborRate: 20.0,
		MarkupPct: 0.15,
		VATPct:    0.20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "vanilla") {
		t.Fatalf("expected a vanilla warning, got %v", warnings)
	}
	if summary.Total <= 0 {
		t.Fatalf("expected a positive total despite the warning, got %v", summary.Total)
	}
}

func TestEstimate_ConvertsMaterialCurrency(t *testing.T) {
	catalog := gbpCatalog()
	catalog.materials["butter"] = Material{Name: "butter", Unit: "kg", UnitCost: 7.605, Currency: "EUR"}
	est := newTestEstimator(catalog)

	lines, _, warnings, err := est.Estimate(context.Background(), Inputs{
		JobType:  "cake",
		Quantity: 1,
		Currency: "GBP",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	for _, line := range lines {
		if line.Name != "butter" {
			continue
		}
		// 7.605 EUR / 1.17 = 6.50 GBP per kg, 0.30 kg for one cake.
		if math.Abs(line.UnitCost-6.5) > 0.0001 {
			t.Fatalf("expected converted unit cost 6.5, got %v", line.UnitCost)
		}
		if math.Abs(line.Cost-1.95) > 0.005 {
			t.Fatalf("expected line cost 1.95, got %v", line.Cost)
		}
		return
	}
	t.Fatal("butter line not found")
}

func TestParsePct(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{21, 0.21},
		{0.21, 0.21},
		{100, 1.0},
		{0, 0},
		{-5, 0},
		{1.0, 1.0},
	}
	for _, tc := range cases {
		if got := ParsePct(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("ParsePct(%v): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}
