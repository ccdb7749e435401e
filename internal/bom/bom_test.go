package bom

import (
	"errors"
	"math"
	"testing"
)

func TestScale_CupcakesHundred(t *testing.T) {
	reg := NewRegistry()

	scaled, err := reg.Scale("cupcakes", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if scaled.JobType != "cupcakes" || scaled.Quantity != 100 {
		t.Fatalf("unexpected identity: %s x %d", scaled.JobType, scaled.Quantity)
	}
	if scaled.LaborHours != 5.0 {
		t.Fatalf("expected 5.0 labor hours, got %v", scaled.LaborHours)
	}

	want := map[string]float64{
		"flour":         8.0,
		"sugar":         6.0,
		"butter":        4.0,
		"eggs":          50.0,
		"milk":          5.0,
		"vanilla":       100.0,
		"baking_powder": 0.1,
	}
	for _, mat := range scaled.Materials {
		expected, ok := want[mat.Name]
		if !ok {
			t.Fatalf("unexpected material %q", mat.Name)
		}
		if mat.Qty != expected {
			t.Fatalf("material %q: expected %v, got %v", mat.Name, expected, mat.Qty)
		}
		delete(want, mat.Name)
	}
	if len(want) != 0 {
		t.Fatalf("missing materials: %v", want)
	}
}

func TestScale_RoundingPerUnitClass(t *testing.T) {
	reg := NewRegistry()

	// 7 cupcakes: 0.001 kg baking powder x 7 = 0.007 (3 dp),
	// 0.5 eggs x 7 = 3.5 (1 dp), 1.0 ml vanilla x 7 = 7.0 (1 dp).
	scaled, err := reg.Scale("cupcakes", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byName := map[string]ScaledMaterial{}
	for _, mat := range scaled.Materials {
		byName[mat.Name] = mat
	}
	if got := byName["baking_powder"].Qty; got != 0.007 {
		t.Fatalf("expected baking_powder 0.007, got %v", got)
	}
	if got := byName["eggs"].Qty; got != 3.5 {
		t.Fatalf("expected eggs 3.5, got %v", got)
	}
	if got := byName["vanilla"].Qty; got != 7.0 {
		t.Fatalf("expected vanilla 7.0, got %v", got)
	}
	if got := scaled.LaborHours; got != 0.35 {
		t.Fatalf("expected labor 0.35, got %v", got)
	}
}

func TestScale_RoundingIsIdempotent(t *testing.T) {
	for _, unit := range []string{"kg", "L", "ml", "each"} {
		once := roundForUnit(1.23456789, unit)
		twice := roundForUnit(once, unit)
		if once != twice {
			t.Fatalf("unit %s: re-rounding changed %v to %v", unit, once, twice)
		}
	}
}

func TestScale_LaborHoursMatchFormula(t *testing.T) {
	reg := NewRegistry()
	for _, jobType := range reg.JobTypes() {
		per := reg.jobTypes[jobType].LaborHours
		for _, q := range []int{1, 3, 17, 250} {
			scaled, err := reg.Scale(jobType, q)
			if err != nil {
				t.Fatalf("%s x %d: %v", jobType, q, err)
			}
			expected := math.Round(per*float64(q)*1000) / 1000
			if scaled.LaborHours != expected {
				t.Fatalf("%s x %d: expected labor %v, got %v", jobType, q, expected, scaled.LaborHours)
			}
		}
	}
}

func TestScale_UnknownJobType(t *testing.T) {
	reg := NewRegistry()
	for _, q := range []int{1, 10} {
		if _, err := reg.Scale("croissant", q); !errors.Is(err, ErrUnknownJobType) {
			t.Fatalf("expected ErrUnknownJobType, got %v", err)
		}
	}
}

func TestScale_InvalidQuantity(t *testing.T) {
	reg := NewRegistry()
	for _, q := range []int{0, -1} {
		if _, err := reg.Scale("cake", q); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("quantity %d: expected ErrInvalidQuantity, got %v", q, err)
		}
	}
}

func TestRegistry_JobTypes(t *testing.T) {
	reg := NewRegistry()
	got := reg.JobTypes()
	want := []string{"cake", "cupcakes", "pastry_box"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
