package service

import (
	"context"
	"math"
	"testing"

	"bakery_quote_backend/platform/apperr"
	"bakery_quote_backend/platform/logger"
)

// Validation failures must reject before any repository access, so a nil
// repo is safe here.
func TestUpdateCostRejectsBadInput(t *testing.T) {
	svc := New(nil, logger.New("test"))

	tests := []struct {
		name     string
		material string
		unitCost float64
	}{
		{name: "empty name", material: "", unitCost: 1.0},
		{name: "whitespace name", material: "   ", unitCost: 1.0},
		{name: "negative cost", material: "flour", unitCost: -0.5},
		{name: "NaN cost", material: "flour", unitCost: math.NaN()},
		{name: "infinite cost", material: "flour", unitCost: math.Inf(1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpdateCost(context.Background(), tc.material, tc.unitCost)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if apperr.GetKind(err) != apperr.KindValidation {
				t.Fatalf("kind = %v, want validation", apperr.GetKind(err))
			}
		})
	}
}

func TestGetRejectsEmptyName(t *testing.T) {
	svc := New(nil, logger.New("test"))

	if _, err := svc.Get(context.Background(), ""); apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
