// Package bom holds the per-unit bill-of-materials registry for each job
// type and scales it to order quantities with unit-aware rounding.
package bom

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownJobType is returned when a job type is not in the registry.
	ErrUnknownJobType = errors.New("unknown job_type")
	// ErrInvalidQuantity is returned for a non-positive order quantity.
	ErrInvalidQuantity = errors.New("quantity must be > 0")
)

// MaterialRequirement is the per-unit amount of one material.
type MaterialRequirement struct {
	Name string  `yaml:"name" json:"name"`
	Unit string  `yaml:"unit" json:"unit"`
	Qty  float64 `yaml:"qty" json:"qty"`
}

// JobType is the immutable per-unit recipe for one product.
type JobType struct {
	Materials  []MaterialRequirement `yaml:"materials" json:"materials"`
	LaborHours float64               `yaml:"labor_hours" json:"labor_hours"`
}

// ScaledMaterial is one material requirement scaled to an order quantity.
type ScaledMaterial struct {
	Name string  `json:"name"`
	Unit string  `json:"unit"`
	Qty  float64 `json:"qty"`
}

// ScaledBOM is the result of applying an order quantity to a job type.
type ScaledBOM struct {
	JobType    string           `json:"job_type"`
	Quantity   int              `json:"quantity"`
	Materials  []ScaledMaterial `json:"materials"`
	LaborHours float64          `json:"labor_hours"`
}

// Scale applies a positive integer quantity to the named job type.
// Pure and safe for concurrent use; the registry is never mutated.
func (r *Registry) Scale(jobType string, quantity int) (*ScaledBOM, error) {
	jt, ok := r.jobTypes[jobType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJobType, jobType)
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	materials := make([]ScaledMaterial, 0, len(jt.Materials))
	for _, mat := range jt.Materials {
		materials = append(materials, ScaledMaterial{
			Name: mat.Name,
			Unit: mat.Unit,
			Qty:  roundForUnit(mat.Qty*float64(quantity), mat.Unit),
		})
	}

	return &ScaledBOM{
		JobType:    jobType,
		Quantity:   quantity,
		Materials:  materials,
		LaborHours: roundTo(jt.LaborHours*float64(quantity), 3),
	}, nil
}

// roundForUnit applies the per-unit-class rounding rule. Rounding is
// idempotent: re-rounding an already rounded value yields the same value.
func roundForUnit(qty float64, unit string) float64 {
	switch unit {
	case "kg", "L":
		return roundTo(qty, 3)
	case "ml":
		return roundTo(qty, 1)
	default:
		return roundTo(qty, 1)
	}
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
