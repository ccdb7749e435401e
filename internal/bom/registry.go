package bom

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var validUnits = map[string]bool{"kg": true, "L": true, "ml": true, "each": true}

// Registry is the static job-type registry, loaded once at process start.
type Registry struct {
	jobTypes map[string]JobType
}

// NewRegistry returns the built-in bakery job-type registry.
func NewRegistry() *Registry {
	return &Registry{jobTypes: map[string]JobType{
		"cupcakes": {
			Materials: []MaterialRequirement{
				{Name: "flour", Unit: "kg", Qty: 0.08},
				{Name: "sugar", Unit: "kg", Qty: 0.06},
				{Name: "butter", Unit: "kg", Qty: 0.04},
				{Name: "eggs", Unit: "each", Qty: 0.5},
				{Name: "milk", Unit: "L", Qty: 0.05},
				{Name: "vanilla", Unit: "ml", Qty: 1.0},
				{Name: "baking_powder", Unit: "kg", Qty: 0.001},
			},
			LaborHours: 0.05,
		},
		"cake": {
			Materials: []MaterialRequirement{
				{Name: "flour", Unit: "kg", Qty: 0.50},
				{Name: "sugar", Unit: "kg", Qty: 0.40},
				{Name: "butter", Unit: "kg", Qty: 0.30},
				{Name: "eggs", Unit: "each", Qty: 4.0},
				{Name: "milk", Unit: "L", Qty: 0.20},
				{Name: "cocoa", Unit: "kg", Qty: 0.05},
				{Name: "vanilla", Unit: "ml", Qty: 5.0},
				{Name: "baking_powder", Unit: "kg", Qty: 0.005},
			},
			LaborHours: 0.80,
		},
		"pastry_box": {
			Materials: []MaterialRequirement{
				{Name: "flour", Unit: "kg", Qty: 0.40},
				{Name: "butter", Unit: "kg", Qty: 0.35},
				{Name: "sugar", Unit: "kg", Qty: 0.10},
				{Name: "eggs", Unit: "each", Qty: 1.0},
				{Name: "milk", Unit: "L", Qty: 0.10},
				{Name: "salt", Unit: "kg", Qty: 0.002},
				{Name: "yeast", Unit: "kg", Qty: 0.005},
			},
			LaborHours: 0.60,
		},
	}}
}

// LoadRegistry reads a job-type registry from a YAML file. An empty path
// returns the built-in registry.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	jobTypes := make(map[string]JobType)
	if err := yaml.Unmarshal(raw, &jobTypes); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	reg := &Registry{jobTypes: jobTypes}
	if err := reg.validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

// validate enforces the registry invariants: every job type has at least one
// material, a known unit per material, and non-negative labor hours.
func (r *Registry) validate() error {
	if len(r.jobTypes) == 0 {
		return fmt.Errorf("registry has no job types")
	}
	for name, jt := range r.jobTypes {
		if len(jt.Materials) == 0 {
			return fmt.Errorf("job type %q has no materials", name)
		}
		if jt.LaborHours < 0 {
			return fmt.Errorf("job type %q has negative labor hours", name)
		}
		seen := make(map[string]bool, len(jt.Materials))
		for _, mat := range jt.Materials {
			if mat.Name == "" {
				return fmt.Errorf("job type %q has an unnamed material", name)
			}
			if seen[mat.Name] {
				return fmt.Errorf("job type %q repeats material %q", name, mat.Name)
			}
			seen[mat.Name] = true
			if !validUnits[mat.Unit] {
				return fmt.Errorf("job type %q material %q has unknown unit %q", name, mat.Name, mat.Unit)
			}
			if mat.Qty <= 0 {
				return fmt.Errorf("job type %q material %q has non-positive quantity", name, mat.Name)
			}
		}
	}
	return nil
}

// JobTypes lists registered job type names in stable order.
func (r *Registry) JobTypes() []string {
	names := make([]string, 0, len(r.jobTypes))
	for name := range r.jobTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a job type is registered.
func (r *Registry) Has(jobType string) bool {
	_, ok := r.jobTypes[jobType]
	return ok
}
