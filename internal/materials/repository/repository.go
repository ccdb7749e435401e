// Package repository persists material prices in Postgres.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bakery_quote_backend/internal/pricing"
)

// Repo implements the materials repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new materials repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ErrMaterialNotFound is returned when a price update names an unknown
// material. New materials are introduced via migrations, not the admin panel.
var ErrMaterialNotFound = errors.New("material not found")

// Get returns the price record for a material, or (nil, nil) when the
// material is not priced. Lookup is case-insensitive.
func (r *Repo) Get(ctx context.Context, name string) (*pricing.Material, error) {
	query := `
		SELECT name, unit, unit_cost, currency
		FROM materials
		WHERE name = $1`

	var m pricing.Material
	err := r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(name))).Scan(
		&m.Name, &m.Unit, &m.UnitCost, &m.Currency,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get material: %w", err)
	}
	return &m, nil
}

// List returns every priced material ordered by name.
func (r *Repo) List(ctx context.Context) ([]pricing.Material, error) {
	query := `
		SELECT name, unit, unit_cost, currency
		FROM materials
		ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var out []pricing.Material
	for rows.Next() {
		var m pricing.Material
		if err := rows.Scan(&m.Name, &m.Unit, &m.UnitCost, &m.Currency); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}
	return out, nil
}

// UpdateCost changes the unit cost of an existing material and returns the
// stored row. Unknown names return ErrMaterialNotFound.
func (r *Repo) UpdateCost(ctx context.Context, name string, unitCost float64) (pricing.Material, error) {
	query := `
		UPDATE materials
		SET unit_cost = $2,
			updated_at = now()
		WHERE name = $1
		RETURNING name, unit, unit_cost, currency`

	var m pricing.Material
	err := r.pool.QueryRow(ctx, query,
		strings.ToLower(strings.TrimSpace(name)), unitCost,
	).Scan(&m.Name, &m.Unit, &m.UnitCost, &m.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return pricing.Material{}, ErrMaterialNotFound
	}
	if err != nil {
		return pricing.Material{}, fmt.Errorf("update material cost: %w", err)
	}
	return m, nil
}
