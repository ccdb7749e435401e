// Package service contains the materials business logic.
package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"bakery_quote_backend/internal/materials/repository"
	"bakery_quote_backend/internal/pricing"
	"bakery_quote_backend/platform/apperr"
	"bakery_quote_backend/platform/logger"
)

// Service exposes the material price store. It backs both the chat tools
// (material_lookup, list_materials) and the admin price endpoints.
type Service struct {
	repo *repository.Repo
	log  *logger.Logger
}

// New creates a new materials service.
func New(repo *repository.Repo, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Compile-time check that Service satisfies the estimator's catalog.
var _ pricing.Catalog = (*Service)(nil)

// Get returns a material's price record, or (nil, nil) when none exists.
func (s *Service) Get(ctx context.Context, name string) (*pricing.Material, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("material name is required")
	}
	m, err := s.repo.Get(ctx, name)
	if err != nil {
		s.log.DatabaseError("materials.get", err)
		return nil, apperr.Wrap(apperr.KindInternal, "failed to look up material", err)
	}
	return m, nil
}

// List returns all priced materials.
func (s *Service) List(ctx context.Context) ([]pricing.Material, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		s.log.DatabaseError("materials.list", err)
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list materials", err)
	}
	return out, nil
}

// UpdateCost changes the price of an existing material.
func (s *Service) UpdateCost(ctx context.Context, name string, unitCost float64) (pricing.Material, error) {
	if strings.TrimSpace(name) == "" {
		return pricing.Material{}, apperr.Validation("material name is required")
	}
	if math.IsNaN(unitCost) || math.IsInf(unitCost, 0) || unitCost < 0 {
		return pricing.Material{}, apperr.Validation("unit_cost must be a non-negative number")
	}
	m, err := s.repo.UpdateCost(ctx, name, unitCost)
	if errors.Is(err, repository.ErrMaterialNotFound) {
		return pricing.Material{}, apperr.NotFound("material not found")
	}
	if err != nil {
		s.log.DatabaseError("materials.update_cost", err)
		return pricing.Material{}, apperr.Wrap(apperr.KindInternal, "failed to update material", err)
	}
	return m, nil
}
