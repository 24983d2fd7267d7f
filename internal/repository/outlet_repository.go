// Package repository defines the persistence interfaces consumed by the
// usecase layer. Concrete adapters live under internal/infra/adapter.
package repository

import (
	"context"

	"news-cadence/internal/domain/entity"
)

// OutletRepository is the outlet registry's persistence interface.
// Outlets are loaded once per run and are read-only for its duration.
type OutletRepository interface {
	Get(ctx context.Context, id string) (*entity.Outlet, error)
	List(ctx context.Context) ([]*entity.Outlet, error)
	// ReplaceAll swaps the outlet table for the given seed list inside one
	// transaction. Used by registry sync; harvest runs never call it.
	ReplaceAll(ctx context.Context, outlets []*entity.Outlet) error
}
