package repo

import (
	"context"

	"github.com/hamed0406/storewatch/internal/domain"
)

// Ports (interfaces) — swap in any DB adapter later.

// ObservationStore is the read side consumed by the report engine. Every
// report run takes a fresh read; the engine never caches between runs.
type ObservationStore interface {
	// ListStatusObservations returns all status rows, or only one store's
	// rows when storeID is non-empty. Time filtering happens in the engine.
	ListStatusObservations(ctx context.Context, storeID domain.StoreID) ([]domain.StatusObservation, error)
	ListBusinessHours(ctx context.Context) ([]domain.BusinessHours, error)
	ListTimezones(ctx context.Context) ([]domain.StoreTimezone, error)
}

// ObservationWriter is the write side used by the CSV loader.
type ObservationWriter interface {
	AppendStatusObservations(ctx context.Context, rows []domain.StatusObservation) error
	AppendBusinessHours(ctx context.Context, rows []domain.BusinessHours) error
	// UpsertTimezones keeps the at-most-one-zone-per-store invariant: a
	// re-ingested store replaces its previous zone.
	UpsertTimezones(ctx context.Context, rows []domain.StoreTimezone) error
}
