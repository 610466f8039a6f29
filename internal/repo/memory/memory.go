package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/storewatch/internal/domain"
)

// Store keeps the three source tables in process memory. Used when no
// DATABASE_URL is configured and throughout the tests.
type Store struct {
	mu        sync.RWMutex
	statuses  []domain.StatusObservation
	hours     []domain.BusinessHours
	timezones map[domain.StoreID]string
}

func New() *Store {
	return &Store{
		statuses:  make([]domain.StatusObservation, 0, 1024),
		timezones: make(map[domain.StoreID]string),
	}
}

func (m *Store) ListStatusObservations(ctx context.Context, storeID domain.StoreID) ([]domain.StatusObservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.StatusObservation, 0, len(m.statuses))
	for _, s := range m.statuses {
		if storeID != "" && s.StoreID != storeID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *Store) ListBusinessHours(ctx context.Context) ([]domain.BusinessHours, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.BusinessHours, len(m.hours))
	copy(out, m.hours)
	return out, nil
}

func (m *Store) ListTimezones(ctx context.Context) ([]domain.StoreTimezone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.StoreTimezone, 0, len(m.timezones))
	for id, tz := range m.timezones {
		out = append(out, domain.StoreTimezone{StoreID: id, Timezone: tz})
	}
	return out, nil
}

func (m *Store) AppendStatusObservations(ctx context.Context, rows []domain.StatusObservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, rows...)
	return nil
}

func (m *Store) AppendBusinessHours(ctx context.Context, rows []domain.BusinessHours) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hours = append(m.hours, rows...)
	return nil
}

func (m *Store) UpsertTimezones(ctx context.Context, rows []domain.StoreTimezone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.timezones[r.StoreID] = r.Timezone
	}
	return nil
}
