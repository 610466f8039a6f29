package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/storewatch/internal/domain"
	"github.com/hamed0406/storewatch/internal/repo"
)

var _ repo.ObservationStore = (*Store)(nil)
var _ repo.ObservationWriter = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the three source tables if they do not exist.
// Called by the loader before a bulk ingest.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS store_status (
	id            BIGSERIAL PRIMARY KEY,
	store_id      TEXT        NOT NULL,
	timestamp_utc TIMESTAMPTZ NOT NULL,
	status        TEXT        NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_store_status_store_ts
	ON store_status (store_id, timestamp_utc);
CREATE TABLE IF NOT EXISTS store_hours (
	id               BIGSERIAL PRIMARY KEY,
	store_id         TEXT NOT NULL,
	day              INT  NOT NULL,
	start_time_local TEXT NOT NULL,
	end_time_local   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS store_timezone (
	store_id     TEXT PRIMARY KEY,
	timezone_str TEXT NOT NULL
);`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// ---- ObservationStore ----

func (s *Store) ListStatusObservations(ctx context.Context, storeID domain.StoreID) ([]domain.StatusObservation, error) {
	q := `SELECT store_id, timestamp_utc, status FROM store_status`
	args := []any{}
	if storeID != "" {
		q += ` WHERE store_id = $1`
		args = append(args, string(storeID))
	}
	q += ` ORDER BY timestamp_utc`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list status observations: %w", err)
	}
	defer rows.Close()

	var out []domain.StatusObservation
	for rows.Next() {
		var (
			id     string
			ts     time.Time
			status string
		)
		if err := rows.Scan(&id, &ts, &status); err != nil {
			return nil, fmt.Errorf("scan status observation: %w", err)
		}
		out = append(out, domain.StatusObservation{
			StoreID:      domain.StoreID(id),
			TimestampUTC: ts.UTC(),
			Status:       status,
		})
	}
	return out, rows.Err()
}

func (s *Store) ListBusinessHours(ctx context.Context) ([]domain.BusinessHours, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT store_id, day, start_time_local, end_time_local
		   FROM store_hours
		  ORDER BY store_id, day`)
	if err != nil {
		return nil, fmt.Errorf("list business hours: %w", err)
	}
	defer rows.Close()

	var out []domain.BusinessHours
	for rows.Next() {
		var h domain.BusinessHours
		var id string
		if err := rows.Scan(&id, &h.Day, &h.OpenLocal, &h.CloseLocal); err != nil {
			return nil, fmt.Errorf("scan business hours: %w", err)
		}
		h.StoreID = domain.StoreID(id)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) ListTimezones(ctx context.Context) ([]domain.StoreTimezone, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT store_id, timezone_str FROM store_timezone ORDER BY store_id`)
	if err != nil {
		return nil, fmt.Errorf("list timezones: %w", err)
	}
	defer rows.Close()

	var out []domain.StoreTimezone
	for rows.Next() {
		var id, tz string
		if err := rows.Scan(&id, &tz); err != nil {
			return nil, fmt.Errorf("scan timezone: %w", err)
		}
		out = append(out, domain.StoreTimezone{StoreID: domain.StoreID(id), Timezone: tz})
	}
	return out, rows.Err()
}

// ---- ObservationWriter ----

func (s *Store) AppendStatusObservations(ctx context.Context, rows []domain.StatusObservation) error {
	if len(rows) == 0 {
		return nil
	}
	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"store_status"},
		[]string{"store_id", "timestamp_utc", "status"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{string(r.StoreID), r.TimestampUTC, r.Status}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy store_status: %w", err)
	}
	s.log.Debug("pg_copied_status", zap.Int64("rows", n))
	return nil
}

func (s *Store) AppendBusinessHours(ctx context.Context, rows []domain.BusinessHours) error {
	if len(rows) == 0 {
		return nil
	}
	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"store_hours"},
		[]string{"store_id", "day", "start_time_local", "end_time_local"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{string(r.StoreID), r.Day, r.OpenLocal, r.CloseLocal}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy store_hours: %w", err)
	}
	s.log.Debug("pg_copied_hours", zap.Int64("rows", n))
	return nil
}

func (s *Store) UpsertTimezones(ctx context.Context, rows []domain.StoreTimezone) error {
	if len(rows) == 0 {
		return nil
	}
	const q = `
		INSERT INTO store_timezone (store_id, timezone_str)
		VALUES ($1, $2)
		ON CONFLICT (store_id)
		DO UPDATE SET timezone_str = EXCLUDED.timezone_str`
	b := &pgx.Batch{}
	for _, r := range rows {
		b.Queue(q, string(r.StoreID), r.Timezone)
	}
	if err := s.pool.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("upsert store_timezone: %w", err)
	}
	return nil
}
