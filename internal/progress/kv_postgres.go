package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createSlotsTable = `CREATE TABLE IF NOT EXISTS progress_slots (
	slot       TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresKV stores slots as JSONB rows in the progress_slots table.
type PostgresKV struct {
	pool *pgxpool.Pool
}

// NewPostgresKV creates a PostgreSQL-backed KV and makes sure its table exists.
func NewPostgresKV(ctx context.Context, pool *pgxpool.Pool) (*PostgresKV, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if _, err := pool.Exec(ctx, createSlotsTable); err != nil {
		return nil, fmt.Errorf("create progress_slots table: %w", err)
	}
	return &PostgresKV{pool: pool}, nil
}

func (p *PostgresKV) Get(ctx context.Context, slot string) ([]byte, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT payload FROM progress_slots WHERE slot = $1`,
		slot,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get slot %s: %w", slot, err)
	}
	return payload, nil
}

func (p *PostgresKV) Set(ctx context.Context, slot string, payload []byte) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO progress_slots (slot, payload, updated_at)
		 VALUES ($1, $2::jsonb, NOW())
		 ON CONFLICT (slot) DO UPDATE
		 SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		slot,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("set slot %s: %w", slot, err)
	}
	return nil
}
