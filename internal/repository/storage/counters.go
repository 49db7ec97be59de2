package storage

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/kkkatsube/picc/internal/entities"
)

const counterColumns = `id, user_id, value, created_at, updated_at`

func scanCounter(row pgx.Row) (entities.Counter, error) {
	var c entities.Counter
	err := row.Scan(&c.ID, &c.UserID, &c.Value, &c.CreatedTimestamp, &c.UpdatedTimestamp)
	return c, err
}

// GetOrCreateCounter lazily creates the user's counter with value 0 on
// first read. The no-op upsert makes first-or-create a single round trip.
func (s *Storage) GetOrCreateCounter(ctx context.Context, userID int64) (entities.Counter, error) {
	return scanCounter(s.dbpool.QueryRow(ctx,
		`INSERT INTO counters (user_id, value) VALUES ($1, 0)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING `+counterColumns,
		userID,
	))
}

func (s *Storage) UpsertCounter(ctx context.Context, userID int64, value int) (entities.Counter, error) {
	return scanCounter(s.dbpool.QueryRow(ctx,
		`INSERT INTO counters (user_id, value) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		 RETURNING `+counterColumns,
		userID, value,
	))
}
