package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPort persists one cart blob per session key in the cart_sessions
// table, so carts survive process restarts.
type PostgresPort struct {
	pool       *pgxpool.Pool
	sessionKey string
}

func NewPostgresPort(pool *pgxpool.Pool, sessionKey string) *PostgresPort {
	return &PostgresPort{pool: pool, sessionKey: sessionKey}
}

func (p *PostgresPort) Read(ctx context.Context) ([]byte, error) {
	const q = `
SELECT blob
FROM cart_sessions
WHERE session_key = $1
`
	var blob []byte
	if err := p.pool.QueryRow(ctx, q, p.sessionKey).Scan(&blob); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return blob, nil
}

func (p *PostgresPort) Write(ctx context.Context, blob []byte) error {
	const q = `
INSERT INTO cart_sessions (session_key, blob, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (session_key)
DO UPDATE SET blob = EXCLUDED.blob, updated_at = now()
`
	_, err := p.pool.Exec(ctx, q, p.sessionKey, blob)
	return err
}
