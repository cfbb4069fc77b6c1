package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RevocationRepository struct {
	pool *pgxpool.Pool
}

func NewRevocationRepository(pool *pgxpool.Pool) *RevocationRepository {
	return &RevocationRepository{pool: pool}
}

func (r *RevocationRepository) Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO revoked_sessions (token_hash, expires_at) VALUES ($1, $2)
		 ON CONFLICT (token_hash) DO NOTHING`,
		tokenHash, expiresAt,
	)
	if err != nil {
		return wrapErr("revoke session", err)
	}
	return nil
}

func (r *RevocationRepository) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx,
		`SELECT 1 FROM revoked_sessions WHERE token_hash = $1`, tokenHash).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, wrapErr("check revocation", err)
	}
	return true, nil
}

func (r *RevocationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM revoked_sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, wrapErr("delete expired revocations", err)
	}
	return tag.RowsAffected(), nil
}
