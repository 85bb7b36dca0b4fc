package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/drawmaster/hub/internal/model"
)

const tokenColumns = "id, token_hash, user_id, last_used_at, expires_at, created_at"

func scanToken(row interface{ Scan(...any) error }) (model.AuthToken, error) {
	var t model.AuthToken
	err := row.Scan(&t.ID, &t.TokenHash, &t.UserID, &t.LastUsedAt, &t.ExpiresAt, &t.CreatedAt)
	return t, err
}

// CreateAuthTokenParams holds the fields for CreateAuthToken.
type CreateAuthTokenParams struct {
	TokenHash string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// CreateAuthToken inserts a new bearer token record and returns it.
func (q *Queries) CreateAuthToken(ctx context.Context, arg CreateAuthTokenParams) (model.AuthToken, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO auth_tokens (token_hash, user_id, expires_at, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING `+tokenColumns,
		arg.TokenHash, arg.UserID, arg.ExpiresAt, arg.CreatedAt,
	)
	return scanToken(row)
}

// GetAuthTokenByHash returns the token record for the given hash.
func (q *Queries) GetAuthTokenByHash(ctx context.Context, tokenHash string) (model.AuthToken, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM auth_tokens WHERE token_hash = ?`, tokenHash)
	return scanToken(row)
}

// UpdateAuthTokenLastUsedParams holds the fields for UpdateAuthTokenLastUsed.
type UpdateAuthTokenLastUsedParams struct {
	ID         int64
	LastUsedAt sql.NullTime
}

// UpdateAuthTokenLastUsed records when a token was last presented.
func (q *Queries) UpdateAuthTokenLastUsed(ctx context.Context, arg UpdateAuthTokenLastUsedParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE auth_tokens SET last_used_at = ? WHERE id = ?`, arg.LastUsedAt, arg.ID)
	return err
}

// DeleteAuthToken revokes a single token by hash.
func (q *Queries) DeleteAuthToken(ctx context.Context, tokenHash string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE token_hash = ?`, tokenHash)
	return err
}

// DeleteUserTokensExceptParams holds the fields for DeleteUserTokensExcept.
type DeleteUserTokensExceptParams struct {
	UserID    int64
	TokenHash string
}

// DeleteUserTokensExcept revokes all of a user's tokens except the one with
// the given hash. Used after a password change.
func (q *Queries) DeleteUserTokensExcept(ctx context.Context, arg DeleteUserTokensExceptParams) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM auth_tokens WHERE user_id = ? AND token_hash != ?`,
		arg.UserID, arg.TokenHash)
	return err
}

// DeleteExpiredAuthTokens removes tokens whose expiry has passed.
// Returns the number of tokens removed.
func (q *Queries) DeleteExpiredAuthTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE expires_at < ?`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
