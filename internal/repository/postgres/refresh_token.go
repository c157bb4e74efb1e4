package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sri-narendra/Tasks/internal/domain"
	apperrors "github.com/sri-narendra/Tasks/pkg/errors"
)

// RefreshTokenRepository implements repository.RefreshTokenRepository using
// PostgreSQL. The table is an append-only ledger: revocation and replacement
// are recorded in place and rows are never deleted.
type RefreshTokenRepository struct {
	db DB
}

// NewRefreshTokenRepository creates a new PostgreSQL-backed refresh token repository.
func NewRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create appends a new token row to the ledger.
func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at, created_by_ip)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt, t.CreatedByIP,
	)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// GetByHash retrieves a token row by the digest of its secret.
func (r *RefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at, created_by_ip,
		       revoked_at, revoked_by_ip, replaced_by_token_hash
		FROM refresh_tokens
		WHERE token_hash = $1`

	var t domain.RefreshToken
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&t.ID,
		&t.UserID,
		&t.TokenHash,
		&t.ExpiresAt,
		&t.CreatedAt,
		&t.CreatedByIP,
		&t.RevokedAt,
		&t.RevokedByIP,
		&t.ReplacedByTokenHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}

	return &t, nil
}

// RevokeIfActive atomically transitions a token from active to revoked. The
// revoked_at IS NULL predicate makes concurrent rotations of the same token
// race safely: exactly one caller observes true.
func (r *RefreshTokenRepository) RevokeIfActive(ctx context.Context, tokenHash, revokedByIP, replacedByHash string) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $1, revoked_by_ip = $2, replaced_by_token_hash = $3
		WHERE token_hash = $4 AND revoked_at IS NULL`

	ct, err := r.db.Exec(ctx, query, time.Now().UTC(), revokedByIP, replacedByHash, tokenHash)
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// RevokeAllByUserID revokes every active token for the user in one statement.
func (r *RefreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID, revokedByIP, replacedByMarker string) (int64, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $1, revoked_by_ip = $2, replaced_by_token_hash = $3
		WHERE user_id = $4 AND revoked_at IS NULL`

	ct, err := r.db.Exec(ctx, query, time.Now().UTC(), revokedByIP, replacedByMarker, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke refresh tokens by user: %w", err)
	}

	return ct.RowsAffected(), nil
}
