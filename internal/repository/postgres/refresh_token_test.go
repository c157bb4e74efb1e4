package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sri-narendra/Tasks/internal/domain"
	apperrors "github.com/sri-narendra/Tasks/pkg/errors"
)

func newTokenTestFixture(t *testing.T) (*RefreshTokenRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewRefreshTokenRepository(mock)
	return repo, mock
}

func sampleToken() *domain.RefreshToken {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.RefreshToken{
		ID:          "rt-1",
		UserID:      "u-1234",
		TokenHash:   "a1b2c3",
		ExpiresAt:   now.Add(168 * time.Hour),
		CreatedAt:   now,
		CreatedByIP: "203.0.113.50",
	}
}

func tokenRow(rt *domain.RefreshToken) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "token_hash", "expires_at", "created_at", "created_by_ip",
		"revoked_at", "revoked_by_ip", "replaced_by_token_hash",
	}).AddRow(
		rt.ID, rt.UserID, rt.TokenHash, rt.ExpiresAt, rt.CreatedAt, rt.CreatedByIP,
		rt.RevokedAt, rt.RevokedByIP, rt.ReplacedByTokenHash,
	)
}

func TestRefreshTokenRepository_Create_Success(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	rt := sampleToken()

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(rt.ID, rt.UserID, rt.TokenHash, rt.ExpiresAt, rt.CreatedAt, rt.CreatedByIP).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), rt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_GetByHash_Success(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	rt := sampleToken()

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token_hash =").
		WithArgs(rt.TokenHash).
		WillReturnRows(tokenRow(rt))

	got, err := repo.GetByHash(context.Background(), rt.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, rt.UserID, got.UserID)
	assert.Equal(t, rt.CreatedByIP, got.CreatedByIP)
	assert.Nil(t, got.RevokedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_GetByHash_NotFound(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token_hash =").
		WithArgs("unknown-hash").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByHash(context.Background(), "unknown-hash")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_RevokeIfActive_TransitionsActiveRow(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs(pgxmock.AnyArg(), "198.51.100.42", "new-hash", "old-hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	revoked, err := repo.RevokeIfActive(context.Background(), "old-hash", "198.51.100.42", "new-hash")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_RevokeIfActive_AlreadyRevoked(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs(pgxmock.AnyArg(), "198.51.100.42", "new-hash", "old-hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	revoked, err := repo.RevokeIfActive(context.Background(), "old-hash", "198.51.100.42", "new-hash")
	require.NoError(t, err)
	assert.False(t, revoked, "a concurrently revoked token must report false")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_RevokeAllByUserID_StampsMarker(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs(pgxmock.AnyArg(), "198.51.100.42", domain.ReuseViolationMarker, "u-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := repo.RevokeAllByUserID(context.Background(), "u-1234", "198.51.100.42", domain.ReuseViolationMarker)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
