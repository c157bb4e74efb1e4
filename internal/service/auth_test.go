package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sri-narendra/Tasks/internal/auth"
	"github.com/sri-narendra/Tasks/internal/domain"
	"github.com/sri-narendra/Tasks/internal/rate"
	apperrors "github.com/sri-narendra/Tasks/pkg/errors"
)

const (
	testIP       = "203.0.113.50"
	testPassword = "Sup3r$ecret"
)

type authFixture struct {
	svc       *AuthService
	userRepo  *mockUserRepository
	tokenRepo *mockRefreshTokenRepository
	throttle  *mockLoginThrottle
	events    *mockEventPublisher
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		userRepo:  new(mockUserRepository),
		tokenRepo: new(mockRefreshTokenRepository),
		throttle:  new(mockLoginThrottle),
		events:    new(mockEventPublisher),
	}

	jwtManager := auth.NewJWTManager(
		"test-secret-key-that-is-long-enough-for-hs256",
		"taskboard",
		15*time.Minute,
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f.svc = NewAuthService(f.userRepo, f.tokenRepo, jwtManager, f.throttle, f.events, logger, 168*time.Hour)
	return f
}

func activeUser(t *testing.T) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           "u-1",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Name:         "Alice",
		Role:         domain.RoleUser,
	}
}

// --- Register ---

func TestRegister_Success_CreatesStarterContent(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.On("CreateWithDefaults", mock.Anything,
		mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "alice@example.com" && u.Role == domain.RoleUser
		}),
		mock.MatchedBy(func(b *domain.Board) bool {
			return b.Title == "Main Board" && b.Background == "#1a73e8"
		}),
		mock.MatchedBy(func(l *domain.List) bool {
			return l.Title == "To Do" && l.Position == 0
		}),
	).Return(nil)
	f.tokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.RefreshToken")).Return(nil)
	f.events.On("PublishUserRegistered", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	user, tokens, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: testPassword,
		Name:     "Alice",
	}, testIP)

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Len(t, tokens.RefreshToken, 80)
	assert.WithinDuration(t, time.Now().Add(168*time.Hour), tokens.RefreshExpiresAt, 5*time.Second)
	f.userRepo.AssertExpectations(t)
	f.tokenRepo.AssertExpectations(t)
}

func TestRegister_PasswordNeverStoredInPlaintext(t *testing.T) {
	f := newAuthFixture(t)

	var captured *domain.User
	f.userRepo.On("CreateWithDefaults", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*domain.User)
		}).Return(nil)
	f.tokenRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.events.On("PublishUserRegistered", mock.Anything, mock.Anything).Return(nil)

	_, _, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: testPassword,
		Name:     "Alice",
	}, testIP)

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.NotContains(t, captured.PasswordHash, testPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(captured.PasswordHash), []byte(testPassword)))
}

func TestRegister_DuplicateEmail_ReturnsBadRequest(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.On("CreateWithDefaults", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(apperrors.ErrAlreadyExists)

	_, _, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: testPassword,
		Name:     "Alice",
	}, testIP)

	require.Error(t, err)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}

func TestRegister_WeakPassword_Rejected(t *testing.T) {
	f := newAuthFixture(t)

	cases := []struct {
		name     string
		password string
	}{
		{"too short", "Ab1$"},
		{"no uppercase", "sup3r$ecret"},
		{"no lowercase", "SUP3R$ECRET"},
		{"no digit", "Super$ecret"},
		{"no special", "Sup3rSecret"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.svc.Register(context.Background(), RegisterInput{
				Email:    "alice@example.com",
				Password: tc.password,
				Name:     "Alice",
			}, testIP)
			require.Error(t, err)
			assert.Equal(t, 400, apperrors.HTTPStatus(err))
		})
	}

	f.userRepo.AssertNotCalled(t, "CreateWithDefaults")
}

// --- Login ---

func TestLogin_Success_IssuesTokensAndResetsThrottle(t *testing.T) {
	f := newAuthFixture(t)
	user := activeUser(t)

	f.throttle.On("Check", mock.Anything, user.Email, testIP).Return(nil)
	f.userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	f.throttle.On("Reset", mock.Anything, user.Email, testIP).Return(nil)
	f.tokenRepo.On("Create", mock.Anything, mock.MatchedBy(func(rt *domain.RefreshToken) bool {
		return rt.UserID == user.ID && rt.CreatedByIP == testIP && rt.TokenHash != ""
	})).Return(nil)

	got, tokens, err := f.svc.Login(context.Background(), LoginInput{
		Email:    user.Email,
		Password: testPassword,
	}, testIP)

	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	f.throttle.AssertExpectations(t)
}

func TestLogin_WrongPassword_RecordsFailure(t *testing.T) {
	f := newAuthFixture(t)
	user := activeUser(t)

	f.throttle.On("Check", mock.Anything, user.Email, testIP).Return(nil)
	f.userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	f.throttle.On("RecordFailure", mock.Anything, user.Email, testIP).Return(nil)

	_, _, err := f.svc.Login(context.Background(), LoginInput{
		Email:    user.Email,
		Password: "wrong-password",
	}, testIP)

	require.Error(t, err)
	assert.Equal(t, 401, apperrors.HTTPStatus(err))
	assert.Contains(t, err.Error(), "Invalid credentials")
	f.throttle.AssertCalled(t, "RecordFailure", mock.Anything, user.Email, testIP)
}

func TestLogin_UnknownEmail_SameErrorAsWrongPassword(t *testing.T) {
	f := newAuthFixture(t)

	f.throttle.On("Check", mock.Anything, "ghost@example.com", testIP).Return(nil)
	f.userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, apperrors.ErrNotFound)
	f.throttle.On("RecordFailure", mock.Anything, "ghost@example.com", testIP).Return(nil)

	_, _, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: testPassword,
	}, testIP)

	require.Error(t, err)
	assert.Equal(t, 401, apperrors.HTTPStatus(err))
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestLogin_Throttled_Returns429(t *testing.T) {
	f := newAuthFixture(t)

	f.throttle.On("Check", mock.Anything, "alice@example.com", testIP).Return(rate.ErrRateLimited)

	_, _, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: testPassword,
	}, testIP)

	require.Error(t, err)
	assert.Equal(t, 429, apperrors.HTTPStatus(err))
	f.userRepo.AssertNotCalled(t, "GetByEmail")
}

func TestLogin_ThrottleBackendDown_FailsOpen(t *testing.T) {
	f := newAuthFixture(t)
	user := activeUser(t)

	f.throttle.On("Check", mock.Anything, user.Email, testIP).Return(rate.ErrRedisUnavailable)
	f.userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	f.throttle.On("Reset", mock.Anything, user.Email, testIP).Return(nil)
	f.tokenRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, tokens, err := f.svc.Login(context.Background(), LoginInput{
		Email:    user.Email,
		Password: testPassword,
	}, testIP)

	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
}

// --- Refresh ---

func storedToken(userID, secret string) *domain.RefreshToken {
	now := time.Now().UTC()
	return &domain.RefreshToken{
		ID:          "rt-1",
		UserID:      userID,
		TokenHash:   auth.HashRefreshSecret(secret),
		ExpiresAt:   now.Add(24 * time.Hour),
		CreatedAt:   now.Add(-time.Hour),
		CreatedByIP: "198.51.100.1",
	}
}

func TestRefresh_Success_RotatesToken(t *testing.T) {
	f := newAuthFixture(t)
	user := activeUser(t)

	secret, err := auth.NewRefreshSecret()
	require.NoError(t, err)
	stored := storedToken(user.ID, secret)

	f.tokenRepo.On("GetByHash", mock.Anything, stored.TokenHash).Return(stored, nil)
	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	var newHash string
	f.tokenRepo.On("Create", mock.Anything, mock.MatchedBy(func(rt *domain.RefreshToken) bool {
		newHash = rt.TokenHash
		return rt.UserID == user.ID && rt.CreatedByIP == testIP && rt.TokenHash != stored.TokenHash
	})).Return(nil)
	f.tokenRepo.On("RevokeIfActive", mock.Anything, stored.TokenHash, testIP, mock.AnythingOfType("string")).
		Return(true, nil)

	got, tokens, err := f.svc.Refresh(context.Background(), secret, testIP)

	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEqual(t, secret, tokens.RefreshToken)
	assert.Equal(t, newHash, auth.HashRefreshSecret(tokens.RefreshToken),
		"the ledger row must reference the secret handed to the client")
	f.tokenRepo.AssertExpectations(t)
}

func TestRefresh_UnknownToken_Returns401(t *testing.T) {
	f := newAuthFixture(t)

	f.tokenRepo.On("GetByHash", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)

	_, _, err := f.svc.Refresh(context.Background(), "deadbeef", testIP)

	require.Error(t, err)
	assert.Equal(t, 401, apperrors.HTTPStatus(err))
}

func TestRefresh_ExpiredToken_Returns401(t *testing.T) {
	f := newAuthFixture(t)

	secret, err := auth.NewRefreshSecret()
	require.NoError(t, err)
	stored := storedToken("u-1", secret)
	stored.ExpiresAt = time.Now().UTC().Add(-time.Minute)

	f.tokenRepo.On("GetByHash", mock.Anything, stored.TokenHash).Return(stored, nil)

	_, _, err = f.svc.Refresh(context.Background(), secret, testIP)

	require.Error(t, err)
	assert.Equal(t, 401, apperrors.HTTPStatus(err))
	assert.Contains(t, err.Error(), "token expired")
	f.tokenRepo.AssertNotCalled(t, "Create")
}

func TestRefresh_RevokedToken_RevokesFamilyAndReturns403(t *testing.T) {
	f := newAuthFixture(t)

	secret, err := auth.NewRefreshSecret()
	require.NoError(t, err)
	stored := storedToken("u-1", secret)
	revokedAt := time.Now().UTC().Add(-time.Minute)
	stored.RevokedAt = &revokedAt
	stored.ReplacedByTokenHash = "successor-hash"

	f.tokenRepo.On("GetByHash", mock.Anything, stored.TokenHash).Return(stored, nil)
	f.tokenRepo.On("RevokeAllByUserID", mock.Anything, "u-1", testIP, domain.ReuseViolationMarker).
		Return(int64(2), nil)
	f.events.On("PublishSessionReuseDetected", mock.Anything, "u-1", testIP, int64(2)).Return(nil)

	_, _, err = f.svc.Refresh(context.Background(), secret, testIP)

	require.Error(t, err)
	assert.Equal(t, 403, apperrors.HTTPStatus(err))
	assert.Contains(t, err.Error(), "Security violation - Session revoked")
	f.tokenRepo.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestRefresh_FamilyRevocationFails_Returns500Not403(t *testing.T) {
	f := newAuthFixture(t)

	secret, err := auth.NewRefreshSecret()
	require.NoError(t, err)
	stored := storedToken("u-1", secret)
	revokedAt := time.Now().UTC()
	stored.RevokedAt = &revokedAt

	f.tokenRepo.On("GetByHash", mock.Anything, stored.TokenHash).Return(stored, nil)
	f.tokenRepo.On("RevokeAllByUserID", mock.Anything, "u-1", testIP, domain.ReuseViolationMarker).
		Return(int64(0), errors.New("connection reset"))

	_, _, err = f.svc.Refresh(context.Background(), secret, testIP)

	require.Error(t, err)
	assert.Equal(t, 500, apperrors.HTTPStatus(err),
		"a reuse verdict may only be delivered once the revocation is durable")
}

func TestRefresh_ConcurrentRotation_LoserTreatedAsReuse(t *testing.T) {
	f := newAuthFixture(t)
	user := activeUser(t)

	secret, err := auth.NewRefreshSecret()
	require.NoError(t, err)
	stored := storedToken(user.ID, secret)

	f.tokenRepo.On("GetByHash", mock.Anything, stored.TokenHash).Return(stored, nil)
	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.tokenRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	// Another request already revoked this token between read and write.
	f.tokenRepo.On("RevokeIfActive", mock.Anything, stored.TokenHash, testIP, mock.Anything).
		Return(false, nil)
	f.tokenRepo.On("RevokeAllByUserID", mock.Anything, user.ID, testIP, domain.ReuseViolationMarker).
		Return(int64(3), nil)
	f.events.On("PublishSessionReuseDetected", mock.Anything, user.ID, testIP, int64(3)).Return(nil)

	_, _, err = f.svc.Refresh(context.Background(), secret, testIP)

	require.Error(t, err)
	assert.Equal(t, 403, apperrors.HTTPStatus(err))
}

// --- Logout ---

func TestLogout_RevokesToken(t *testing.T) {
	f := newAuthFixture(t)

	secret, err := auth.NewRefreshSecret()
	require.NoError(t, err)
	hash := auth.HashRefreshSecret(secret)

	f.tokenRepo.On("RevokeIfActive", mock.Anything, hash, testIP, "").Return(true, nil)

	err = f.svc.Logout(context.Background(), secret, testIP)
	assert.NoError(t, err)
	f.tokenRepo.AssertExpectations(t)
}

func TestLogout_UnknownToken_Idempotent(t *testing.T) {
	f := newAuthFixture(t)

	f.tokenRepo.On("RevokeIfActive", mock.Anything, mock.Anything, testIP, "").Return(false, nil)

	err := f.svc.Logout(context.Background(), "does-not-exist", testIP)
	assert.NoError(t, err)
}

func TestLogout_NoToken_Idempotent(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.Logout(context.Background(), "", testIP)
	assert.NoError(t, err)
	f.tokenRepo.AssertNotCalled(t, "RevokeIfActive")
}
