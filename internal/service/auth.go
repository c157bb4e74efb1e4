package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sri-narendra/Tasks/internal/auth"
	"github.com/sri-narendra/Tasks/internal/domain"
	"github.com/sri-narendra/Tasks/internal/rate"
	"github.com/sri-narendra/Tasks/internal/repository"
	apperrors "github.com/sri-narendra/Tasks/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// Starter content created for every new account.
const (
	defaultBoardTitle      = "Main Board"
	defaultBoardBackground = "#1a73e8"
	defaultListTitle       = "To Do"
)

// dummyHash is compared against when login hits an unknown email, so both
// branches cost one bcrypt verification. Generated once from a throwaway
// password at cost 12.
var dummyHash = []byte("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")

// EventPublisher publishes auth domain events. Satisfied by *event.Producer.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishSessionReuseDetected(ctx context.Context, userID, ip string, revokedTokens int64) error
}

// LoginThrottle limits failed login attempts. Satisfied by *rate.LoginLimiter.
type LoginThrottle interface {
	Check(ctx context.Context, email, ip string) error
	RecordFailure(ctx context.Context, email, ip string) error
	Reset(ctx context.Context, email, ip string) error
}

// TokenPair bundles the credentials issued by register, login, and refresh.
// RefreshToken is the raw opaque secret; it exists only here and in the
// client's cookie.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthService implements registration, login, and the refresh token rotation
// protocol.
type AuthService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.RefreshTokenRepository
	jwtManager *auth.JWTManager
	throttle   LoginThrottle
	events     EventPublisher
	logger     *slog.Logger
	refreshTTL time.Duration
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	jwtManager *auth.JWTManager,
	throttle LoginThrottle,
	events EventPublisher,
	logger *slog.Logger,
	refreshTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
		throttle:   throttle,
		events:     events,
		logger:     logger,
		refreshTTL: refreshTTL,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Email    string
	Password string
}

// Register creates a new user account together with their starter board and
// list, then issues a token pair.
func (s *AuthService) Register(ctx context.Context, input RegisterInput, ip string) (*domain.User, *TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Name:         input.Name,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	board := &domain.Board{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		Title:      defaultBoardTitle,
		Background: defaultBoardBackground,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	list := &domain.List{
		ID:        uuid.New().String(),
		BoardID:   board.ID,
		UserID:    user.ID,
		Title:     defaultListTitle,
		Position:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.CreateWithDefaults(ctx, user, board, list); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, nil, apperrors.InvalidInput("email already in use")
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user, ip)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	// Event publishing is best effort; registration already committed.
	if err := s.events.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// Login authenticates a user with email and password, returning tokens.
// Unknown email and wrong password are indistinguishable to the caller, and
// both cost one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, input LoginInput, ip string) (*domain.User, *TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	if err := s.throttle.Check(ctx, input.Email, ip); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			return nil, nil, apperrors.RateLimited("too many failed login attempts, try again later")
		}
		// The throttle backend being down must not lock everyone out.
		s.logger.WarnContext(ctx, "login throttle unavailable, failing open",
			slog.String("error", err.Error()),
		)
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(input.Password))
		s.recordLoginFailure(ctx, input.Email, ip)
		return nil, nil, apperrors.Unauthorized("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.recordLoginFailure(ctx, input.Email, ip)
		return nil, nil, apperrors.Unauthorized("Invalid credentials")
	}

	if err := s.throttle.Reset(ctx, input.Email, ip); err != nil {
		s.logger.WarnContext(ctx, "failed to reset login throttle",
			slog.String("error", err.Error()),
		)
	}

	tokens, err := s.issueTokens(ctx, user, ip)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// one is issued, linked to the old one in the ledger. Presenting an already
// revoked token is treated as theft and revokes the whole family.
func (s *AuthService) Refresh(ctx context.Context, refreshSecret, ip string) (*domain.User, *TokenPair, error) {
	if refreshSecret == "" {
		return nil, nil, apperrors.Unauthorized("refresh token required")
	}

	oldHash := auth.HashRefreshSecret(refreshSecret)

	stored, err := s.tokenRepo.GetByHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.Unauthorized("invalid refresh token")
		}
		return nil, nil, fmt.Errorf("look up refresh token: %w", err)
	}

	now := time.Now().UTC()

	if stored.Revoked() {
		return nil, nil, s.handleReuse(ctx, stored, ip)
	}

	if stored.Expired(now) {
		return nil, nil, apperrors.Unauthorized("token expired")
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("invalid refresh token")
	}

	newSecret, err := auth.NewRefreshSecret()
	if err != nil {
		return nil, nil, fmt.Errorf("generate refresh secret: %w", err)
	}
	newHash := auth.HashRefreshSecret(newSecret)

	newToken := &domain.RefreshToken{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		TokenHash:   newHash,
		ExpiresAt:   now.Add(s.refreshTTL),
		CreatedAt:   now,
		CreatedByIP: ip,
	}
	if err := s.tokenRepo.Create(ctx, newToken); err != nil {
		return nil, nil, fmt.Errorf("store refresh token: %w", err)
	}

	// The conditional revoke closes the race between two rotations of the
	// same token: the loser observes revoked=false and is treated as reuse.
	revoked, err := s.tokenRepo.RevokeIfActive(ctx, oldHash, ip, newHash)
	if err != nil {
		return nil, nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	if !revoked {
		return nil, nil, s.handleReuse(ctx, stored, ip)
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate access token: %w", err)
	}

	s.logger.InfoContext(ctx, "refresh token rotated",
		slog.String("user_id", user.ID),
		slog.String("ip", ip),
	)

	return user, &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     newSecret,
		RefreshExpiresAt: newToken.ExpiresAt,
	}, nil
}

// Logout revokes the presented refresh token. It is idempotent: unknown,
// already revoked, and missing tokens all succeed, so a client can always
// clear its session.
func (s *AuthService) Logout(ctx context.Context, refreshSecret, ip string) error {
	if refreshSecret == "" {
		return nil
	}

	hash := auth.HashRefreshSecret(refreshSecret)

	if _, err := s.tokenRepo.RevokeIfActive(ctx, hash, ip, ""); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out", slog.String("ip", ip))
	return nil
}

// ListUsers returns all users. Intended for admin use only; the handler
// enforces the role check.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// handleReuse revokes the entire token family after a revoked token was
// presented again. The revocation must be durable before the caller is told
// anything, so a storage failure here surfaces as a 500 rather than a 403.
func (s *AuthService) handleReuse(ctx context.Context, stored *domain.RefreshToken, ip string) error {
	revoked, err := s.tokenRepo.RevokeAllByUserID(ctx, stored.UserID, ip, domain.ReuseViolationMarker)
	if err != nil {
		return fmt.Errorf("revoke token family: %w", err)
	}

	s.logger.WarnContext(ctx, "refresh token reuse detected, session family revoked",
		slog.String("user_id", stored.UserID),
		slog.String("ip", ip),
		slog.Int64("revoked_tokens", revoked),
	)

	if err := s.events.PublishSessionReuseDetected(ctx, stored.UserID, ip, revoked); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish session.reuse_detected event",
			slog.String("user_id", stored.UserID),
			slog.String("error", err.Error()),
		)
	}

	return apperrors.Forbidden("Security violation - Session revoked")
}

// issueTokens creates an access token and a fresh refresh token chain link.
func (s *AuthService) issueTokens(ctx context.Context, user *domain.User, ip string) (*TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshSecret, err := auth.NewRefreshSecret()
	if err != nil {
		return nil, fmt.Errorf("generate refresh secret: %w", err)
	}

	now := time.Now().UTC()
	token := &domain.RefreshToken{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		TokenHash:   auth.HashRefreshSecret(refreshSecret),
		ExpiresAt:   now.Add(s.refreshTTL),
		CreatedAt:   now,
		CreatedByIP: ip,
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshSecret,
		RefreshExpiresAt: token.ExpiresAt,
	}, nil
}

func (s *AuthService) recordLoginFailure(ctx context.Context, email, ip string) {
	if err := s.throttle.RecordFailure(ctx, email, ip); err != nil {
		s.logger.WarnContext(ctx, "failed to record login failure",
			slog.String("error", err.Error()),
		)
	}
}

// validatePassword enforces the password policy: minimum length plus at
// least one uppercase letter, one lowercase letter, one digit, and one
// special character.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return apperrors.InvalidInput("password must contain uppercase, lowercase, digit, and special characters")
	}

	return nil
}
