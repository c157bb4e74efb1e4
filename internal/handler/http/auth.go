package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sri-narendra/Tasks/internal/service"
	apperrors "github.com/sri-narendra/Tasks/pkg/errors"
	"github.com/sri-narendra/Tasks/pkg/middleware"
	"github.com/sri-narendra/Tasks/pkg/validator"
)

// refreshCookieName is the cookie carrying the opaque refresh secret.
const refreshCookieName = "refresh_token"

// refreshCookiePath restricts the cookie to the auth endpoints so it is not
// attached to every API request.
const refreshCookiePath = "/api/v1/auth"

// AuthHandler handles HTTP requests for auth endpoints. The refresh secret
// travels exclusively in an HttpOnly cookie; response bodies carry only the
// access token.
type AuthHandler struct {
	service      *service.AuthService
	logger       *slog.Logger
	secureCookie bool
}

// NewAuthHandler creates a new auth HTTP handler. secureCookie should be true
// in production so the refresh cookie is only sent over TLS.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger, secureCookie: secureCookie}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for user registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

// LoginRequest is the JSON request body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// --- Response types ---

// AuthResponse wraps user data with the access token. The refresh token is
// set as a cookie and never appears here.
type AuthResponse struct {
	User        any    `json:"user"`
	AccessToken string `json:"access_token"`
}

// MeResponse echoes the verified access token claims.
type MeResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// --- Handlers ---

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	input := service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	}

	user, tokens, err := h.service.Register(r.Context(), input, middleware.ClientIP(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	h.setRefreshCookie(w, tokens.RefreshToken, tokens.RefreshExpiresAt)

	writeJSON(w, http.StatusCreated, response{
		Data: AuthResponse{
			User:        user,
			AccessToken: tokens.AccessToken,
		},
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	input := service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}

	user, tokens, err := h.service.Login(r.Context(), input, middleware.ClientIP(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	h.setRefreshCookie(w, tokens.RefreshToken, tokens.RefreshExpiresAt)

	writeJSON(w, http.StatusOK, response{
		Data: AuthResponse{
			User:        user,
			AccessToken: tokens.AccessToken,
		},
	})
}

// Refresh handles POST /api/v1/auth/refresh. The refresh secret is read from
// the cookie only; there is no body fallback.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	secret := h.refreshSecretFromCookie(r)
	if secret == "" {
		writeAppError(w, r, apperrors.Unauthorized("refresh token required"), h.logger)
		return
	}

	user, tokens, err := h.service.Refresh(r.Context(), secret, middleware.ClientIP(r))
	if err != nil {
		// A revoked family means the cookie is worthless; clear it so the
		// client stops presenting it.
		if apperrors.HTTPStatus(err) == http.StatusForbidden {
			h.clearRefreshCookie(w)
		}
		writeAppError(w, r, err, h.logger)
		return
	}

	h.setRefreshCookie(w, tokens.RefreshToken, tokens.RefreshExpiresAt)

	writeJSON(w, http.StatusOK, response{
		Data: AuthResponse{
			User:        user,
			AccessToken: tokens.AccessToken,
		},
	})
}

// Logout handles POST /api/v1/auth/logout. Always succeeds and always clears
// the cookie, whatever state the token is in.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	secret := h.refreshSecretFromCookie(r)

	if err := h.service.Logout(r.Context(), secret, middleware.ClientIP(r)); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	h.clearRefreshCookie(w)

	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"message": "Logged out"},
	})
}

// Me handles GET /api/v1/auth/me. It answers from the verified token claims
// without touching storage.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeAppError(w, r, apperrors.Unauthorized("missing authorization"), h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: MeResponse{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		},
	})
}

// --- Cookie helpers ---

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, secret string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    secret,
		Path:     refreshCookiePath,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) refreshSecretFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// --- Response helpers shared by all handlers in this package ---

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

func writeAppError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			logger.ErrorContext(r.Context(), "request failed",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
		}
		writeJSON(w, appErr.Status, response{
			Error: &errorResponse{Code: appErr.Code, Message: appErr.Message},
		})
		return
	}

	logger.ErrorContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, response{
		Error: &errorResponse{Code: "INTERNAL_ERROR", Message: "an internal error occurred"},
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	writeJSON(w, http.StatusBadRequest, response{
		Error: &errorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}
