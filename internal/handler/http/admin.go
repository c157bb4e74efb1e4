package http

import (
	"log/slog"
	"net/http"

	"github.com/sri-narendra/Tasks/internal/service"
)

// AdminHandler handles HTTP requests for admin-only endpoints.
type AdminHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(svc *service.AuthService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: svc, logger: logger}
}

// ListUsers handles GET /api/v1/admin/users. The route is mounted behind the
// admin role check, so any request reaching here is already authorized.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: users})
}
