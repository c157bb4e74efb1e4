package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sri-narendra/Tasks/internal/service"
	"github.com/sri-narendra/Tasks/pkg/middleware"
	"github.com/sri-narendra/Tasks/pkg/validator"
)

// ListHandler handles HTTP requests for list endpoints.
type ListHandler struct {
	service *service.BoardService
	logger  *slog.Logger
}

// NewListHandler creates a new list HTTP handler.
func NewListHandler(svc *service.BoardService, logger *slog.Logger) *ListHandler {
	return &ListHandler{service: svc, logger: logger}
}

// CreateListRequest is the JSON request body for creating a list. The board
// reference comes from the body, so ownership of the parent is checked before
// anything is written.
type CreateListRequest struct {
	BoardID  string `json:"board_id" validate:"required,uuid"`
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Position int    `json:"position" validate:"gte=0"`
}

// UpdateListRequest is the JSON request body for updating a list.
type UpdateListRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=200"`
	Position *int    `json:"position" validate:"omitempty,gte=0"`
}

// Create handles POST /api/v1/lists
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req CreateListRequest
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

	list, err := h.service.CreateList(r.Context(), middleware.UserIDFromContext(r.Context()), service.CreateListInput{
		BoardID:  req.BoardID,
		Title:    req.Title,
		Position: req.Position,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: list})
}

// Get handles GET /api/v1/lists/{id}
func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.GetList(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: list})
}

// Tasks handles GET /api/v1/lists/{id}/tasks
func (h *ListHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.TasksByList(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: tasks})
}

// Update handles PUT /api/v1/lists/{id}
func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req UpdateListRequest
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

	list, err := h.service.UpdateList(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), service.UpdateListInput{
		Title:    req.Title,
		Position: req.Position,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: list})
}

// Delete handles DELETE /api/v1/lists/{id}
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteList(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"message": "List deleted"},
	})
}
