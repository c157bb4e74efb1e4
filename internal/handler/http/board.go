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

// BoardHandler handles HTTP requests for board endpoints.
type BoardHandler struct {
	service *service.BoardService
	logger  *slog.Logger
}

// NewBoardHandler creates a new board HTTP handler.
func NewBoardHandler(svc *service.BoardService, logger *slog.Logger) *BoardHandler {
	return &BoardHandler{service: svc, logger: logger}
}

// CreateBoardRequest is the JSON request body for creating a board.
type CreateBoardRequest struct {
	Title      string `json:"title" validate:"required,min=1,max=200"`
	Background string `json:"background" validate:"omitempty,max=200"`
}

// UpdateBoardRequest is the JSON request body for updating a board.
type UpdateBoardRequest struct {
	Title      *string `json:"title" validate:"omitempty,min=1,max=200"`
	Background *string `json:"background" validate:"omitempty,max=200"`
	Archived   *bool   `json:"archived"`
}

// Create handles POST /api/v1/boards
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req CreateBoardRequest
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

	board, err := h.service.CreateBoard(r.Context(), middleware.UserIDFromContext(r.Context()), service.CreateBoardInput{
		Title:      req.Title,
		Background: req.Background,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: board})
}

// List handles GET /api/v1/boards
func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	boards, err := h.service.ListBoards(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: boards})
}

// Get handles GET /api/v1/boards/{id}
func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.GetBoard(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: board})
}

// Lists handles GET /api/v1/boards/{id}/lists
func (h *BoardHandler) Lists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.service.ListsByBoard(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: lists})
}

// Update handles PUT /api/v1/boards/{id}
func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req UpdateBoardRequest
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

	board, err := h.service.UpdateBoard(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), service.UpdateBoardInput{
		Title:      req.Title,
		Background: req.Background,
		Archived:   req.Archived,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: board})
}

// Delete handles DELETE /api/v1/boards/{id}
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteBoard(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"message": "Board deleted"},
	})
}
