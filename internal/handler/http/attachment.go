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

// AttachmentHandler handles HTTP requests for attachment endpoints.
type AttachmentHandler struct {
	service *service.BoardService
	logger  *slog.Logger
}

// NewAttachmentHandler creates a new attachment HTTP handler.
func NewAttachmentHandler(svc *service.BoardService, logger *slog.Logger) *AttachmentHandler {
	return &AttachmentHandler{service: svc, logger: logger}
}

// CreateAttachmentRequest is the JSON request body for attaching a file
// reference to a task. The file itself lives in external storage; only its
// metadata is recorded here.
type CreateAttachmentRequest struct {
	TaskID   string `json:"task_id" validate:"required,uuid"`
	FileName string `json:"file_name" validate:"required,min=1,max=255"`
	FileURL  string `json:"file_url" validate:"required,url,max=2048"`
	FileType string `json:"file_type" validate:"omitempty,max=100"`
	FileSize int64  `json:"file_size" validate:"gte=0"`
}

// Create handles POST /api/v1/attachments
func (h *AttachmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req CreateAttachmentRequest
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

	attachment, err := h.service.CreateAttachment(r.Context(), middleware.UserIDFromContext(r.Context()), service.CreateAttachmentInput{
		TaskID:   req.TaskID,
		FileName: req.FileName,
		FileURL:  req.FileURL,
		FileType: req.FileType,
		FileSize: req.FileSize,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: attachment})
}

// Delete handles DELETE /api/v1/attachments/{id}
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteAttachment(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"message": "Attachment deleted"},
	})
}
