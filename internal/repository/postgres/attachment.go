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

const attachmentColumns = `id, task_id, user_id, file_name, file_url, file_type, file_size, created_at, updated_at, deleted_at`

// AttachmentRepository implements repository.AttachmentRepository using PostgreSQL.
type AttachmentRepository struct {
	db DB
}

// NewAttachmentRepository creates a new PostgreSQL-backed attachment repository.
func NewAttachmentRepository(db DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create inserts a new attachment.
func (r *AttachmentRepository) Create(ctx context.Context, a *domain.Attachment) error {
	query := `
		INSERT INTO attachments (id, task_id, user_id, file_name, file_url, file_type, file_size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		a.ID, a.TaskID, a.UserID, a.FileName, a.FileURL, a.FileType, a.FileSize, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}

	return nil
}

// GetOwned retrieves a non-deleted attachment only if it belongs to userID.
func (r *AttachmentRepository) GetOwned(ctx context.Context, id, userID string) (*domain.Attachment, error) {
	query := `
		SELECT ` + attachmentColumns + `
		FROM attachments
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	var a domain.Attachment
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&a.ID, &a.TaskID, &a.UserID, &a.FileName, &a.FileURL, &a.FileType, &a.FileSize,
		&a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan attachment: %w", err)
	}

	return &a, nil
}

// ListByTaskID returns all non-deleted attachments on a task owned by the user.
func (r *AttachmentRepository) ListByTaskID(ctx context.Context, taskID, userID string) ([]domain.Attachment, error) {
	query := `
		SELECT ` + attachmentColumns + `
		FROM attachments
		WHERE task_id = $1 AND user_id = $2 AND deleted_at IS NULL
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []domain.Attachment
	for rows.Next() {
		var a domain.Attachment
		if err := rows.Scan(
			&a.ID, &a.TaskID, &a.UserID, &a.FileName, &a.FileURL, &a.FileType, &a.FileSize,
			&a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attachment row: %w", err)
		}
		attachments = append(attachments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachment rows: %w", err)
	}

	if attachments == nil {
		attachments = []domain.Attachment{}
	}

	return attachments, nil
}

// SoftDelete marks the attachment deleted.
func (r *AttachmentRepository) SoftDelete(ctx context.Context, id, userID string) error {
	query := `
		UPDATE attachments SET deleted_at = $1
		WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL`

	ct, err := r.db.Exec(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("soft delete attachment: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
