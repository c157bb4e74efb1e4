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

const taskColumns = `id, list_id, user_id, title, description, position, completed, completed_at, due_date, created_at, updated_at, deleted_at`

// TaskRepository implements repository.TaskRepository using PostgreSQL.
type TaskRepository struct {
	db DB
}

// NewTaskRepository creates a new PostgreSQL-backed task repository.
func NewTaskRepository(db DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	query := `
		INSERT INTO tasks (id, list_id, user_id, title, description, position, completed, completed_at, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		t.ID, t.ListID, t.UserID, t.Title, t.Description, t.Position,
		t.Completed, t.CompletedAt, t.DueDate, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	return nil
}

// GetOwned retrieves a non-deleted task only if it belongs to userID.
func (r *TaskRepository) GetOwned(ctx context.Context, id, userID string) (*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	var t domain.Task
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&t.ID, &t.ListID, &t.UserID, &t.Title, &t.Description, &t.Position,
		&t.Completed, &t.CompletedAt, &t.DueDate, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	return &t, nil
}

// ListByListID returns all non-deleted tasks in a list owned by the user,
// ordered by position.
func (r *TaskRepository) ListByListID(ctx context.Context, listID, userID string) ([]domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE list_id = $1 AND user_id = $2 AND deleted_at IS NULL
		ORDER BY position ASC, created_at ASC`

	rows, err := r.db.Query(ctx, query, listID, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID, &t.ListID, &t.UserID, &t.Title, &t.Description, &t.Position,
			&t.Completed, &t.CompletedAt, &t.DueDate, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task rows: %w", err)
	}

	if tasks == nil {
		tasks = []domain.Task{}
	}

	return tasks, nil
}

// Update modifies an existing task owned by the user.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	t.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET list_id = $1, title = $2, description = $3, position = $4, completed = $5, completed_at = $6, due_date = $7, updated_at = $8
		WHERE id = $9 AND user_id = $10 AND deleted_at IS NULL`

	ct, err := r.db.Exec(ctx, query,
		t.ListID, t.Title, t.Description, t.Position, t.Completed, t.CompletedAt, t.DueDate, t.UpdatedAt, t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// SoftDelete marks the task deleted and cascades to its attachments.
func (r *TaskRepository) SoftDelete(ctx context.Context, id, userID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()

	ct, err := tx.Exec(ctx, `
		UPDATE tasks SET deleted_at = $1
		WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL`,
		now, id, userID,
	)
	if err != nil {
		return fmt.Errorf("soft delete task: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE attachments SET deleted_at = $1
		WHERE task_id = $2 AND deleted_at IS NULL`,
		now, id,
	)
	if err != nil {
		return fmt.Errorf("soft delete task attachments: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
