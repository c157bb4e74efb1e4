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

const listColumns = `id, board_id, user_id, title, position, created_at, updated_at, deleted_at`

// ListRepository implements repository.ListRepository using PostgreSQL.
type ListRepository struct {
	db DB
}

// NewListRepository creates a new PostgreSQL-backed list repository.
func NewListRepository(db DB) *ListRepository {
	return &ListRepository{db: db}
}

// Create inserts a new list.
func (r *ListRepository) Create(ctx context.Context, l *domain.List) error {
	query := `
		INSERT INTO lists (id, board_id, user_id, title, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		l.ID, l.BoardID, l.UserID, l.Title, l.Position, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert list: %w", err)
	}

	return nil
}

// GetOwned retrieves a non-deleted list only if it belongs to userID.
func (r *ListRepository) GetOwned(ctx context.Context, id, userID string) (*domain.List, error) {
	query := `
		SELECT ` + listColumns + `
		FROM lists
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	var l domain.List
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&l.ID, &l.BoardID, &l.UserID, &l.Title, &l.Position, &l.CreatedAt, &l.UpdatedAt, &l.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan list: %w", err)
	}

	return &l, nil
}

// ListByBoardID returns all non-deleted lists on a board owned by the user,
// ordered by position.
func (r *ListRepository) ListByBoardID(ctx context.Context, boardID, userID string) ([]domain.List, error) {
	query := `
		SELECT ` + listColumns + `
		FROM lists
		WHERE board_id = $1 AND user_id = $2 AND deleted_at IS NULL
		ORDER BY position ASC, created_at ASC`

	rows, err := r.db.Query(ctx, query, boardID, userID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var lists []domain.List
	for rows.Next() {
		var l domain.List
		if err := rows.Scan(
			&l.ID, &l.BoardID, &l.UserID, &l.Title, &l.Position, &l.CreatedAt, &l.UpdatedAt, &l.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan list row: %w", err)
		}
		lists = append(lists, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate list rows: %w", err)
	}

	if lists == nil {
		lists = []domain.List{}
	}

	return lists, nil
}

// Update modifies an existing list owned by the user.
func (r *ListRepository) Update(ctx context.Context, l *domain.List) error {
	l.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE lists
		SET title = $1, position = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5 AND deleted_at IS NULL`

	ct, err := r.db.Exec(ctx, query, l.Title, l.Position, l.UpdatedAt, l.ID, l.UserID)
	if err != nil {
		return fmt.Errorf("update list: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// SoftDelete marks the list deleted and cascades to its tasks and attachments.
func (r *ListRepository) SoftDelete(ctx context.Context, id, userID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()

	ct, err := tx.Exec(ctx, `
		UPDATE lists SET deleted_at = $1
		WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL`,
		now, id, userID,
	)
	if err != nil {
		return fmt.Errorf("soft delete list: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE tasks SET deleted_at = $1
		WHERE list_id = $2 AND deleted_at IS NULL`,
		now, id,
	)
	if err != nil {
		return fmt.Errorf("soft delete list tasks: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE attachments SET deleted_at = $1
		WHERE task_id IN (SELECT id FROM tasks WHERE list_id = $2) AND deleted_at IS NULL`,
		now, id,
	)
	if err != nil {
		return fmt.Errorf("soft delete list attachments: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
