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

const boardColumns = `id, user_id, title, background, archived, created_at, updated_at, deleted_at`

// BoardRepository implements repository.BoardRepository using PostgreSQL.
type BoardRepository struct {
	db DB
}

// NewBoardRepository creates a new PostgreSQL-backed board repository.
func NewBoardRepository(db DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// Create inserts a new board.
func (r *BoardRepository) Create(ctx context.Context, b *domain.Board) error {
	query := `
		INSERT INTO boards (id, user_id, title, background, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		b.ID, b.UserID, b.Title, b.Background, b.Archived, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert board: %w", err)
	}

	return nil
}

// GetOwned retrieves a non-deleted board only if it belongs to userID.
// Absent, deleted, and foreign boards are indistinguishable to the caller.
func (r *BoardRepository) GetOwned(ctx context.Context, id, userID string) (*domain.Board, error) {
	query := `
		SELECT ` + boardColumns + `
		FROM boards
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	var b domain.Board
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&b.ID, &b.UserID, &b.Title, &b.Background, &b.Archived, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan board: %w", err)
	}

	return &b, nil
}

// ListByUserID returns all non-deleted boards for the given user.
func (r *BoardRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Board, error) {
	query := `
		SELECT ` + boardColumns + `
		FROM boards
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	var boards []domain.Board
	for rows.Next() {
		var b domain.Board
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.Title, &b.Background, &b.Archived, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan board row: %w", err)
		}
		boards = append(boards, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate board rows: %w", err)
	}

	if boards == nil {
		boards = []domain.Board{}
	}

	return boards, nil
}

// Update modifies an existing board owned by the user.
func (r *BoardRepository) Update(ctx context.Context, b *domain.Board) error {
	b.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE boards
		SET title = $1, background = $2, archived = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6 AND deleted_at IS NULL`

	ct, err := r.db.Exec(ctx, query, b.Title, b.Background, b.Archived, b.UpdatedAt, b.ID, b.UserID)
	if err != nil {
		return fmt.Errorf("update board: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// SoftDelete marks the board deleted and cascades to its lists, tasks, and
// attachments in one transaction.
func (r *BoardRepository) SoftDelete(ctx context.Context, id, userID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()

	ct, err := tx.Exec(ctx, `
		UPDATE boards SET deleted_at = $1
		WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL`,
		now, id, userID,
	)
	if err != nil {
		return fmt.Errorf("soft delete board: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE lists SET deleted_at = $1
		WHERE board_id = $2 AND deleted_at IS NULL`,
		now, id,
	)
	if err != nil {
		return fmt.Errorf("soft delete board lists: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE tasks SET deleted_at = $1
		WHERE list_id IN (SELECT id FROM lists WHERE board_id = $2) AND deleted_at IS NULL`,
		now, id,
	)
	if err != nil {
		return fmt.Errorf("soft delete board tasks: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE attachments SET deleted_at = $1
		WHERE task_id IN (
			SELECT t.id FROM tasks t
			JOIN lists l ON t.list_id = l.id
			WHERE l.board_id = $2
		) AND deleted_at IS NULL`,
		now, id,
	)
	if err != nil {
		return fmt.Errorf("soft delete board attachments: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
