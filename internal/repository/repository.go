package repository

import (
	"context"

	"github.com/sri-narendra/Tasks/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// CreateWithDefaults inserts a user together with their starter board and
	// list in a single transaction. Either all three rows exist afterwards or
	// none do.
	CreateWithDefaults(ctx context.Context, user *domain.User, board *domain.Board, list *domain.List) error

	// GetByID retrieves a non-deleted user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a non-deleted user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns all non-deleted users.
	List(ctx context.Context) ([]domain.User, error)
}

// RefreshTokenRepository defines the interface for the refresh token ledger.
// Rows are never deleted; revocation and replacement are recorded in place.
type RefreshTokenRepository interface {
	// Create appends a new token row to the ledger.
	Create(ctx context.Context, token *domain.RefreshToken) error

	// GetByHash retrieves a token row by the digest of its secret.
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// RevokeIfActive atomically revokes the token identified by tokenHash,
	// recording the revoking IP and the hash of its replacement. It reports
	// whether a row was actually transitioned from active to revoked; false
	// means the token was already revoked by a concurrent request.
	RevokeIfActive(ctx context.Context, tokenHash, revokedByIP, replacedByHash string) (bool, error)

	// RevokeAllByUserID revokes every active token for the user, stamping each
	// with the given replacement marker. Returns the number of revoked rows.
	RevokeAllByUserID(ctx context.Context, userID, revokedByIP, replacedByMarker string) (int64, error)
}

// BoardRepository defines the interface for board persistence operations.
type BoardRepository interface {
	Create(ctx context.Context, board *domain.Board) error

	// GetOwned retrieves a non-deleted board only if it belongs to userID.
	GetOwned(ctx context.Context, id, userID string) (*domain.Board, error)

	ListByUserID(ctx context.Context, userID string) ([]domain.Board, error)
	Update(ctx context.Context, board *domain.Board) error

	// SoftDelete marks the board deleted and cascades to its lists, tasks,
	// and attachments.
	SoftDelete(ctx context.Context, id, userID string) error
}

// ListRepository defines the interface for list persistence operations.
type ListRepository interface {
	Create(ctx context.Context, list *domain.List) error
	GetOwned(ctx context.Context, id, userID string) (*domain.List, error)
	ListByBoardID(ctx context.Context, boardID, userID string) ([]domain.List, error)
	Update(ctx context.Context, list *domain.List) error

	// SoftDelete marks the list deleted and cascades to its tasks and
	// attachments.
	SoftDelete(ctx context.Context, id, userID string) error
}

// TaskRepository defines the interface for task persistence operations.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetOwned(ctx context.Context, id, userID string) (*domain.Task, error)
	ListByListID(ctx context.Context, listID, userID string) ([]domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error

	// SoftDelete marks the task deleted and cascades to its attachments.
	SoftDelete(ctx context.Context, id, userID string) error
}

// AttachmentRepository defines the interface for attachment persistence operations.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	GetOwned(ctx context.Context, id, userID string) (*domain.Attachment, error)
	ListByTaskID(ctx context.Context, taskID, userID string) ([]domain.Attachment, error)
	SoftDelete(ctx context.Context, id, userID string) error
}
