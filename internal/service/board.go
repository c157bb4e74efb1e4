package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sri-narendra/Tasks/internal/domain"
	"github.com/sri-narendra/Tasks/internal/repository"
	apperrors "github.com/sri-narendra/Tasks/pkg/errors"
)

// BoardService implements the business logic for boards, lists, tasks, and
// attachments. Every operation is scoped to the acting user; a resource that
// is absent, deleted, or owned by someone else yields the same not-found
// error.
type BoardService struct {
	boardRepo      repository.BoardRepository
	listRepo       repository.ListRepository
	taskRepo       repository.TaskRepository
	attachmentRepo repository.AttachmentRepository
	logger         *slog.Logger
}

// NewBoardService creates a new board service.
func NewBoardService(
	boardRepo repository.BoardRepository,
	listRepo repository.ListRepository,
	taskRepo repository.TaskRepository,
	attachmentRepo repository.AttachmentRepository,
	logger *slog.Logger,
) *BoardService {
	return &BoardService{
		boardRepo:      boardRepo,
		listRepo:       listRepo,
		taskRepo:       taskRepo,
		attachmentRepo: attachmentRepo,
		logger:         logger,
	}
}

// --- Input types ---

// CreateBoardInput holds the parameters for creating a board.
type CreateBoardInput struct {
	Title      string
	Background string
}

// UpdateBoardInput holds the parameters for updating a board. Nil fields are
// left unchanged.
type UpdateBoardInput struct {
	Title      *string
	Background *string
	Archived   *bool
}

// CreateListInput holds the parameters for creating a list.
type CreateListInput struct {
	BoardID  string
	Title    string
	Position int
}

// UpdateListInput holds the parameters for updating a list.
type UpdateListInput struct {
	Title    *string
	Position *int
}

// CreateTaskInput holds the parameters for creating a task.
type CreateTaskInput struct {
	ListID      string
	Title       string
	Description string
	Position    int
	Completed   bool
	DueDate     *time.Time
}

// UpdateTaskInput holds the parameters for updating a task. A non-nil ListID
// moves the task to another list the user owns.
type UpdateTaskInput struct {
	ListID      *string
	Title       *string
	Description *string
	Position    *int
	Completed   *bool
	DueDate     *time.Time
}

// CreateAttachmentInput holds the parameters for attaching a file to a task.
type CreateAttachmentInput struct {
	TaskID   string
	FileName string
	FileURL  string
	FileType string
	FileSize int64
}

// --- Boards ---

// CreateBoard creates a board for the user.
func (s *BoardService) CreateBoard(ctx context.Context, userID string, input CreateBoardInput) (*domain.Board, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if input.Background == "" {
		input.Background = defaultBoardBackground
	}

	now := time.Now().UTC()
	board := &domain.Board{
		ID:         uuid.New().String(),
		UserID:     userID,
		Title:      input.Title,
		Background: input.Background,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.boardRepo.Create(ctx, board); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	s.logger.InfoContext(ctx, "board created",
		slog.String("board_id", board.ID),
		slog.String("user_id", userID),
	)

	return board, nil
}

// GetBoard returns a board the user owns.
func (s *BoardService) GetBoard(ctx context.Context, userID, boardID string) (*domain.Board, error) {
	board, err := s.boardRepo.GetOwned(ctx, boardID, userID)
	if err != nil {
		return nil, s.notFoundOr(err, "board")
	}
	return board, nil
}

// ListBoards returns all boards the user owns.
func (s *BoardService) ListBoards(ctx context.Context, userID string) ([]domain.Board, error) {
	boards, err := s.boardRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return boards, nil
}

// UpdateBoard applies the given changes to a board the user owns.
func (s *BoardService) UpdateBoard(ctx context.Context, userID, boardID string, input UpdateBoardInput) (*domain.Board, error) {
	board, err := s.boardRepo.GetOwned(ctx, boardID, userID)
	if err != nil {
		return nil, s.notFoundOr(err, "board")
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.InvalidInput("title cannot be empty")
		}
		board.Title = *input.Title
	}
	if input.Background != nil {
		board.Background = *input.Background
	}
	if input.Archived != nil {
		board.Archived = *input.Archived
	}

	if err := s.boardRepo.Update(ctx, board); err != nil {
		return nil, s.notFoundOr(err, "board")
	}

	return board, nil
}

// DeleteBoard soft-deletes a board the user owns along with its lists,
// tasks, and attachments.
func (s *BoardService) DeleteBoard(ctx context.Context, userID, boardID string) error {
	if err := s.boardRepo.SoftDelete(ctx, boardID, userID); err != nil {
		return s.notFoundOr(err, "board")
	}

	s.logger.InfoContext(ctx, "board deleted",
		slog.String("board_id", boardID),
		slog.String("user_id", userID),
	)

	return nil
}

// --- Lists ---

// CreateList creates a list on a board the user owns. The parent check
// happens before the insert, so a list can never be attached to a foreign
// board.
func (s *BoardService) CreateList(ctx context.Context, userID string, input CreateListInput) (*domain.List, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}

	if _, err := s.boardRepo.GetOwned(ctx, input.BoardID, userID); err != nil {
		return nil, s.notFoundOr(err, "board")
	}

	now := time.Now().UTC()
	list := &domain.List{
		ID:        uuid.New().String(),
		BoardID:   input.BoardID,
		UserID:    userID,
		Title:     input.Title,
		Position:  input.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.listRepo.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}

	return list, nil
}

// GetList returns a list the user owns.
func (s *BoardService) GetList(ctx context.Context, userID, listID string) (*domain.List, error) {
	list, err := s.listRepo.GetOwned(ctx, listID, userID)
	if err != nil {
		return nil, s.notFoundOr(err, "list")
	}
	return list, nil
}

// ListsByBoard returns all lists on a board the user owns.
func (s *BoardService) ListsByBoard(ctx context.Context, userID, boardID string) ([]domain.List, error) {
	if _, err := s.boardRepo.GetOwned(ctx, boardID, userID); err != nil {
		return nil, s.notFoundOr(err, "board")
	}

	lists, err := s.listRepo.ListByBoardID(ctx, boardID, userID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	return lists, nil
}

// UpdateList applies the given changes to a list the user owns.
func (s *BoardService) UpdateList(ctx context.Context, userID, listID string, input UpdateListInput) (*domain.List, error) {
	list, err := s.listRepo.GetOwned(ctx, listID, userID)
	if err != nil {
		return nil, s.notFoundOr(err, "list")
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.InvalidInput("title cannot be empty")
		}
		list.Title = *input.Title
	}
	if input.Position != nil {
		list.Position = *input.Position
	}

	if err := s.listRepo.Update(ctx, list); err != nil {
		return nil, s.notFoundOr(err, "list")
	}

	return list, nil
}

// DeleteList soft-deletes a list the user owns along with its tasks and
// attachments.
func (s *BoardService) DeleteList(ctx context.Context, userID, listID string) error {
	if err := s.listRepo.SoftDelete(ctx, listID, userID); err != nil {
		return s.notFoundOr(err, "list")
	}
	return nil
}

// --- Tasks ---

// CreateTask creates a task in a list the user owns.
func (s *BoardService) CreateTask(ctx context.Context, userID string, input CreateTaskInput) (*domain.Task, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}

	if _, err := s.listRepo.GetOwned(ctx, input.ListID, userID); err != nil {
		return nil, s.notFoundOr(err, "list")
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:          uuid.New().String(),
		ListID:      input.ListID,
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Position:    input.Position,
		Completed:   input.Completed,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.Completed {
		task.CompletedAt = &now
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

// GetTask returns a task the user owns.
func (s *BoardService) GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	task, err := s.taskRepo.GetOwned(ctx, taskID, userID)
	if err != nil {
		return nil, s.notFoundOr(err, "task")
	}
	return task, nil
}

// TasksByList returns all tasks in a list the user owns.
func (s *BoardService) TasksByList(ctx context.Context, userID, listID string) ([]domain.Task, error) {
	if _, err := s.listRepo.GetOwned(ctx, listID, userID); err != nil {
		return nil, s.notFoundOr(err, "list")
	}

	tasks, err := s.taskRepo.ListByListID(ctx, listID, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies the given changes to a task the user owns. Moving the
// task requires the destination list to be owned as well.
func (s *BoardService) UpdateTask(ctx context.Context, userID, taskID string, input UpdateTaskInput) (*domain.Task, error) {
	task, err := s.taskRepo.GetOwned(ctx, taskID, userID)
	if err != nil {
		return nil, s.notFoundOr(err, "task")
	}

	if input.ListID != nil && *input.ListID != task.ListID {
		if _, err := s.listRepo.GetOwned(ctx, *input.ListID, userID); err != nil {
			return nil, s.notFoundOr(err, "list")
		}
		task.ListID = *input.ListID
	}
	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.InvalidInput("title cannot be empty")
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Position != nil {
		task.Position = *input.Position
	}
	if input.Completed != nil && *input.Completed != task.Completed {
		task.Completed = *input.Completed
		if task.Completed {
			now := time.Now().UTC()
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, s.notFoundOr(err, "task")
	}

	return task, nil
}

// DeleteTask soft-deletes a task the user owns along with its attachments.
func (s *BoardService) DeleteTask(ctx context.Context, userID, taskID string) error {
	if err := s.taskRepo.SoftDelete(ctx, taskID, userID); err != nil {
		return s.notFoundOr(err, "task")
	}
	return nil
}

// --- Attachments ---

// CreateAttachment attaches a file reference to a task the user owns.
func (s *BoardService) CreateAttachment(ctx context.Context, userID string, input CreateAttachmentInput) (*domain.Attachment, error) {
	if input.FileName == "" {
		return nil, apperrors.InvalidInput("file name is required")
	}
	if input.FileURL == "" {
		return nil, apperrors.InvalidInput("file url is required")
	}

	if _, err := s.taskRepo.GetOwned(ctx, input.TaskID, userID); err != nil {
		return nil, s.notFoundOr(err, "task")
	}

	now := time.Now().UTC()
	attachment := &domain.Attachment{
		ID:        uuid.New().String(),
		TaskID:    input.TaskID,
		UserID:    userID,
		FileName:  input.FileName,
		FileURL:   input.FileURL,
		FileType:  input.FileType,
		FileSize:  input.FileSize,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, fmt.Errorf("create attachment: %w", err)
	}

	return attachment, nil
}

// AttachmentsByTask returns all attachments on a task the user owns.
func (s *BoardService) AttachmentsByTask(ctx context.Context, userID, taskID string) ([]domain.Attachment, error) {
	if _, err := s.taskRepo.GetOwned(ctx, taskID, userID); err != nil {
		return nil, s.notFoundOr(err, "task")
	}

	attachments, err := s.attachmentRepo.ListByTaskID(ctx, taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return attachments, nil
}

// DeleteAttachment soft-deletes an attachment the user owns.
func (s *BoardService) DeleteAttachment(ctx context.Context, userID, attachmentID string) error {
	if err := s.attachmentRepo.SoftDelete(ctx, attachmentID, userID); err != nil {
		return s.notFoundOr(err, "attachment")
	}
	return nil
}

// notFoundOr maps repository not-found errors onto a typed 404 and wraps
// everything else as an infrastructure failure.
func (s *BoardService) notFoundOr(err error, resource string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NotFound(resource)
	}
	return fmt.Errorf("%s operation: %w", resource, err)
}
