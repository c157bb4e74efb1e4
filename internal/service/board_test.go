package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sri-narendra/Tasks/internal/domain"
	apperrors "github.com/sri-narendra/Tasks/pkg/errors"
)

type boardFixture struct {
	svc            *BoardService
	boardRepo      *mockBoardRepository
	listRepo       *mockListRepository
	taskRepo       *mockTaskRepository
	attachmentRepo *mockAttachmentRepository
}

func newBoardFixture(t *testing.T) *boardFixture {
	t.Helper()

	f := &boardFixture{
		boardRepo:      new(mockBoardRepository),
		listRepo:       new(mockListRepository),
		taskRepo:       new(mockTaskRepository),
		attachmentRepo: new(mockAttachmentRepository),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewBoardService(f.boardRepo, f.listRepo, f.taskRepo, f.attachmentRepo, logger)
	return f
}

func ownedBoard(userID string) *domain.Board {
	now := time.Now().UTC()
	return &domain.Board{
		ID:         "b-1",
		UserID:     userID,
		Title:      "Main Board",
		Background: "#1a73e8",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func ownedList(userID string) *domain.List {
	now := time.Now().UTC()
	return &domain.List{
		ID:        "l-1",
		BoardID:   "b-1",
		UserID:    userID,
		Title:     "To Do",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func ownedTask(userID string) *domain.Task {
	now := time.Now().UTC()
	return &domain.Task{
		ID:        "t-1",
		ListID:    "l-1",
		UserID:    userID,
		Title:     "Write report",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateBoard_DefaultsBackground(t *testing.T) {
	f := newBoardFixture(t)

	f.boardRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Board) bool {
		return b.Background == "#1a73e8" && b.UserID == "u-1"
	})).Return(nil)

	board, err := f.svc.CreateBoard(context.Background(), "u-1", CreateBoardInput{Title: "Side project"})
	require.NoError(t, err)
	assert.Equal(t, "Side project", board.Title)
	f.boardRepo.AssertExpectations(t)
}

func TestCreateBoard_EmptyTitle_Rejected(t *testing.T) {
	f := newBoardFixture(t)

	_, err := f.svc.CreateBoard(context.Background(), "u-1", CreateBoardInput{})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
	f.boardRepo.AssertNotCalled(t, "Create")
}

func TestGetBoard_NotOwned_Returns404(t *testing.T) {
	f := newBoardFixture(t)

	f.boardRepo.On("GetOwned", mock.Anything, "b-1", "intruder").Return(nil, apperrors.ErrNotFound)

	_, err := f.svc.GetBoard(context.Background(), "intruder", "b-1")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
}

func TestUpdateBoard_PartialUpdate(t *testing.T) {
	f := newBoardFixture(t)
	board := ownedBoard("u-1")

	f.boardRepo.On("GetOwned", mock.Anything, "b-1", "u-1").Return(board, nil)
	f.boardRepo.On("Update", mock.Anything, mock.MatchedBy(func(b *domain.Board) bool {
		return b.Title == "Renamed" && b.Background == "#1a73e8"
	})).Return(nil)

	title := "Renamed"
	got, err := f.svc.UpdateBoard(context.Background(), "u-1", "b-1", UpdateBoardInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
}

func TestCreateList_ForeignBoard_Returns404(t *testing.T) {
	f := newBoardFixture(t)

	f.boardRepo.On("GetOwned", mock.Anything, "b-other", "u-1").Return(nil, apperrors.ErrNotFound)

	_, err := f.svc.CreateList(context.Background(), "u-1", CreateListInput{
		BoardID: "b-other",
		Title:   "Sneaky",
	})

	require.Error(t, err)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
	f.listRepo.AssertNotCalled(t, "Create")
}

func TestCreateList_OwnedBoard_Succeeds(t *testing.T) {
	f := newBoardFixture(t)

	f.boardRepo.On("GetOwned", mock.Anything, "b-1", "u-1").Return(ownedBoard("u-1"), nil)
	f.listRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.List) bool {
		return l.BoardID == "b-1" && l.UserID == "u-1"
	})).Return(nil)

	list, err := f.svc.CreateList(context.Background(), "u-1", CreateListInput{
		BoardID: "b-1",
		Title:   "Doing",
	})
	require.NoError(t, err)
	assert.Equal(t, "Doing", list.Title)
}

func TestCreateTask_ForeignList_Returns404(t *testing.T) {
	f := newBoardFixture(t)

	f.listRepo.On("GetOwned", mock.Anything, "l-other", "u-1").Return(nil, apperrors.ErrNotFound)

	_, err := f.svc.CreateTask(context.Background(), "u-1", CreateTaskInput{
		ListID: "l-other",
		Title:  "Sneaky",
	})

	require.Error(t, err)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
	f.taskRepo.AssertNotCalled(t, "Create")
}

func TestUpdateTask_MoveToForeignList_Returns404(t *testing.T) {
	f := newBoardFixture(t)
	task := ownedTask("u-1")

	f.taskRepo.On("GetOwned", mock.Anything, "t-1", "u-1").Return(task, nil)
	f.listRepo.On("GetOwned", mock.Anything, "l-other", "u-1").Return(nil, apperrors.ErrNotFound)

	dest := "l-other"
	_, err := f.svc.UpdateTask(context.Background(), "u-1", "t-1", UpdateTaskInput{ListID: &dest})

	require.Error(t, err)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
	f.taskRepo.AssertNotCalled(t, "Update")
}

func TestUpdateTask_MoveToOwnedList_Succeeds(t *testing.T) {
	f := newBoardFixture(t)
	task := ownedTask("u-1")
	dest := ownedList("u-1")
	dest.ID = "l-2"

	f.taskRepo.On("GetOwned", mock.Anything, "t-1", "u-1").Return(task, nil)
	f.listRepo.On("GetOwned", mock.Anything, "l-2", "u-1").Return(dest, nil)
	f.taskRepo.On("Update", mock.Anything, mock.MatchedBy(func(tk *domain.Task) bool {
		return tk.ListID == "l-2"
	})).Return(nil)

	destID := "l-2"
	got, err := f.svc.UpdateTask(context.Background(), "u-1", "t-1", UpdateTaskInput{ListID: &destID})
	require.NoError(t, err)
	assert.Equal(t, "l-2", got.ListID)
}

func TestUpdateTask_CompleteStampsCompletedAt(t *testing.T) {
	f := newBoardFixture(t)
	task := ownedTask("u-1")

	f.taskRepo.On("GetOwned", mock.Anything, "t-1", "u-1").Return(task, nil)
	f.taskRepo.On("Update", mock.Anything, mock.MatchedBy(func(tk *domain.Task) bool {
		return tk.Completed && tk.CompletedAt != nil
	})).Return(nil)

	done := true
	got, err := f.svc.UpdateTask(context.Background(), "u-1", "t-1", UpdateTaskInput{Completed: &done})
	require.NoError(t, err)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)
}

func TestUpdateTask_ReopenClearsCompletedAt(t *testing.T) {
	f := newBoardFixture(t)
	task := ownedTask("u-1")
	doneAt := time.Now().UTC()
	task.Completed = true
	task.CompletedAt = &doneAt

	f.taskRepo.On("GetOwned", mock.Anything, "t-1", "u-1").Return(task, nil)
	f.taskRepo.On("Update", mock.Anything, mock.MatchedBy(func(tk *domain.Task) bool {
		return !tk.Completed && tk.CompletedAt == nil
	})).Return(nil)

	reopen := false
	got, err := f.svc.UpdateTask(context.Background(), "u-1", "t-1", UpdateTaskInput{Completed: &reopen})
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)
}

func TestCreateAttachment_ForeignTask_Returns404(t *testing.T) {
	f := newBoardFixture(t)

	f.taskRepo.On("GetOwned", mock.Anything, "t-other", "u-1").Return(nil, apperrors.ErrNotFound)

	_, err := f.svc.CreateAttachment(context.Background(), "u-1", CreateAttachmentInput{
		TaskID:   "t-other",
		FileName: "spec.pdf",
		FileURL:  "https://files.example.com/spec.pdf",
	})

	require.Error(t, err)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
	f.attachmentRepo.AssertNotCalled(t, "Create")
}

func TestDeleteBoard_Owned_Succeeds(t *testing.T) {
	f := newBoardFixture(t)

	f.boardRepo.On("SoftDelete", mock.Anything, "b-1", "u-1").Return(nil)

	err := f.svc.DeleteBoard(context.Background(), "u-1", "b-1")
	assert.NoError(t, err)
	f.boardRepo.AssertExpectations(t)
}

func TestDeleteBoard_AlreadyDeleted_Returns404(t *testing.T) {
	f := newBoardFixture(t)

	f.boardRepo.On("SoftDelete", mock.Anything, "b-1", "u-1").Return(apperrors.ErrNotFound)

	err := f.svc.DeleteBoard(context.Background(), "u-1", "b-1")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
}
