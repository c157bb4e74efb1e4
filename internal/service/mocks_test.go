package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sri-narendra/Tasks/internal/domain"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) CreateWithDefaults(ctx context.Context, user *domain.User, board *domain.Board, list *domain.List) error {
	args := m.Called(ctx, user, board, list)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// --- Mock Refresh Token Repository ---

type mockRefreshTokenRepository struct {
	mock.Mock
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepository) RevokeIfActive(ctx context.Context, tokenHash, revokedByIP, replacedByHash string) (bool, error) {
	args := m.Called(ctx, tokenHash, revokedByIP, replacedByHash)
	return args.Bool(0), args.Error(1)
}

func (m *mockRefreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID, revokedByIP, replacedByMarker string) (int64, error) {
	args := m.Called(ctx, userID, revokedByIP, replacedByMarker)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock Login Throttle ---

type mockLoginThrottle struct {
	mock.Mock
}

func (m *mockLoginThrottle) Check(ctx context.Context, email, ip string) error {
	args := m.Called(ctx, email, ip)
	return args.Error(0)
}

func (m *mockLoginThrottle) RecordFailure(ctx context.Context, email, ip string) error {
	args := m.Called(ctx, email, ip)
	return args.Error(0)
}

func (m *mockLoginThrottle) Reset(ctx context.Context, email, ip string) error {
	args := m.Called(ctx, email, ip)
	return args.Error(0)
}

// --- Mock Event Publisher ---

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockEventPublisher) PublishSessionReuseDetected(ctx context.Context, userID, ip string, revokedTokens int64) error {
	args := m.Called(ctx, userID, ip, revokedTokens)
	return args.Error(0)
}

// --- Mock Board Repository ---

type mockBoardRepository struct {
	mock.Mock
}

func (m *mockBoardRepository) Create(ctx context.Context, board *domain.Board) error {
	args := m.Called(ctx, board)
	return args.Error(0)
}

func (m *mockBoardRepository) GetOwned(ctx context.Context, id, userID string) (*domain.Board, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Board), args.Error(1)
}

func (m *mockBoardRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Board, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Board), args.Error(1)
}

func (m *mockBoardRepository) Update(ctx context.Context, board *domain.Board) error {
	args := m.Called(ctx, board)
	return args.Error(0)
}

func (m *mockBoardRepository) SoftDelete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// --- Mock List Repository ---

type mockListRepository struct {
	mock.Mock
}

func (m *mockListRepository) Create(ctx context.Context, list *domain.List) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *mockListRepository) GetOwned(ctx context.Context, id, userID string) (*domain.List, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.List), args.Error(1)
}

func (m *mockListRepository) ListByBoardID(ctx context.Context, boardID, userID string) ([]domain.List, error) {
	args := m.Called(ctx, boardID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.List), args.Error(1)
}

func (m *mockListRepository) Update(ctx context.Context, list *domain.List) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *mockListRepository) SoftDelete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// --- Mock Task Repository ---

type mockTaskRepository struct {
	mock.Mock
}

func (m *mockTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *mockTaskRepository) GetOwned(ctx context.Context, id, userID string) (*domain.Task, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *mockTaskRepository) ListByListID(ctx context.Context, listID, userID string) ([]domain.Task, error) {
	args := m.Called(ctx, listID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *mockTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *mockTaskRepository) SoftDelete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// --- Mock Attachment Repository ---

type mockAttachmentRepository struct {
	mock.Mock
}

func (m *mockAttachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *mockAttachmentRepository) GetOwned(ctx context.Context, id, userID string) (*domain.Attachment, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attachment), args.Error(1)
}

func (m *mockAttachmentRepository) ListByTaskID(ctx context.Context, taskID, userID string) ([]domain.Attachment, error) {
	args := m.Called(ctx, taskID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Attachment), args.Error(1)
}

func (m *mockAttachmentRepository) SoftDelete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
