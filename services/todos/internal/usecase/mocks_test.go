package usecase

import (
	"context"
	"io"
	"time"

	"todos/pkg/eventbus"
	"todos/pkg/logger"
	"todos/services/todos/internal/entity"

	"github.com/stretchr/testify/mock"
)

func testLogger() *logger.Logger {
	return logger.NewWithOptions(io.Discard, "error", false)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateWithOrganization(ctx context.Context, user *entity.User, org *entity.Organization) error {
	args := m.Called(ctx, user, org)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) CreateWithOwner(ctx context.Context, org *entity.Organization, ownerID string) error {
	args := m.Called(ctx, org, ownerID)
	return args.Error(0)
}

func (m *MockOrganizationRepository) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) ListForUser(ctx context.Context, userID string) ([]*entity.Membership, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Membership), args.Error(1)
}

func (m *MockOrganizationRepository) GetMember(ctx context.Context, orgID, userID string) (*entity.Member, error) {
	args := m.Called(ctx, orgID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Member), args.Error(1)
}

func (m *MockOrganizationRepository) ListMembers(ctx context.Context, orgID string) ([]*entity.Member, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Member), args.Error(1)
}

func (m *MockOrganizationRepository) AddMember(ctx context.Context, member *entity.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockOrganizationRepository) RemoveMember(ctx context.Context, orgID, userID string) error {
	args := m.Called(ctx, orgID, userID)
	return args.Error(0)
}

type MockTodoRepository struct {
	mock.Mock
}

func (m *MockTodoRepository) Create(ctx context.Context, todo *entity.Todo) error {
	args := m.Called(ctx, todo)
	return args.Error(0)
}

func (m *MockTodoRepository) GetByID(ctx context.Context, orgID, id string) (*entity.Todo, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Todo), args.Error(1)
}

func (m *MockTodoRepository) List(ctx context.Context, orgID string, filter entity.TodoFilter, limit, offset int) ([]*entity.Todo, error) {
	args := m.Called(ctx, orgID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Todo), args.Error(1)
}

func (m *MockTodoRepository) Update(ctx context.Context, todo *entity.Todo) error {
	args := m.Called(ctx, todo)
	return args.Error(0)
}

func (m *MockTodoRepository) Toggle(ctx context.Context, orgID, id string) (*entity.Todo, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Todo), args.Error(1)
}

func (m *MockTodoRepository) Delete(ctx context.Context, orgID, id string) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, ev eventbus.Event) eventbus.Event {
	m.Called(ctx, ev)
	return ev
}

type MockRelay struct {
	mock.Mock
}

func (m *MockRelay) Publish(ctx context.Context, ev eventbus.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type MockSessionRevoker struct {
	mock.Mock
}

func (m *MockSessionRevoker) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, ttl)
	return args.Error(0)
}

type MockAvatarStorage struct {
	mock.Mock
}

func (m *MockAvatarStorage) Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}
