package http

import (
	"context"
	"io"

	"todos/pkg/eventbus"
	"todos/pkg/logger"
	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func testLogger() *logger.Logger {
	return logger.NewWithOptions(io.Discard, "error", false)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// withSession stands in for AuthMiddleware.
func withSession(s entity.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", s.UserID)
		c.Set("org_id", s.OrganizationID)
		c.Set("user_role", string(s.Role))
		c.Set("session_id", s.ID)
		c.Next()
	}
}

type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Register(ctx context.Context, email, name, password string) (*entity.AuthResult, error) {
	args := m.Called(ctx, email, name, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuthResult), args.Error(1)
}

func (m *MockAuthUseCase) Login(ctx context.Context, email, password string) (*entity.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuthResult), args.Error(1)
}

func (m *MockAuthUseCase) Logout(ctx context.Context, s entity.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

var _ usecase.AuthUseCase = (*MockAuthUseCase)(nil)

type MockOrganizationUseCase struct {
	mock.Mock
}

func (m *MockOrganizationUseCase) ListOrganizations(ctx context.Context, s entity.Session) ([]*entity.Membership, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Membership), args.Error(1)
}

func (m *MockOrganizationUseCase) CreateOrganization(ctx context.Context, s entity.Session, name string) (*entity.Membership, error) {
	args := m.Called(ctx, s, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Membership), args.Error(1)
}

func (m *MockOrganizationUseCase) SwitchOrganization(ctx context.Context, s entity.Session, orgID string) (*entity.AuthResult, error) {
	args := m.Called(ctx, s, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuthResult), args.Error(1)
}

func (m *MockOrganizationUseCase) ListMembers(ctx context.Context, s entity.Session) ([]*entity.Member, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Member), args.Error(1)
}

func (m *MockOrganizationUseCase) AddMember(ctx context.Context, s entity.Session, email string, role entity.Role) (*entity.Member, error) {
	args := m.Called(ctx, s, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Member), args.Error(1)
}

func (m *MockOrganizationUseCase) RemoveMember(ctx context.Context, s entity.Session, userID string) error {
	args := m.Called(ctx, s, userID)
	return args.Error(0)
}

var _ usecase.OrganizationUseCase = (*MockOrganizationUseCase)(nil)

type MockProfileUseCase struct {
	mock.Mock
}

func (m *MockProfileUseCase) Me(ctx context.Context, userID string) (*entity.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockProfileUseCase) UpdateProfile(ctx context.Context, userID, name string) (*entity.User, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockProfileUseCase) UploadAvatar(ctx context.Context, userID string, upload usecase.AvatarUpload) (*entity.User, error) {
	args := m.Called(ctx, userID, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

var _ usecase.ProfileUseCase = (*MockProfileUseCase)(nil)

type MockTodoUseCase struct {
	mock.Mock
}

func (m *MockTodoUseCase) Create(ctx context.Context, s entity.Session, title, description string) (*entity.Todo, error) {
	args := m.Called(ctx, s, title, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Todo), args.Error(1)
}

func (m *MockTodoUseCase) Get(ctx context.Context, s entity.Session, id string) (*entity.Todo, error) {
	args := m.Called(ctx, s, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Todo), args.Error(1)
}

func (m *MockTodoUseCase) List(ctx context.Context, s entity.Session, filter entity.TodoFilter, limit, offset int) ([]*entity.Todo, error) {
	args := m.Called(ctx, s, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Todo), args.Error(1)
}

func (m *MockTodoUseCase) Update(ctx context.Context, s entity.Session, id string, update usecase.TodoUpdate) (*entity.Todo, error) {
	args := m.Called(ctx, s, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Todo), args.Error(1)
}

func (m *MockTodoUseCase) Delete(ctx context.Context, s entity.Session, id string) error {
	args := m.Called(ctx, s, id)
	return args.Error(0)
}

func (m *MockTodoUseCase) Toggle(ctx context.Context, s entity.Session, id string) (*entity.Todo, error) {
	args := m.Called(ctx, s, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Todo), args.Error(1)
}

var _ usecase.TodoUseCase = (*MockTodoUseCase)(nil)

type MockNotificationUseCase struct {
	mock.Mock
}

func (m *MockNotificationUseCase) Notify(ctx context.Context, ev eventbus.Event) eventbus.Event {
	m.Called(ctx, ev)
	return ev
}

func (m *MockNotificationUseCase) Subscribe(ctx context.Context, input entity.SubscribeInput) (<-chan entity.Tracked, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan entity.Tracked), args.Error(1)
}

func (m *MockNotificationUseCase) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, int64, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entity.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationUseCase) MarkRead(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockNotificationUseCase) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

var _ usecase.NotificationUseCase = (*MockNotificationUseCase)(nil)
