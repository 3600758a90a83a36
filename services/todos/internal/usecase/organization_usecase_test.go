package usecase

import (
	"context"
	"testing"
	"time"

	"todos/pkg/jwt"
	"todos/services/todos/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orgFixture struct {
	orgs    *MockOrganizationRepository
	users   *MockUserRepository
	jwt     *jwt.Service
	uc      OrganizationUseCase
	session entity.Session
}

func newOrgFixture(role entity.Role) *orgFixture {
	f := &orgFixture{
		orgs:  new(MockOrganizationRepository),
		users: new(MockUserRepository),
		jwt:   jwt.NewService("test-secret", time.Hour),
		session: entity.Session{
			UserID:         uuid.NewString(),
			OrganizationID: uuid.NewString(),
			Role:           role,
		},
	}
	f.uc = NewOrganizationUseCase(f.orgs, f.users, f.jwt, testLogger())
	f.orgs.On("GetMember", mock.Anything, f.session.OrganizationID, f.session.UserID).
		Return(&entity.Member{UserID: f.session.UserID, Role: role}, nil)
	return f
}

func TestCreateOrganization(t *testing.T) {
	f := newOrgFixture(entity.RoleMember)
	f.orgs.On("CreateWithOwner", mock.Anything, mock.AnythingOfType("*entity.Organization"), f.session.UserID).
		Run(func(args mock.Arguments) { args.Get(1).(*entity.Organization).ID = "org-2" }).
		Return(nil)

	m, err := f.uc.CreateOrganization(context.Background(), f.session, " Acme Inc ")
	require.NoError(t, err)
	assert.Equal(t, "org-2", m.ID)
	assert.Equal(t, "Acme Inc", m.Name)
	assert.Equal(t, entity.RoleOwner, m.Role)
	assert.Contains(t, m.Slug, "acme-inc-")

	_, err = f.uc.CreateOrganization(context.Background(), f.session, "  ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSwitchOrganization(t *testing.T) {
	f := newOrgFixture(entity.RoleOwner)
	target := uuid.NewString()
	f.orgs.On("GetMember", mock.Anything, target, f.session.UserID).Return(&entity.Member{Role: entity.RoleAdmin}, nil)
	f.orgs.On("GetByID", mock.Anything, target).Return(&entity.Organization{ID: target, Name: "Other"}, nil)
	f.users.On("GetByID", mock.Anything, f.session.UserID).Return(&entity.User{ID: f.session.UserID, PasswordHash: "x"}, nil)

	result, err := f.uc.SwitchOrganization(context.Background(), f.session, target)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, result.Role)
	assert.Empty(t, result.User.PasswordHash)

	claims, err := f.jwt.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, target, claims.OrgID)
	assert.Equal(t, "admin", claims.Role)
}

func TestSwitchOrganization_NotMember(t *testing.T) {
	f := newOrgFixture(entity.RoleOwner)
	target := uuid.NewString()
	f.orgs.On("GetMember", mock.Anything, target, f.session.UserID).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.uc.SwitchOrganization(context.Background(), f.session, target)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.uc.SwitchOrganization(context.Background(), f.session, "garbage")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListMembers_HidesPasswordHashes(t *testing.T) {
	f := newOrgFixture(entity.RoleMember)
	f.orgs.On("ListMembers", mock.Anything, f.session.OrganizationID).Return([]*entity.Member{
		{UserID: "a", Role: entity.RoleOwner, User: &entity.User{ID: "a", PasswordHash: "secret"}},
		{UserID: "b", Role: entity.RoleMember},
	}, nil)

	members, err := f.uc.ListMembers(context.Background(), f.session)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Empty(t, members[0].User.PasswordHash)
}

func TestAddMember(t *testing.T) {
	f := newOrgFixture(entity.RoleAdmin)
	newUser := uuid.NewString()
	f.users.On("GetByEmail", mock.Anything, "bob@example.com").Return(&entity.User{ID: newUser, Email: "bob@example.com"}, nil)
	f.orgs.On("GetMember", mock.Anything, f.session.OrganizationID, newUser).Return(nil, gorm.ErrRecordNotFound)
	f.orgs.On("AddMember", mock.Anything, mock.MatchedBy(func(m *entity.Member) bool {
		return m.UserID == newUser && m.Role == entity.RoleMember
	})).Return(nil)

	member, err := f.uc.AddMember(context.Background(), f.session, " Bob@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, newUser, member.UserID)
	assert.Equal(t, "bob@example.com", member.User.Email)
	f.orgs.AssertExpectations(t)
}

func TestAddMember_Rules(t *testing.T) {
	t.Run("members cannot add", func(t *testing.T) {
		f := newOrgFixture(entity.RoleMember)
		_, err := f.uc.AddMember(context.Background(), f.session, "bob@example.com", entity.RoleMember)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("owner role cannot be granted", func(t *testing.T) {
		f := newOrgFixture(entity.RoleOwner)
		_, err := f.uc.AddMember(context.Background(), f.session, "bob@example.com", entity.RoleOwner)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newOrgFixture(entity.RoleOwner)
		f.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)
		_, err := f.uc.AddMember(context.Background(), f.session, "ghost@example.com", entity.RoleAdmin)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("already a member", func(t *testing.T) {
		f := newOrgFixture(entity.RoleOwner)
		existing := uuid.NewString()
		f.users.On("GetByEmail", mock.Anything, "bob@example.com").Return(&entity.User{ID: existing}, nil)
		f.orgs.On("GetMember", mock.Anything, f.session.OrganizationID, existing).Return(&entity.Member{UserID: existing}, nil)
		_, err := f.uc.AddMember(context.Background(), f.session, "bob@example.com", entity.RoleMember)
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestRemoveMember(t *testing.T) {
	f := newOrgFixture(entity.RoleOwner)
	target := uuid.NewString()
	f.orgs.On("GetMember", mock.Anything, f.session.OrganizationID, target).Return(&entity.Member{UserID: target, Role: entity.RoleMember}, nil)
	f.orgs.On("RemoveMember", mock.Anything, f.session.OrganizationID, target).Return(nil)

	require.NoError(t, f.uc.RemoveMember(context.Background(), f.session, target))
	f.orgs.AssertExpectations(t)
}

func TestRemoveMember_OwnerProtected(t *testing.T) {
	f := newOrgFixture(entity.RoleAdmin)
	owner := uuid.NewString()
	f.orgs.On("GetMember", mock.Anything, f.session.OrganizationID, owner).Return(&entity.Member{UserID: owner, Role: entity.RoleOwner}, nil)

	err := f.uc.RemoveMember(context.Background(), f.session, owner)
	assert.ErrorIs(t, err, ErrForbidden)
	f.orgs.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}
