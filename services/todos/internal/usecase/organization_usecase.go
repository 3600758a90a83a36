package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"todos/pkg/jwt"
	"todos/pkg/logger"
	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/repo/persistent"

	"github.com/google/uuid"
)

const maxOrganizationNameLength = 255

type OrganizationUseCase interface {
	ListOrganizations(ctx context.Context, s entity.Session) ([]*entity.Membership, error)
	CreateOrganization(ctx context.Context, s entity.Session, name string) (*entity.Membership, error)
	SwitchOrganization(ctx context.Context, s entity.Session, orgID string) (*entity.AuthResult, error)
	ListMembers(ctx context.Context, s entity.Session) ([]*entity.Member, error)
	AddMember(ctx context.Context, s entity.Session, email string, role entity.Role) (*entity.Member, error)
	RemoveMember(ctx context.Context, s entity.Session, userID string) error
}

type organizationUseCase struct {
	orgRepo    persistent.OrganizationRepository
	userRepo   persistent.UserRepository
	jwtService *jwt.Service
	logger     *logger.Logger
}

func NewOrganizationUseCase(
	orgRepo persistent.OrganizationRepository,
	userRepo persistent.UserRepository,
	jwtService *jwt.Service,
	logger *logger.Logger,
) OrganizationUseCase {
	return &organizationUseCase{
		orgRepo:    orgRepo,
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

func (uc *organizationUseCase) ListOrganizations(ctx context.Context, s entity.Session) ([]*entity.Membership, error) {
	memberships, err := uc.orgRepo.ListForUser(ctx, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return memberships, nil
}

func (uc *organizationUseCase) CreateOrganization(ctx context.Context, s entity.Session, name string) (*entity.Membership, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if utf8.RuneCountInString(name) > maxOrganizationNameLength {
		return nil, validationError("name must be at most %d characters", maxOrganizationNameLength)
	}

	org := &entity.Organization{Name: name, Slug: slugify(name)}
	if err := uc.orgRepo.CreateWithOwner(ctx, org, s.UserID); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	uc.logger.Info("Organization %s created by %s", org.ID, s.UserID)
	return &entity.Membership{Organization: *org, Role: entity.RoleOwner}, nil
}

func (uc *organizationUseCase) SwitchOrganization(ctx context.Context, s entity.Session, orgID string) (*entity.AuthResult, error) {
	if _, err := uuid.Parse(orgID); err != nil {
		return nil, fmt.Errorf("%w: not a member of this organization", ErrForbidden)
	}

	m, err := uc.orgRepo.GetMember(ctx, orgID, s.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: not a member of this organization", ErrForbidden)
		}
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	org, err := uc.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("organization %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	user, err := uc.userRepo.GetByID(ctx, s.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return issueToken(uc.jwtService, user, org, m.Role)
}

// current returns the caller's membership in the active organization.
func (uc *organizationUseCase) current(ctx context.Context, s entity.Session) (*entity.Member, error) {
	if err := requireOrganization(s); err != nil {
		return nil, err
	}
	m, err := uc.orgRepo.GetMember(ctx, s.OrganizationID, s.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: not a member of this organization", ErrForbidden)
		}
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	return m, nil
}

func (uc *organizationUseCase) manager(ctx context.Context, s entity.Session) (*entity.Member, error) {
	m, err := uc.current(ctx, s)
	if err != nil {
		return nil, err
	}
	if !m.Role.CanManage() {
		return nil, fmt.Errorf("%w: owner or admin role required", ErrForbidden)
	}
	return m, nil
}

func (uc *organizationUseCase) ListMembers(ctx context.Context, s entity.Session) ([]*entity.Member, error) {
	if _, err := uc.current(ctx, s); err != nil {
		return nil, err
	}

	members, err := uc.orgRepo.ListMembers(ctx, s.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	for _, m := range members {
		if m.User != nil {
			m.User.PasswordHash = ""
		}
	}
	return members, nil
}

func (uc *organizationUseCase) AddMember(ctx context.Context, s entity.Session, email string, role entity.Role) (*entity.Member, error) {
	if _, err := uc.manager(ctx, s); err != nil {
		return nil, err
	}
	if role == "" {
		role = entity.RoleMember
	}
	if role != entity.RoleAdmin && role != entity.RoleMember {
		return nil, validationError("role must be admin or member")
	}

	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if _, err := uc.orgRepo.GetMember(ctx, s.OrganizationID, user.ID); err == nil {
		return nil, fmt.Errorf("member %w", ErrConflict)
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	member := &entity.Member{
		OrganizationID: s.OrganizationID,
		UserID:         user.ID,
		Role:           role,
	}
	if err := uc.orgRepo.AddMember(ctx, member); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("member %w", ErrConflict)
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	user.PasswordHash = ""
	member.User = user
	uc.logger.Info("User %s added to organization %s as %s by %s", user.ID, s.OrganizationID, role, s.UserID)
	return member, nil
}

func (uc *organizationUseCase) RemoveMember(ctx context.Context, s entity.Session, userID string) error {
	if _, err := uc.manager(ctx, s); err != nil {
		return err
	}
	if _, err := uuid.Parse(userID); err != nil {
		return fmt.Errorf("member %w", ErrNotFound)
	}

	target, err := uc.orgRepo.GetMember(ctx, s.OrganizationID, userID)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("member %w", ErrNotFound)
		}
		return fmt.Errorf("failed to load membership: %w", err)
	}
	if target.Role == entity.RoleOwner {
		return fmt.Errorf("%w: the owner cannot be removed", ErrForbidden)
	}

	if err := uc.orgRepo.RemoveMember(ctx, s.OrganizationID, userID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("member %w", ErrNotFound)
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}

	uc.logger.Info("User %s removed from organization %s by %s", userID, s.OrganizationID, s.UserID)
	return nil
}
