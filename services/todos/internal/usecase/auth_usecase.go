package usecase

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"todos/pkg/jwt"
	"todos/pkg/logger"
	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/repo/persistent"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// SessionRevoker remembers logged-out sessions until their tokens expire.
type SessionRevoker interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
}

type AuthUseCase interface {
	Register(ctx context.Context, email, name, password string) (*entity.AuthResult, error)
	Login(ctx context.Context, email, password string) (*entity.AuthResult, error)
	Logout(ctx context.Context, s entity.Session) error
}

type authUseCase struct {
	userRepo   persistent.UserRepository
	orgRepo    persistent.OrganizationRepository
	jwtService *jwt.Service
	sessions   SessionRevoker
	logger     *logger.Logger
	now        func() time.Time
}

func NewAuthUseCase(
	userRepo persistent.UserRepository,
	orgRepo persistent.OrganizationRepository,
	jwtService *jwt.Service,
	sessions SessionRevoker,
	logger *logger.Logger,
) AuthUseCase {
	return &authUseCase{
		userRepo:   userRepo,
		orgRepo:    orgRepo,
		jwtService: jwtService,
		sessions:   sessions,
		logger:     logger,
		now:        time.Now,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", validationError("invalid email address")
	}
	return email, nil
}

func (uc *authUseCase) Register(ctx context.Context, email, name, password string) (*entity.AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if len(password) < minPasswordLength {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}

	_, err = uc.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("user with this email %w", ErrConflict)
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return nil, fmt.Errorf("failed to process registration: %w", err)
	}

	user := &entity.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashedPassword),
	}
	workspace := name + "'s Workspace"
	org := &entity.Organization{
		Name: workspace,
		Slug: slugify(workspace),
	}

	if err := uc.userRepo.CreateWithOrganization(ctx, user, org); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("user with this email %w", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uc.logger.Info("User %s registered with organization %s", user.ID, org.ID)
	return issueToken(uc.jwtService, user, org, entity.RoleOwner)
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*entity.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	memberships, err := uc.orgRepo.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	if len(memberships) == 0 {
		return issueToken(uc.jwtService, user, nil, "")
	}

	first := memberships[0]
	return issueToken(uc.jwtService, user, &first.Organization, first.Role)
}

func (uc *authUseCase) Logout(ctx context.Context, s entity.Session) error {
	if s.ID == "" {
		return nil
	}
	if err := uc.sessions.Revoke(ctx, s.ID, s.ExpiresAt.Sub(uc.now())); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// issueToken signs a session for user acting in org. org may be nil for a
// user without any membership.
func issueToken(jwtService *jwt.Service, user *entity.User, org *entity.Organization, role entity.Role) (*entity.AuthResult, error) {
	orgID := ""
	if org != nil {
		orgID = org.ID
	}

	token, err := jwtService.GenerateToken(user.ID, orgID, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user.PasswordHash = ""
	return &entity.AuthResult{
		Token:        token,
		User:         user,
		Organization: org,
		Role:         role,
	}, nil
}
