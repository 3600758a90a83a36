package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"todos/pkg/logger"
	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/repo/persistent"

	"github.com/google/uuid"
)

const MaxAvatarSize = 5 << 20

var avatarContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// AvatarStorage stores uploaded files and returns their public URL.
type AvatarStorage interface {
	Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error)
}

type AvatarUpload struct {
	Filename    string
	Size        int64
	ContentType string
	Body        io.ReadSeeker
}

type ProfileUseCase interface {
	Me(ctx context.Context, userID string) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID, name string) (*entity.User, error)
	UploadAvatar(ctx context.Context, userID string, upload AvatarUpload) (*entity.User, error)
}

type profileUseCase struct {
	userRepo persistent.UserRepository
	storage  AvatarStorage
	logger   *logger.Logger
}

func NewProfileUseCase(userRepo persistent.UserRepository, storage AvatarStorage, logger *logger.Logger) ProfileUseCase {
	return &profileUseCase{
		userRepo: userRepo,
		storage:  storage,
		logger:   logger,
	}
}

func (uc *profileUseCase) Me(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (uc *profileUseCase) UpdateProfile(ctx context.Context, userID, name string) (*entity.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if utf8.RuneCountInString(name) > 255 {
		return nil, validationError("name must be at most 255 characters")
	}

	user, err := uc.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (uc *profileUseCase) UploadAvatar(ctx context.Context, userID string, upload AvatarUpload) (*entity.User, error) {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	defaultType, ok := avatarContentTypes[ext]
	if !ok {
		return nil, validationError("avatar must be a jpg, jpeg, png, gif or webp image")
	}
	if upload.Size > MaxAvatarSize {
		return nil, validationError("avatar must be at most 5 MiB")
	}

	contentType := upload.ContentType
	if !strings.HasPrefix(contentType, "image/") {
		contentType = defaultType
	}

	user, err := uc.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), ext)
	url, err := uc.storage.Upload(ctx, key, upload.Body, contentType)
	if err != nil {
		uc.logger.Error("Failed to upload avatar for %s: %v", userID, err)
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	user.AvatarURL = url
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}
