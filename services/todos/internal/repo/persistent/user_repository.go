package persistent

import (
	"context"

	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	// CreateWithOrganization stores a new user together with an organization
	// the user owns.
	CreateWithOrganization(ctx context.Context, user *entity.User, org *entity.Organization) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateWithOrganization(ctx context.Context, user *entity.User, org *entity.Organization) error {
	userModel := ToUserModel(user)
	orgModel := ToOrganizationModel(org)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(userModel).Error; err != nil {
			return err
		}
		if err := tx.Create(orgModel).Error; err != nil {
			return err
		}
		member := &model.MemberModel{
			OrganizationID: orgModel.ID,
			UserID:         userModel.ID,
			Role:           string(entity.RoleOwner),
		}
		if err := tx.Create(member).Error; err != nil {
			return err
		}

		*user = *ToUserEntity(userModel)
		*org = *ToOrganizationEntity(orgModel)
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var userModel model.UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&userModel).Error; err != nil {
		return nil, err
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userModel model.UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&userModel).Error; err != nil {
		return nil, err
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":       user.Name,
			"avatar_url": user.AvatarURL,
		}).Error
}
