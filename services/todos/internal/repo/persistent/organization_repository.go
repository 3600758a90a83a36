package persistent

import (
	"context"

	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/model"

	"gorm.io/gorm"
)

type OrganizationRepository interface {
	CreateWithOwner(ctx context.Context, org *entity.Organization, ownerID string) error
	GetByID(ctx context.Context, id string) (*entity.Organization, error)
	// ListForUser returns the user's memberships, oldest first.
	ListForUser(ctx context.Context, userID string) ([]*entity.Membership, error)
	GetMember(ctx context.Context, orgID, userID string) (*entity.Member, error)
	ListMembers(ctx context.Context, orgID string) ([]*entity.Member, error)
	AddMember(ctx context.Context, member *entity.Member) error
	RemoveMember(ctx context.Context, orgID, userID string) error
}

type organizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) CreateWithOwner(ctx context.Context, org *entity.Organization, ownerID string) error {
	orgModel := ToOrganizationModel(org)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(orgModel).Error; err != nil {
			return err
		}
		member := &model.MemberModel{
			OrganizationID: orgModel.ID,
			UserID:         ownerID,
			Role:           string(entity.RoleOwner),
		}
		if err := tx.Create(member).Error; err != nil {
			return err
		}

		*org = *ToOrganizationEntity(orgModel)
		return nil
	})
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	var orgModel model.OrganizationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&orgModel).Error; err != nil {
		return nil, err
	}
	return ToOrganizationEntity(&orgModel), nil
}

func (r *organizationRepository) ListForUser(ctx context.Context, userID string) ([]*entity.Membership, error) {
	var memberModels []model.MemberModel
	if err := r.db.WithContext(ctx).
		Preload("Organization").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&memberModels).Error; err != nil {
		return nil, err
	}

	memberships := make([]*entity.Membership, 0, len(memberModels))
	for i := range memberModels {
		org := ToOrganizationEntity(memberModels[i].Organization)
		if org == nil {
			// organization was soft-deleted
			continue
		}
		memberships = append(memberships, &entity.Membership{
			Organization: *org,
			Role:         entity.Role(memberModels[i].Role),
		})
	}
	return memberships, nil
}

func (r *organizationRepository) GetMember(ctx context.Context, orgID, userID string) (*entity.Member, error) {
	var memberModel model.MemberModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		First(&memberModel).Error; err != nil {
		return nil, err
	}
	return ToMemberEntity(&memberModel), nil
}

func (r *organizationRepository) ListMembers(ctx context.Context, orgID string) ([]*entity.Member, error) {
	var memberModels []model.MemberModel
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("organization_id = ?", orgID).
		Order("created_at ASC").
		Find(&memberModels).Error; err != nil {
		return nil, err
	}

	members := make([]*entity.Member, len(memberModels))
	for i := range memberModels {
		members[i] = ToMemberEntity(&memberModels[i])
	}
	return members, nil
}

func (r *organizationRepository) AddMember(ctx context.Context, member *entity.Member) error {
	memberModel := ToMemberModel(member)
	if err := r.db.WithContext(ctx).Create(memberModel).Error; err != nil {
		return err
	}
	*member = *ToMemberEntity(memberModel)
	return nil
}

func (r *organizationRepository) RemoveMember(ctx context.Context, orgID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Delete(&model.MemberModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
