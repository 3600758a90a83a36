package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrganizationModel struct {
	ID        string         `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (OrganizationModel) TableName() string {
	return "organizations"
}

func (o *OrganizationModel) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

type MemberModel struct {
	ID             string    `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID string    `gorm:"type:uuid;not null;uniqueIndex:idx_members_org_user" json:"organization_id"`
	UserID         string    `gorm:"type:uuid;not null;uniqueIndex:idx_members_org_user;index" json:"user_id"`
	Role           string    `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	CreatedAt      time.Time `json:"created_at"`

	User         *UserModel         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Organization *OrganizationModel `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (MemberModel) TableName() string {
	return "members"
}

func (m *MemberModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
