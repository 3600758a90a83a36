package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TodoModel struct {
	ID             string         `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID string         `gorm:"type:uuid;not null;index" json:"organization_id"`
	UserID         string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Title          string         `gorm:"type:varchar(255);not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Completed      bool           `gorm:"default:false" json:"completed"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (TodoModel) TableName() string {
	return "todos"
}

func (t *TodoModel) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
