package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONMap is a jsonb column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb source %T", src)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(raw, m)
}

type NotificationModel struct {
	ID         string     `gorm:"type:uuid;primary_key" json:"id"`
	UserID     string     `gorm:"type:uuid;not null;index:idx_notifications_user_created" json:"user_id"`
	Title      string     `gorm:"type:varchar(255)" json:"title"`
	Body       string     `gorm:"type:text" json:"body"`
	NavigateTo *string    `gorm:"type:varchar(500)" json:"navigate_to"`
	Metadata   JSONMap    `gorm:"type:jsonb" json:"metadata"`
	Severity   *string    `gorm:"type:varchar(20)" json:"severity"`
	Type       *string    `gorm:"type:varchar(100)" json:"type"`
	ReadAt     *time.Time `json:"read_at"`
	CreatedAt  time.Time  `gorm:"index:idx_notifications_user_created" json:"created_at"`
}

func (NotificationModel) TableName() string {
	return "notifications"
}
