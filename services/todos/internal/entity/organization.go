package entity

import "time"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// CanManage reports whether the role may manage members and other users' todos.
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Member struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`

	// Populated on listing.
	User *User `json:"user,omitempty"`
}

// Membership is an organization seen from one member.
type Membership struct {
	Organization
	Role Role `json:"role"`
}
