package entity

import "time"

// Session is the authenticated caller of a request.
type Session struct {
	ID             string
	UserID         string
	OrganizationID string
	Role           Role
	ExpiresAt      time.Time
}

type AuthResult struct {
	Token        string        `json:"token"`
	User         *User         `json:"user"`
	Organization *Organization `json:"organization"`
	Role         Role          `json:"role"`
}
