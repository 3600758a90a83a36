package persistent

import (
	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/model"
)

func ToUserEntity(m *model.UserModel) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		AvatarURL:    m.AvatarURL,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func ToUserModel(e *entity.User) *model.UserModel {
	if e == nil {
		return nil
	}

	return &model.UserModel{
		ID:           e.ID,
		Email:        e.Email,
		Name:         e.Name,
		PasswordHash: e.PasswordHash,
		AvatarURL:    e.AvatarURL,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func ToOrganizationEntity(m *model.OrganizationModel) *entity.Organization {
	if m == nil {
		return nil
	}

	return &entity.Organization{
		ID:        m.ID,
		Name:      m.Name,
		Slug:      m.Slug,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToOrganizationModel(e *entity.Organization) *model.OrganizationModel {
	if e == nil {
		return nil
	}

	return &model.OrganizationModel{
		ID:        e.ID,
		Name:      e.Name,
		Slug:      e.Slug,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func ToMemberEntity(m *model.MemberModel) *entity.Member {
	if m == nil {
		return nil
	}

	return &entity.Member{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		UserID:         m.UserID,
		Role:           entity.Role(m.Role),
		CreatedAt:      m.CreatedAt,
		User:           ToUserEntity(m.User),
	}
}

func ToMemberModel(e *entity.Member) *model.MemberModel {
	if e == nil {
		return nil
	}

	return &model.MemberModel{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		UserID:         e.UserID,
		Role:           string(e.Role),
		CreatedAt:      e.CreatedAt,
	}
}

func ToTodoEntity(m *model.TodoModel) *entity.Todo {
	if m == nil {
		return nil
	}

	return &entity.Todo{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		UserID:         m.UserID,
		Title:          m.Title,
		Description:    m.Description,
		Completed:      m.Completed,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func ToTodoModel(e *entity.Todo) *model.TodoModel {
	if e == nil {
		return nil
	}

	return &model.TodoModel{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		UserID:         e.UserID,
		Title:          e.Title,
		Description:    e.Description,
		Completed:      e.Completed,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func ToNotificationEntity(m *model.NotificationModel) *entity.Notification {
	if m == nil {
		return nil
	}

	return &entity.Notification{
		ID:         m.ID,
		UserID:     m.UserID,
		Title:      m.Title,
		Body:       m.Body,
		NavigateTo: m.NavigateTo,
		Metadata:   map[string]interface{}(m.Metadata),
		Severity:   m.Severity,
		Type:       m.Type,
		ReadAt:     m.ReadAt,
		CreatedAt:  m.CreatedAt,
	}
}

func ToNotificationModel(e *entity.Notification) *model.NotificationModel {
	if e == nil {
		return nil
	}

	return &model.NotificationModel{
		ID:         e.ID,
		UserID:     e.UserID,
		Title:      e.Title,
		Body:       e.Body,
		NavigateTo: e.NavigateTo,
		Metadata:   model.JSONMap(e.Metadata),
		Severity:   e.Severity,
		Type:       e.Type,
		ReadAt:     e.ReadAt,
		CreatedAt:  e.CreatedAt,
	}
}
