package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"todos/pkg/eventbus"
	"todos/pkg/logger"
	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/repo/persistent"

	"github.com/google/uuid"
)

const todoCreatedTitle = "New todo created"

type TodoUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
}

type TodoUseCase interface {
	Create(ctx context.Context, s entity.Session, title, description string) (*entity.Todo, error)
	Get(ctx context.Context, s entity.Session, id string) (*entity.Todo, error)
	List(ctx context.Context, s entity.Session, filter entity.TodoFilter, limit, offset int) ([]*entity.Todo, error)
	Update(ctx context.Context, s entity.Session, id string, update TodoUpdate) (*entity.Todo, error)
	Delete(ctx context.Context, s entity.Session, id string) error
	Toggle(ctx context.Context, s entity.Session, id string) (*entity.Todo, error)
}

type todoUseCase struct {
	todoRepo persistent.TodoRepository
	orgRepo  persistent.OrganizationRepository
	notifier Notifier
	logger   *logger.Logger
}

func NewTodoUseCase(
	todoRepo persistent.TodoRepository,
	orgRepo persistent.OrganizationRepository,
	notifier Notifier,
	logger *logger.Logger,
) TodoUseCase {
	return &todoUseCase{
		todoRepo: todoRepo,
		orgRepo:  orgRepo,
		notifier: notifier,
		logger:   logger,
	}
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", validationError("title is required")
	}
	if utf8.RuneCountInString(title) > entity.MaxTodoTitleLength {
		return "", validationError("title must be at most %d characters", entity.MaxTodoTitleLength)
	}
	return title, nil
}

// member returns the caller's current membership in the active organization.
// The role on the token may be stale, so permission checks use this instead.
func (uc *todoUseCase) member(ctx context.Context, s entity.Session) (*entity.Member, error) {
	if err := requireOrganization(s); err != nil {
		return nil, err
	}
	m, err := uc.orgRepo.GetMember(ctx, s.OrganizationID, s.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: not a member of this organization", ErrForbidden)
		}
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	return m, nil
}

func (uc *todoUseCase) Create(ctx context.Context, s entity.Session, title, description string) (*entity.Todo, error) {
	if _, err := uc.member(ctx, s); err != nil {
		return nil, err
	}

	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}

	todo := &entity.Todo{
		OrganizationID: s.OrganizationID,
		UserID:         s.UserID,
		Title:          title,
		Description:    strings.TrimSpace(description),
	}
	if err := uc.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	uc.notifier.Notify(ctx, todoCreatedEvent(todo))
	return todo, nil
}

func todoCreatedEvent(todo *entity.Todo) eventbus.Event {
	navigateTo := "/todos/" + todo.ID
	severity := entity.SeverityInfo
	eventType := entity.NotificationTypeTodoCreated

	return eventbus.Event{
		UserID:     todo.UserID,
		Title:      todoCreatedTitle,
		Body:       todoCreatedTitle + ": " + todo.Title,
		NavigateTo: &navigateTo,
		Severity:   &severity,
		Type:       &eventType,
		Metadata: map[string]interface{}{
			"todoId":         todo.ID,
			"organizationId": todo.OrganizationID,
		},
	}
}

func (uc *todoUseCase) Get(ctx context.Context, s entity.Session, id string) (*entity.Todo, error) {
	if _, err := uc.member(ctx, s); err != nil {
		return nil, err
	}
	return uc.get(ctx, s, id)
}

func (uc *todoUseCase) get(ctx context.Context, s entity.Session, id string) (*entity.Todo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("todo %w", ErrNotFound)
	}
	todo, err := uc.todoRepo.GetByID(ctx, s.OrganizationID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("todo %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return todo, nil
}

func (uc *todoUseCase) List(ctx context.Context, s entity.Session, filter entity.TodoFilter, limit, offset int) ([]*entity.Todo, error) {
	if _, err := uc.member(ctx, s); err != nil {
		return nil, err
	}
	if filter.UserID != "" {
		if _, err := uuid.Parse(filter.UserID); err != nil {
			return nil, validationError("user_id must be a UUID")
		}
	}

	limit, offset = clampPage(limit, offset)
	todos, err := uc.todoRepo.List(ctx, s.OrganizationID, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// editable loads the todo and checks that the caller is its author or manages
// the organization.
func (uc *todoUseCase) editable(ctx context.Context, s entity.Session, id string) (*entity.Todo, error) {
	m, err := uc.member(ctx, s)
	if err != nil {
		return nil, err
	}
	todo, err := uc.get(ctx, s, id)
	if err != nil {
		return nil, err
	}
	if todo.UserID != s.UserID && !m.Role.CanManage() {
		return nil, fmt.Errorf("%w: only the author or an admin can change this todo", ErrForbidden)
	}
	return todo, nil
}

func (uc *todoUseCase) Update(ctx context.Context, s entity.Session, id string, update TodoUpdate) (*entity.Todo, error) {
	todo, err := uc.editable(ctx, s, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		title, err := normalizeTitle(*update.Title)
		if err != nil {
			return nil, err
		}
		todo.Title = title
	}
	if update.Description != nil {
		todo.Description = strings.TrimSpace(*update.Description)
	}
	if update.Completed != nil {
		todo.Completed = *update.Completed
	}

	if err := uc.todoRepo.Update(ctx, todo); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("todo %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return todo, nil
}

func (uc *todoUseCase) Delete(ctx context.Context, s entity.Session, id string) error {
	if _, err := uc.editable(ctx, s, id); err != nil {
		return err
	}
	if err := uc.todoRepo.Delete(ctx, s.OrganizationID, id); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("todo %w", ErrNotFound)
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

func (uc *todoUseCase) Toggle(ctx context.Context, s entity.Session, id string) (*entity.Todo, error) {
	if _, err := uc.editable(ctx, s, id); err != nil {
		return nil, err
	}

	todo, err := uc.todoRepo.Toggle(ctx, s.OrganizationID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("todo %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to toggle todo: %w", err)
	}
	return todo, nil
}
