package persistent

import (
	"context"

	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TodoRepository interface {
	Create(ctx context.Context, todo *entity.Todo) error
	GetByID(ctx context.Context, orgID, id string) (*entity.Todo, error)
	List(ctx context.Context, orgID string, filter entity.TodoFilter, limit, offset int) ([]*entity.Todo, error)
	Update(ctx context.Context, todo *entity.Todo) error
	Toggle(ctx context.Context, orgID, id string) (*entity.Todo, error)
	Delete(ctx context.Context, orgID, id string) error
}

type todoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) Create(ctx context.Context, todo *entity.Todo) error {
	todoModel := ToTodoModel(todo)
	if err := r.db.WithContext(ctx).Create(todoModel).Error; err != nil {
		return err
	}
	*todo = *ToTodoEntity(todoModel)
	return nil
}

func (r *todoRepository) GetByID(ctx context.Context, orgID, id string) (*entity.Todo, error) {
	var todoModel model.TodoModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&todoModel).Error; err != nil {
		return nil, err
	}
	return ToTodoEntity(&todoModel), nil
}

func (r *todoRepository) List(ctx context.Context, orgID string, filter entity.TodoFilter, limit, offset int) ([]*entity.Todo, error) {
	query := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var todoModels []model.TodoModel
	if err := query.Find(&todoModels).Error; err != nil {
		return nil, err
	}

	todos := make([]*entity.Todo, len(todoModels))
	for i := range todoModels {
		todos[i] = ToTodoEntity(&todoModels[i])
	}
	return todos, nil
}

// Update writes the editable fields and refreshes todo from the stored row.
func (r *todoRepository) Update(ctx context.Context, todo *entity.Todo) error {
	updated, err := r.updateReturning(ctx, todo.OrganizationID, todo.ID, map[string]interface{}{
		"title":       todo.Title,
		"description": todo.Description,
		"completed":   todo.Completed,
	})
	if err != nil {
		return err
	}
	*todo = *updated
	return nil
}

// Toggle flips completed in a single statement so concurrent toggles each
// take effect.
func (r *todoRepository) Toggle(ctx context.Context, orgID, id string) (*entity.Todo, error) {
	return r.updateReturning(ctx, orgID, id, map[string]interface{}{
		"completed": gorm.Expr("NOT completed"),
	})
}

func (r *todoRepository) updateReturning(ctx context.Context, orgID, id string, values map[string]interface{}) (*entity.Todo, error) {
	var todoModel model.TodoModel
	result := r.db.WithContext(ctx).Model(&todoModel).
		Clauses(clause.Returning{}).
		Where("organization_id = ? AND id = ?", orgID, id).
		Updates(values)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return ToTodoEntity(&todoModel), nil
}

func (r *todoRepository) Delete(ctx context.Context, orgID, id string) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		Delete(&model.TodoModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
