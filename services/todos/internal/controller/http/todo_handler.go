package http

import (
	"net/http"
	"strconv"

	"todos/pkg/logger"
	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/usecase"

	"github.com/gin-gonic/gin"
)

type TodoHandler struct {
	todoUseCase usecase.TodoUseCase
	logger      *logger.Logger
}

func NewTodoHandler(todoUseCase usecase.TodoUseCase, logger *logger.Logger) *TodoHandler {
	return &TodoHandler{
		todoUseCase: todoUseCase,
		logger:      logger,
	}
}

type CreateTodoRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type UpdateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// CreateTodo godoc
// @Summary      Create a todo
// @Description  Creates a todo in the active organization and notifies the author's subscribers
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateTodoRequest true "Todo"
// @Success      201  {object}  entity.Todo
// @Failure      400  {object}  map[string]string
// @Router       /todos [post]
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	todo, err := h.todoUseCase.Create(c.Request.Context(), session, req.Title, req.Description)
	if err != nil {
		respondError(c, h.logger, err, "create todo")
		return
	}

	c.JSON(http.StatusCreated, todo)
}

// ListTodos godoc
// @Summary      List todos
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        completed query bool false "Filter by completion"
// @Param        user_id query string false "Filter by author"
// @Param        limit query int false "Page size (default 50, max 100)"
// @Param        offset query int false "Offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /todos [get]
func (h *TodoHandler) ListTodos(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	var filter entity.TodoFilter
	if v := c.Query("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "completed must be true or false"})
			return
		}
		filter.Completed = &completed
	}
	filter.UserID = c.Query("user_id")

	limit, offset := pagination(c)
	todos, err := h.todoUseCase.List(c.Request.Context(), session, filter, limit, offset)
	if err != nil {
		respondError(c, h.logger, err, "list todos")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"todos":  todos,
		"count":  len(todos),
		"offset": offset,
	})
}

// GetTodo godoc
// @Summary      Get a todo
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Todo ID"
// @Success      200  {object}  entity.Todo
// @Failure      404  {object}  map[string]string
// @Router       /todos/{id} [get]
func (h *TodoHandler) GetTodo(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	todo, err := h.todoUseCase.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "get todo")
		return
	}

	c.JSON(http.StatusOK, todo)
}

// UpdateTodo godoc
// @Summary      Update a todo
// @Description  Only the author, an owner or an admin may update a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Todo ID"
// @Param        request body UpdateTodoRequest true "Fields to change"
// @Success      200  {object}  entity.Todo
// @Failure      403  {object}  map[string]string
// @Router       /todos/{id} [put]
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	todo, err := h.todoUseCase.Update(c.Request.Context(), session, c.Param("id"), usecase.TodoUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		respondError(c, h.logger, err, "update todo")
		return
	}

	c.JSON(http.StatusOK, todo)
}

// DeleteTodo godoc
// @Summary      Delete a todo
// @Tags         todos
// @Security     BearerAuth
// @Param        id path string true "Todo ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /todos/{id} [delete]
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	if err := h.todoUseCase.Delete(c.Request.Context(), session, c.Param("id")); err != nil {
		respondError(c, h.logger, err, "delete todo")
		return
	}

	c.Status(http.StatusNoContent)
}

// ToggleTodo godoc
// @Summary      Toggle completion
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Todo ID"
// @Success      200  {object}  entity.Todo
// @Router       /todos/{id}/toggle [post]
func (h *TodoHandler) ToggleTodo(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}

	todo, err := h.todoUseCase.Toggle(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "toggle todo")
		return
	}

	c.JSON(http.StatusOK, todo)
}
