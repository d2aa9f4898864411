package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"auratask/internal/auth"
	"auratask/internal/errors"
	"auratask/internal/model"
	"auratask/internal/repository"
	"auratask/internal/service"
)

// TaskHandler handles task endpoints.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"omitempty,max=1000"`
	Priority    string     `json:"priority" validate:"omitempty,max=20"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateTaskRequest represents a partial task update. Absent fields stay unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	Priority    *string    `json:"priority" validate:"omitempty,max=20"`
	DueDate     *time.Time `json:"due_date"`
	Completed   *bool      `json:"completed"`
}

// TaskListResponse represents a task listing with its matching-row count.
type TaskListResponse struct {
	Tasks []model.Task `json:"tasks"`
	Count int64        `json:"count"`
}

// List godoc
// @Summary List tasks for a user
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param user_id query string true "User ID (must match the authenticated user)"
// @Param status_filter query string false "all | pending | completed" default(all)
// @Param sort_by query string false "created | title | priority" default(created)
// @Success 200 {object} TaskListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/ [get]
func (h *TaskHandler) List(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "user_id is required",
			Code:  "MISSING_USER_ID",
		})
	}

	filter := repository.TaskFilter{
		Status: c.QueryParam("status_filter"),
		SortBy: c.QueryParam("sort_by"),
	}

	tasks, count, err := h.taskService.List(c.Request().Context(), auth.SubjectID(c), userID, filter)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	if tasks == nil {
		tasks = []model.Task{}
	}
	return c.JSON(http.StatusOK, TaskListResponse{Tasks: tasks, Count: count})
}

// Stats godoc
// @Summary Get task statistics for a user
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param user_id query string true "User ID (must match the authenticated user)"
// @Success 200 {object} repository.TaskCounts
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/stats [get]
func (h *TaskHandler) Stats(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "user_id is required",
			Code:  "MISSING_USER_ID",
		})
	}

	counts, err := h.taskService.Stats(c.Request().Context(), auth.SubjectID(c), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, counts)
}

// StatsSummary godoc
// @Summary Get task statistics for the authenticated user
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} repository.TaskCounts
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/stats/summary [get]
func (h *TaskHandler) StatsSummary(c echo.Context) error {
	// Legacy form: no user_id parameter, the subject is the user.
	subject := auth.SubjectID(c)
	counts, err := h.taskService.Stats(c.Request().Context(), subject, subject)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, counts)
}

// Create godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskRequest true "Task data"
// @Success 201 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/ [post]
func (h *TaskHandler) Create(c echo.Context) error {
	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	task, err := h.taskService.Create(c.Request().Context(), auth.SubjectID(c), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, task)
}

// Get godoc
// @Summary Get a task by ID
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} model.Task
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, svcErr := h.taskService.Get(c.Request().Context(), auth.SubjectID(c), id)
	if svcErr != nil {
		httpErr := errors.MapErrorToHTTP(svcErr)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, task)
}

// Update godoc
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body UpdateTaskRequest true "Fields to update"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	var req UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	task, svcErr := h.taskService.Update(c.Request().Context(), auth.SubjectID(c), id, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
	})
	if svcErr != nil {
		httpErr := errors.MapErrorToHTTP(svcErr)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary Delete a task
// @Tags tasks
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 204 "No Content"
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	if svcErr := h.taskService.Delete(c.Request().Context(), auth.SubjectID(c), id); svcErr != nil {
		httpErr := errors.MapErrorToHTTP(svcErr)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleComplete godoc
// @Summary Toggle a task's completion flag
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} model.Task
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id}/complete [patch]
func (h *TaskHandler) ToggleComplete(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, svcErr := h.taskService.ToggleComplete(c.Request().Context(), auth.SubjectID(c), id)
	if svcErr != nil {
		httpErr := errors.MapErrorToHTTP(svcErr)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, task)
}

func taskID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid task ID",
			Code:  "INVALID_TASK_ID",
		})
	}
	return uint(id), nil
}
