package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/taskboard/internal/domain"
	"github.com/ErlanBelekov/taskboard/internal/metrics"
	"github.com/ErlanBelekov/taskboard/internal/taskquery"
	"github.com/ErlanBelekov/taskboard/internal/transport/http/middleware"
	"github.com/ErlanBelekov/taskboard/internal/usecase"
	"github.com/gin-gonic/gin"
)

type taskUsecaser interface {
	CreateTask(ctx context.Context, input usecase.CreateTaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, taskID, userID string) (*domain.Task, error)
	UpdateTask(ctx context.Context, taskID, userID string, input usecase.UpdateTaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskID, userID string) error
	ListTasks(ctx context.Context, userID string, params taskquery.Params) (taskquery.Result, error)
	Stats(ctx context.Context, userID string) (domain.TaskStats, error)
}

type TaskHandler struct {
	taskUsecase taskUsecaser
	logger      *slog.Logger
}

func NewTaskHandler(taskUsecase taskUsecaser, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
		logger:      logger.With("component", "task_handler"),
	}
}

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
}

type updateTaskRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Status      *string      `json:"status"`
	DueDate     optionalTime `json:"dueDate"`
}

// optionalTime tells an absent field apart from an explicit null.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

type taskResponse struct {
	ID          string            `json:"id"`
	User        string            `json:"user"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      domain.TaskStatus `json:"status"`
	DueDate     *time.Time        `json:"dueDate"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		User:        t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type listTasksResponse struct {
	Tasks      []taskResponse `json:"tasks"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	Total      int            `json:"total"`
}

type statsResponse struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"inProgress"`
	Done       int `json:"done"`
	Overdue    int `json:"overdue"`
}

// identity is set by the session stage on every task route.
func (h *TaskHandler) identity(c *gin.Context) (string, bool) {
	u, ok := middleware.Identity(c)
	if !ok {
		writeError(c, h.logger, domain.ErrUnauthenticated)
		return "", false
	}
	return u.ID, true
}

// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskUsecase.CreateTask(c.Request.Context(), usecase.CreateTaskInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	metrics.TaskMutationsTotal.WithLabelValues("create").Inc()

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

// GET /api/tasks?status=&search=&sort=&page=&limit=
// Query parameters are parsed permissively; bad values fall back to defaults.
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := h.identity(c)
	if !ok {
		return
	}

	result, err := h.taskUsecase.ListTasks(c.Request.Context(), userID, taskquery.Params{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
		Page:   c.Query("page"),
		Limit:  c.Query("limit"),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	tasks := make([]taskResponse, 0, len(result.Items))
	for _, t := range result.Items {
		tasks = append(tasks, toTaskResponse(t))
	}
	c.JSON(http.StatusOK, listTasksResponse{
		Tasks:      tasks,
		Page:       result.Page,
		TotalPages: result.TotalPages,
		Total:      result.Total,
	})
}

// GET /api/tasks/stats
func (h *TaskHandler) Stats(c *gin.Context) {
	userID, ok := h.identity(c)
	if !ok {
		return
	}

	s, err := h.taskUsecase.Stats(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, statsResponse(s))
}

// GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	userID, ok := h.identity(c)
	if !ok {
		return
	}

	task, err := h.taskUsecase.GetTask(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	input := usecase.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate.Value,
		ClearDueDate: req.DueDate.Set && req.DueDate.Value == nil,
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		input.Status = &s
	}

	task, err := h.taskUsecase.UpdateTask(c.Request.Context(), c.Param("id"), userID, input)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	metrics.TaskMutationsTotal.WithLabelValues("update").Inc()

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.taskUsecase.DeleteTask(c.Request.Context(), c.Param("id"), userID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	metrics.TaskMutationsTotal.WithLabelValues("delete").Inc()

	c.JSON(http.StatusOK, gin.H{"message": "Task removed"})
}
