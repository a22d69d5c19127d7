package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ErlanBelekov/taskboard/internal/domain"
	"github.com/ErlanBelekov/taskboard/internal/repository"
	"github.com/ErlanBelekov/taskboard/internal/taskquery"
	"github.com/ErlanBelekov/taskboard/internal/validation"
)

type TaskUsecase struct {
	repo repository.TaskRepository
	now  func() time.Time
}

func NewTaskUsecase(repo repository.TaskRepository) *TaskUsecase {
	return &TaskUsecase{repo: repo, now: time.Now}
}

// AssertOwner is the ownership guard for single-task operations. A missing
// task is ErrTaskNotFound (404); another user's task is an OwnershipError (403).
func AssertOwner(task *domain.Task, userID, action string) error {
	if task == nil {
		return domain.ErrTaskNotFound
	}
	if task.UserID != userID {
		return &domain.OwnershipError{Action: action}
	}
	return nil
}

type CreateTaskInput struct {
	UserID      string
	Title       string
	Description string
	Status      domain.TaskStatus
	DueDate     *time.Time
}

func (u *TaskUsecase) CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)

	if err := validation.Check(validation.TaskCreate{
		Title:       input.Title,
		Description: input.Description,
		Status:      string(input.Status),
		DueDate:     input.DueDate,
	}); err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = domain.TaskStatusTodo
	}

	created, err := u.repo.Create(ctx, &domain.Task{
		UserID:      input.UserID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		DueDate:     input.DueDate,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

// fetchOwned loads a task and runs the guard against a single snapshot.
func (u *TaskUsecase) fetchOwned(ctx context.Context, taskID, userID, action string) (*domain.Task, error) {
	task, err := u.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if err := AssertOwner(task, userID, action); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *TaskUsecase) GetTask(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	return u.fetchOwned(ctx, taskID, userID, "access")
}

type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *domain.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool // set when the client sent dueDate: null
}

func (u *TaskUsecase) UpdateTask(ctx context.Context, taskID, userID string, input UpdateTaskInput) (*domain.Task, error) {
	if _, err := u.fetchOwned(ctx, taskID, userID, "update"); err != nil {
		return nil, err
	}

	if input.ClearDueDate {
		input.DueDate = nil
	}
	check := validation.TaskUpdate{DueDate: input.DueDate}
	if input.Title != nil {
		t := strings.TrimSpace(*input.Title)
		input.Title = &t
		check.Title = &t
	}
	if input.Description != nil {
		d := strings.TrimSpace(*input.Description)
		input.Description = &d
		check.Description = &d
	}
	if input.Status != nil {
		s := string(*input.Status)
		check.Status = &s
	}
	if err := validation.Check(check); err != nil {
		return nil, err
	}

	// A concurrent delete by the owner surfaces here as ErrTaskNotFound.
	updated, err := u.repo.Update(ctx, taskID, repository.TaskPatch{
		Title:        input.Title,
		Description:  input.Description,
		Status:       input.Status,
		DueDate:      input.DueDate,
		ClearDueDate: input.ClearDueDate,
	})
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return updated, nil
}

func (u *TaskUsecase) DeleteTask(ctx context.Context, taskID, userID string) error {
	if _, err := u.fetchOwned(ctx, taskID, userID, "delete"); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// ListTasks never checks ownership per item: the query itself is scoped to
// the owner.
func (u *TaskUsecase) ListTasks(ctx context.Context, userID string, params taskquery.Params) (taskquery.Result, error) {
	q := taskquery.Build(userID, params)

	page, err := u.repo.List(ctx, q)
	if err != nil {
		return taskquery.Result{}, fmt.Errorf("list tasks: %w", err)
	}
	return taskquery.NewResult(q, page.Tasks, page.Total), nil
}

func (u *TaskUsecase) Stats(ctx context.Context, userID string) (domain.TaskStats, error) {
	s, err := u.repo.Stats(ctx, userID, u.now())
	if err != nil {
		return domain.TaskStats{}, fmt.Errorf("task stats: %w", err)
	}
	return s, nil
}
