package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/taskboard/internal/domain"
	"github.com/ErlanBelekov/taskboard/internal/taskquery"
)

// TaskPatch carries the fields an update intends to change. nil = keep.
// ClearDueDate removes the due date and takes precedence over DueDate.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *domain.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
}

type TaskPage struct {
	Tasks []*domain.Task
	Total int
}

// TaskRepository depends on nothing but the domain, so usecases can be tested with fakes.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// GetByID is not scoped to an owner; callers run the ownership guard on the result.
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, id string, patch TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id string) error

	// List is always scoped to q.OwnerID.
	List(ctx context.Context, q taskquery.Query) (TaskPage, error)
	Stats(ctx context.Context, ownerID string, now time.Time) (domain.TaskStats, error)
}
