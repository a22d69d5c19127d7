package domain

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

const (
	TaskTitleMaxLen       = 100
	TaskDescriptionMaxLen = 500
)

type Task struct {
	ID          string
	UserID      string // owner, immutable after creation
	Title       string
	Description string
	Status      TaskStatus
	DueDate     *time.Time // nil means no due date
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskStats is the per-status breakdown shown on the dashboard.
type TaskStats struct {
	Total      int
	Todo       int
	InProgress int
	Done       int
	Overdue    int
}
