package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/taskboard/internal/domain"
	"github.com/ErlanBelekov/taskboard/internal/repository"
	"github.com/ErlanBelekov/taskboard/internal/taskquery"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, user_id, title, description, status, due_date, created_at, updated_at`

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (user_id, title, description, status, due_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+taskColumns,
		task.UserID, task.Title, task.Description, string(task.Status), task.DueDate,
	)
	return scanTask(row)
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

func (r *TaskRepository) Update(ctx context.Context, id string, patch repository.TaskPatch) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}

	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}

	// user_id is not updatable.
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET    title       = COALESCE($2, title),
		       description = COALESCE($3, description),
		       status      = COALESCE($4, status),
		       due_date    = CASE WHEN $6::boolean THEN NULL ELSE COALESCE($5, due_date) END,
		       updated_at  = NOW()
		WHERE id = $1
		RETURNING `+taskColumns,
		id, patch.Title, patch.Description, status, patch.DueDate, patch.ClearDueDate,
	)
	return scanTask(row)
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrTaskNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) List(ctx context.Context, q taskquery.Query) (repository.TaskPage, error) {
	stmt := buildTaskList(q)

	rows, err := r.pool.Query(ctx, stmt.List, stmt.ListArgs...)
	if err != nil {
		return repository.TaskPage{}, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0, q.Limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return repository.TaskPage{}, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return repository.TaskPage{}, fmt.Errorf("list tasks: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, stmt.Count, stmt.CountArgs...).Scan(&total); err != nil {
		return repository.TaskPage{}, fmt.Errorf("count tasks: %w", err)
	}

	return repository.TaskPage{Tasks: tasks, Total: total}, nil
}

func (r *TaskRepository) Stats(ctx context.Context, ownerID string, now time.Time) (domain.TaskStats, error) {
	var s domain.TaskStats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'todo'),
		       COUNT(*) FILTER (WHERE status = 'in-progress'),
		       COUNT(*) FILTER (WHERE status = 'done'),
		       COUNT(*) FILTER (WHERE due_date < $2 AND status <> 'done')
		FROM tasks
		WHERE user_id = $1`, ownerID, now,
	).Scan(&s.Total, &s.Todo, &s.InProgress, &s.Done, &s.Overdue)
	if err != nil {
		return domain.TaskStats{}, fmt.Errorf("task stats: %w", err)
	}
	return s, nil
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status,
		&t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &t, nil
}
