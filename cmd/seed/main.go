// seed inserts the demo user and a handful of tasks into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ErlanBelekov/taskboard/internal/auth"
	"github.com/ErlanBelekov/taskboard/internal/domain"
	"github.com/ErlanBelekov/taskboard/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/taskboard/internal/usecase"
)

const (
	seedName     = "Ada"
	seedEmail    = "ada@x.com"
	seedPassword = "secret1"
)

type taskSpec struct {
	title       string
	description string
	status      domain.TaskStatus
	dueInDays   int // 0 = no due date, negative = overdue
}

var tasks = []taskSpec{
	{"Write quarterly report", "Numbers from finance are in the shared drive", domain.TaskStatusInProgress, 3},
	{"Review pull requests", "", domain.TaskStatusTodo, 1},
	{"Renew passport", "Photos first", domain.TaskStatusTodo, -2},
	{"Book dentist", "", domain.TaskStatusDone, 0},
	{"Plan team offsite", "Budget, venue, agenda", domain.TaskStatusTodo, 14},
	{"Fix flaky login test", "Fails on the first run after a cold start", domain.TaskStatusInProgress, 0},
	{"Read the report draft", "Check the search section", domain.TaskStatusDone, -5},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "seed-only-secret-never-used-to-serve"
	}

	pool, err := postgres.NewPool(ctx, dbURL, 2)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	codec, err := auth.NewTokenCodec([]byte(secret))
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	users := postgres.NewUserRepository(pool)
	authUC := usecase.NewAuthUsecase(users, auth.NewBcryptHasher(auth.DefaultCost), codec)
	taskUC := usecase.NewTaskUsecase(postgres.NewTaskRepository(pool))

	// Register, or reuse the user from a previous run
	var user *domain.User
	session, err := authUC.Register(ctx, usecase.RegisterInput{Name: seedName, Email: seedEmail, Password: seedPassword})
	switch {
	case err == nil:
		user = session.User
	case errors.Is(err, domain.ErrDuplicateEmail):
		user, err = users.FindByEmail(ctx, seedEmail)
		if err != nil {
			log.Fatalf("find seed user: %v", err)
		}
	default:
		log.Fatalf("register seed user: %v", err)
	}

	stats, err := taskUC.Stats(ctx, user.ID)
	if err != nil {
		log.Fatalf("task stats: %v", err)
	}

	var inserted int
	if stats.Total == 0 {
		now := time.Now()
		for _, spec := range tasks {
			input := usecase.CreateTaskInput{
				UserID:      user.ID,
				Title:       spec.title,
				Description: spec.description,
				Status:      spec.status,
			}
			if spec.dueInDays != 0 {
				due := now.AddDate(0, 0, spec.dueInDays)
				input.DueDate = &due
			}
			if _, err := taskUC.CreateTask(ctx, input); err != nil {
				log.Fatalf("create task %q: %v", spec.title, err)
			}
			inserted++
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:          %s <%s>\n", user.Name, user.Email)
	fmt.Printf("  Password:      %s\n", seedPassword)
	fmt.Printf("  User ID:       %s\n", user.ID)
	fmt.Printf("  Tasks created: %d  (existing %d kept)\n", inserted, stats.Total)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("    curl -s -c jar -X POST http://localhost:5000/api/auth/login \\")
	fmt.Println("      -H 'Content-Type: application/json' \\")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println()
	fmt.Println("    curl -s -b jar 'http://localhost:5000/api/tasks?search=report'")
	fmt.Println("    curl -s -b jar http://localhost:5000/api/tasks/stats")
}
