package repository

import (
	"context"

	"github.com/ErlanBelekov/taskboard/internal/domain"
)

type UserRepository interface {
	// Create fails with domain.ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update writes name, email and password hash. Fails with domain.ErrDuplicateEmail
	// when the new email belongs to another user.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
}
