package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/taskboard/internal/domain"
	"github.com/ErlanBelekov/taskboard/internal/repository"
	"github.com/ErlanBelekov/taskboard/internal/validation"
)

const msgEmailInUse = "Email already in use"

type UserUsecase struct {
	users  repository.UserRepository
	hasher PasswordHasher
}

func NewUserUsecase(users repository.UserRepository, hasher PasswordHasher) *UserUsecase {
	return &UserUsecase{users: users, hasher: hasher}
}

func (u *UserUsecase) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	public := user.Public()
	return &public, nil
}

// UpdateProfileInput: empty Name/Email keep the stored values. The password is
// re-hashed only when ChangePassword is set.
type UpdateProfileInput struct {
	Name           string
	Email          string
	Password       string
	ChangePassword bool
}

func (u *UserUsecase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)

	check := validation.ProfileUpdate{Name: input.Name, Email: input.Email}
	if input.ChangePassword {
		check.Password = input.Password
		if check.Password == "" {
			return nil, domain.NewValidationError(map[string]string{
				"password": "Please enter a password with 6 or more characters",
			})
		}
	}
	if err := validation.Check(check); err != nil {
		return nil, err
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.ChangePassword {
		hash, err := u.hasher.Hash(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	updated, err := u.users.Update(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.NewDuplicateEmailError(msgEmailInUse, msgEmailInUse)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	public := updated.Public()
	return &public, nil
}
