package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ErlanBelekov/taskboard/internal/domain"
	"github.com/ErlanBelekov/taskboard/internal/repository"
	"github.com/ErlanBelekov/taskboard/internal/validation"
)

const (
	msgUserExists      = "User already exists"
	msgUserExistsField = "User already exists with this email"
)

// PasswordHasher is the opaque one-way function used for credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

// TokenEncoder issues session tokens.
type TokenEncoder interface {
	Encode(subjectID string) (string, error)
}

type AuthUsecase struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens TokenEncoder

	// decoyHash is verified against when the email is unknown so both failure
	// paths cost one hash comparison.
	decoyOnce sync.Once
	decoyHash string
}

func NewAuthUsecase(users repository.UserRepository, hasher PasswordHasher, tokens TokenEncoder) *AuthUsecase {
	return &AuthUsecase{users: users, hasher: hasher, tokens: tokens}
}

// Session is the result of a successful register or login.
type Session struct {
	User  *domain.User // public fields only
	Token string
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	input.Name = strings.TrimSpace(input.Name)

	if err := validation.Check(validation.Registration{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	}); err != nil {
		return nil, err
	}

	_, err := u.users.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, domain.NewDuplicateEmailError(msgUserExists, msgUserExistsField)
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := u.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	created, err := u.users.Create(ctx, &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		// lost the race against a concurrent registration
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.NewDuplicateEmailError(msgUserExists, msgUserExistsField)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return u.issue(created)
}

type LoginInput struct {
	Email    string
	Password string
}

// Login returns domain.ErrInvalidCredentials for an unknown email and for a
// wrong password alike.
func (u *AuthUsecase) Login(ctx context.Context, input LoginInput) (*Session, error) {
	if err := validation.Check(validation.Login{Email: input.Email, Password: input.Password}); err != nil {
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			u.burnDecoy(input.Password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	ok, err := u.hasher.Verify(user.PasswordHash, input.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	return u.issue(user)
}

func (u *AuthUsecase) issue(user *domain.User) (*Session, error) {
	token, err := u.tokens.Encode(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	public := user.Public()
	return &Session{User: &public, Token: token}, nil
}

func (u *AuthUsecase) burnDecoy(password string) {
	u.decoyOnce.Do(func() {
		u.decoyHash, _ = u.hasher.Hash("decoy-password-never-matches")
	})
	if u.decoyHash != "" {
		_, _ = u.hasher.Verify(u.decoyHash, password)
	}
}
