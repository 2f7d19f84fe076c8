package ports

import (
	"context"

	"github.com/fincatec/domain-store/internal/core/domain"
)

// RegisterInput carries the data needed to create a user.
type RegisterInput struct {
	Email    string `validate:"required,email"`
	Name     string `validate:"required"`
	Phone    string
	Password string `validate:"required,min=6"`
	Role     string `validate:"required,oneof=finquero veterinario"`
}

// SessionService resolves who is using the store.
type SessionService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.User, error)
	CurrentCompanyID(ctx context.Context) (string, error)
}
