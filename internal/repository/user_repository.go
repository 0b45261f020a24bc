package repository

import (
	"context"

	"github.com/nthottathil/bridge-web-app/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// ListVerified returns all verified users except excludeID.
	ListVerified(ctx context.Context, excludeID int) ([]*domain.User, error)
	// SetVerified marks the user verified and clears the verification code.
	SetVerified(ctx context.Context, id int) error
	SetVerificationCode(ctx context.Context, id int, code string) error
}
