package auth

import (
	"context"

	"venuebook/internal/domain"
)

// UserRepository is the durable-store contract for user records.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
