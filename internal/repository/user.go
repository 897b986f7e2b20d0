package repository

import (
	"context"

	"boot-shop/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	// Create stores a new user and assigns its ID. It returns ErrAlreadyExists
	// when the username is taken.
	Create(ctx context.Context, user *domain.User) (string, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// AppendOrder adds orderID to the user's order set.
	AppendOrder(ctx context.Context, userID, orderID string) error
}
