package repository

import (
	"context"

	"boot-shop/internal/domain"
)

// OrderRepository persists orders. Orders are never updated once created.
type OrderRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, order *domain.Order) (string, error)
	// ListByUser returns the user's orders ordered by creation time, oldest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}
