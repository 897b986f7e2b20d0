package repository

import (
	"context"

	"boot-shop/internal/domain"
)

// BootRepository exposes persistence operations for the catalog.
type BootRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, boot *domain.Boot) (string, error)
	Get(ctx context.Context, id string) (*domain.Boot, error)
	List(ctx context.Context) ([]domain.Boot, error)
	// FindByIDs returns the boots that exist among ids. Unknown or malformed
	// IDs are skipped and the result order is unspecified.
	FindByIDs(ctx context.Context, ids []string) ([]domain.Boot, error)
	Update(ctx context.Context, id string, patch domain.BootPatch) (*domain.Boot, error)
	Delete(ctx context.Context, id string) error
}
