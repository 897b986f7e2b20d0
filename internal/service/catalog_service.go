package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"boot-shop/internal/domain"
	"boot-shop/internal/repository"
)

// Fields is a decoded JSON object describing a boot: string attributes plus
// an optional "price".
type Fields map[string]any

const priceField = "price"

// reservedFields are managed by the store and ignored in client input.
var reservedFields = map[string]struct{}{
	"id":        {},
	"_id":       {},
	"createdAt": {},
	"updatedAt": {},
	"__v":       {},
}

// CatalogService manages the boot catalog.
type CatalogService interface {
	Create(ctx context.Context, fields Fields) (*domain.Boot, error)
	List(ctx context.Context) ([]domain.Boot, error)
	// Get returns nil without error when the boot does not exist.
	Get(ctx context.Context, id string) (*domain.Boot, error)
	// Update returns nil without error when the boot does not exist.
	Update(ctx context.Context, id string, fields Fields) (*domain.Boot, error)
	// Delete succeeds whether or not the boot existed.
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, records []Fields) (int, error)
	Export(ctx context.Context) ([]Fields, error)
}

type catalogService struct {
	boots repository.BootRepository
}

func NewCatalogService(boots repository.BootRepository) CatalogService {
	return &catalogService{boots: boots}
}

func (s *catalogService) Create(ctx context.Context, fields Fields) (*domain.Boot, error) {
	patch, err := parseFields(fields, true)
	if err != nil {
		return nil, err
	}
	if len(patch.Attributes) == 0 && patch.Price == nil {
		return nil, validationError("Boot fields are required")
	}

	boot := &domain.Boot{Attributes: patch.Attributes, Price: patch.Price}
	if _, err := s.boots.Create(ctx, boot); err != nil {
		return nil, persistenceError("Failed to create boot", err)
	}
	return boot, nil
}

func (s *catalogService) List(ctx context.Context) ([]domain.Boot, error) {
	boots, err := s.boots.List(ctx)
	if err != nil {
		return nil, persistenceError("Failed to fetch boots", err)
	}
	return boots, nil
}

func (s *catalogService) Get(ctx context.Context, id string) (*domain.Boot, error) {
	boot, err := s.boots.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("Failed to fetch boot", err)
	}
	return boot, nil
}

func (s *catalogService) Update(ctx context.Context, id string, fields Fields) (*domain.Boot, error) {
	patch, err := parseFields(fields, true)
	if err != nil {
		return nil, err
	}
	boot, err := s.boots.Update(ctx, id, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("Failed to update boot", err)
	}
	return boot, nil
}

func (s *catalogService) Delete(ctx context.Context, id string) error {
	err := s.boots.Delete(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return persistenceError("Failed to delete boot", err)
	}
	return nil
}

// Import creates one boot per non-empty record. Records are read leniently:
// non-string attribute values are stored as text and unparseable prices are
// dropped.
func (s *catalogService) Import(ctx context.Context, records []Fields) (int, error) {
	created := 0
	for i, record := range records {
		patch, err := parseFields(record, false)
		if err != nil {
			return created, fmt.Errorf("record %d: %w", i, err)
		}
		if len(patch.Attributes) == 0 && patch.Price == nil {
			continue
		}
		boot := &domain.Boot{Attributes: patch.Attributes, Price: patch.Price}
		if _, err := s.boots.Create(ctx, boot); err != nil {
			return created, persistenceError("Failed to import boot", err)
		}
		created++
	}
	return created, nil
}

func (s *catalogService) Export(ctx context.Context) ([]Fields, error) {
	boots, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Fields, 0, len(boots))
	for _, b := range boots {
		record := make(Fields, len(b.Attributes)+1)
		for k, v := range b.Attributes {
			record[k] = v
		}
		if b.Price != nil {
			record[priceField] = *b.Price
		}
		out = append(out, record)
	}
	return out, nil
}

// parseFields turns client input into a patch. In strict mode malformed
// values are validation errors; otherwise they are coerced or dropped.
func parseFields(fields Fields, strict bool) (domain.BootPatch, error) {
	patch := domain.BootPatch{Attributes: map[string]string{}}
	for key, value := range fields {
		if _, reserved := reservedFields[key]; reserved {
			continue
		}
		if key == "" || strings.HasPrefix(key, "$") || strings.Contains(key, ".") {
			if strict {
				return domain.BootPatch{}, validationError(fmt.Sprintf("Invalid field name %q", key))
			}
			continue
		}

		if key == priceField {
			patch.SetPrice = true
			if value == nil {
				patch.Price = nil
				continue
			}
			p, ok := parsePrice(value)
			if !ok {
				if strict {
					return domain.BootPatch{}, validationError("Price must be a number")
				}
				patch.SetPrice = false
				continue
			}
			patch.Price = &p
			continue
		}

		switch v := value.(type) {
		case string:
			patch.Attributes[key] = v
		case nil:
			if strict {
				return domain.BootPatch{}, validationError(fmt.Sprintf("Field %q must be a string", key))
			}
		default:
			if strict {
				return domain.BootPatch{}, validationError(fmt.Sprintf("Field %q must be a string", key))
			}
			patch.Attributes[key] = fmt.Sprint(v)
		}
	}
	return patch, nil
}

func parsePrice(v any) (float64, bool) {
	f, ok := domain.CoercePrice(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
