package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"boot-shop/internal/domain"
	"boot-shop/internal/repository"
)

const createBootsTable = `
CREATE TABLE IF NOT EXISTS boots (
	id TEXT PRIMARY KEY,
	attributes TEXT NOT NULL DEFAULT '{}',
	price REAL NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const selectBoots = `SELECT id, attributes, price, created_at, updated_at FROM boots`

type BootRepository struct {
	db *sql.DB
}

func NewBootRepository(db *sql.DB) repository.BootRepository {
	return &BootRepository{db: db}
}

func (r *BootRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createBootsTable); err != nil {
		return fmt.Errorf("create boots table: %w", err)
	}
	return nil
}

func (r *BootRepository) Create(ctx context.Context, boot *domain.Boot) (string, error) {
	attrs, err := encodeAttributes(boot.Attributes)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	boot.ID = uuid.NewString()
	boot.CreatedAt = now
	boot.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
INSERT INTO boots (id, attributes, price, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		boot.ID,
		attrs,
		nullPrice(boot.Price),
		boot.CreatedAt,
		boot.UpdatedAt,
	)
	if err != nil {
		boot.ID = ""
		return "", fmt.Errorf("insert boot: %w", err)
	}
	return boot.ID, nil
}

func (r *BootRepository) Get(ctx context.Context, id string) (*domain.Boot, error) {
	row := r.db.QueryRowContext(ctx, selectBoots+` WHERE id=?`, id)
	return scanBoot(row)
}

func (r *BootRepository) List(ctx context.Context) ([]domain.Boot, error) {
	rows, err := r.db.QueryContext(ctx, selectBoots+` ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("query boots: %w", err)
	}
	return collectBoots(rows)
}

func (r *BootRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Boot, error) {
	if len(ids) == 0 {
		return []domain.Boot{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := fmt.Sprintf(selectBoots+` WHERE id IN (%s) ORDER BY rowid ASC`, placeholders(len(ids)))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query boots by id: %w", err)
	}
	return collectBoots(rows)
}

func (r *BootRepository) Update(ctx context.Context, id string, patch domain.BootPatch) (*domain.Boot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	boot, err := scanBoot(tx.QueryRowContext(ctx, selectBoots+` WHERE id=?`, id))
	if err != nil {
		return nil, err
	}

	patch.Apply(boot)
	boot.UpdatedAt = time.Now().UTC()

	attrs, err := encodeAttributes(boot.Attributes)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE boots
SET attributes=?, price=?, updated_at=?
WHERE id=?`,
		attrs,
		nullPrice(boot.Price),
		boot.UpdatedAt,
		id,
	); err != nil {
		return nil, fmt.Errorf("update boot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit boot update: %w", err)
	}
	return boot, nil
}

func (r *BootRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boots WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete boot: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("boot delete rows affected: %w", err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func collectBoots(rows *sql.Rows) ([]domain.Boot, error) {
	defer rows.Close()

	boots := []domain.Boot{}
	for rows.Next() {
		boot, err := scanBoot(rows)
		if err != nil {
			return nil, err
		}
		boots = append(boots, *boot)
	}
	return boots, rows.Err()
}

func scanBoot(scanner interface {
	Scan(dest ...any) error
}) (*domain.Boot, error) {
	var (
		boot  domain.Boot
		attrs string
		price sql.NullFloat64
	)
	if err := scanner.Scan(&boot.ID, &attrs, &price, &boot.CreatedAt, &boot.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan boot: %w", err)
	}

	boot.Attributes = map[string]string{}
	if attrs != "" {
		if err := json.Unmarshal([]byte(attrs), &boot.Attributes); err != nil {
			return nil, fmt.Errorf("decode boot %s attributes: %w", boot.ID, err)
		}
	}
	if price.Valid {
		p := price.Float64
		boot.Price = &p
	}
	return &boot, nil
}

func encodeAttributes(attrs map[string]string) (string, error) {
	if attrs == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("encode boot attributes: %w", err)
	}
	return string(raw), nil
}

func nullPrice(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
