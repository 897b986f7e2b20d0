package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"boot-shop/internal/domain"
	"boot-shop/internal/repository"
)

const createOrdersTable = `
CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	total_price REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
CREATE TABLE IF NOT EXISTS order_boots (
	order_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	boot_id TEXT NOT NULL,
	PRIMARY KEY (order_id, position),
	FOREIGN KEY(order_id) REFERENCES orders(id) ON DELETE CASCADE
);
`

type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository builds the order store. The users table must exist
// before Init is called.
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createOrdersTable); err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}
	return nil
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
INSERT INTO orders (id, user_id, total_price, created_at)
VALUES (?, ?, ?, ?)`,
		id,
		order.UserID,
		order.TotalPrice,
		order.CreatedAt.UTC(),
	); err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	for i, bootID := range order.BootIDs {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO order_boots (order_id, position, boot_id)
VALUES (?, ?, ?)`, id, i, bootID); err != nil {
			return "", fmt.Errorf("insert order boot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit order: %w", err)
	}
	order.ID = id
	return id, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, total_price, created_at
FROM orders
WHERE user_id=?
ORDER BY created_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	orders := []domain.Order{}
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.TotalPrice, &order.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	rows.Close()

	for i := range orders {
		ids, err := r.bootIDs(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].BootIDs = ids
	}
	return orders, nil
}

func (r *OrderRepository) bootIDs(ctx context.Context, orderID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT boot_id
FROM order_boots
WHERE order_id=?
ORDER BY position ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order boots: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order boot: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
