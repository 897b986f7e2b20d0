package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"boot-shop/internal/domain"
	"boot-shop/internal/repository"
)

// OrderService places and lists orders for authenticated users.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID string, bootIDs []string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
}

type orderService struct {
	users  repository.UserRepository
	boots  repository.BootRepository
	orders repository.OrderRepository
	logger *logrus.Logger
	now    func() time.Time
}

func NewOrderService(users repository.UserRepository, boots repository.BootRepository, orders repository.OrderRepository, logger *logrus.Logger) OrderService {
	if logger == nil {
		logger = logrus.New()
	}
	return &orderService{
		users:  users,
		boots:  boots,
		orders: orders,
		logger: logger,
		now:    time.Now,
	}
}

// PlaceOrder writes the order and then appends it to the user's order set.
// The two writes are not atomic: if the second fails the order exists
// without being referenced by its user.
func (s *orderService) PlaceOrder(ctx context.Context, userID string, bootIDs []string) (*domain.Order, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, persistenceError("Failed to create order", err)
	}

	boots, err := s.resolve(ctx, bootIDs)
	if err != nil {
		return nil, persistenceError("Failed to create order", err)
	}
	if len(boots) == 0 {
		return nil, ErrNoValidItems
	}

	order := &domain.Order{
		UserID:     user.ID,
		BootIDs:    make([]string, len(boots)),
		TotalPrice: domain.TotalOf(boots),
		CreatedAt:  s.now().UTC(),
		Boots:      boots,
	}
	for i, b := range boots {
		order.BootIDs[i] = b.ID
	}

	if _, err := s.orders.Create(ctx, order); err != nil {
		return nil, persistenceError("Failed to create order", err)
	}

	if err := s.users.AppendOrder(ctx, user.ID, order.ID); err != nil {
		s.logger.WithFields(logrus.Fields{
			"order_id": order.ID,
			"user_id":  user.ID,
		}).Warnf("order stored but not linked to user: %v", err)
		return nil, persistenceError("Failed to create order", err)
	}

	return order, nil
}

// resolve returns the existing boots among ids, deduplicated, in order of
// first appearance.
func (s *orderService) resolve(ctx context.Context, ids []string) ([]domain.Boot, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, nil
	}

	found, err := s.boots.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Boot, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}

	boots := make([]domain.Boot, 0, len(found))
	for _, id := range unique {
		if b, ok := byID[id]; ok {
			boots = append(boots, b)
		}
	}
	return boots, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, persistenceError("Failed to fetch orders", err)
	}
	if len(orders) == 0 {
		return []domain.Order{}, nil
	}

	var ids []string
	seen := map[string]struct{}{}
	for _, o := range orders {
		for _, id := range o.BootIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	found, err := s.boots.FindByIDs(ctx, ids)
	if err != nil {
		return nil, persistenceError("Failed to fetch orders", err)
	}
	byID := make(map[string]domain.Boot, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}

	for i := range orders {
		orders[i].Boots = make([]domain.Boot, 0, len(orders[i].BootIDs))
		for _, id := range orders[i].BootIDs {
			if b, ok := byID[id]; ok {
				orders[i].Boots = append(orders[i].Boots, b)
			}
		}
	}
	return orders, nil
}
