package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"boot-shop/internal/domain"
	"boot-shop/internal/repository"
)

var errStore = errors.New("store unavailable")

type memUsers struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	seq       int
	appendErr error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*domain.User{}}
}

func (m *memUsers) Init(context.Context) error { return nil }

func (m *memUsers) Create(_ context.Context, u *domain.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Username == u.Username {
			return "", repository.ErrAlreadyExists
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("u%d", m.seq)
	stored := *u
	m.byID[u.ID] = &stored
	return u.ID, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *memUsers) AppendOrder(_ context.Context, userID, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	u, ok := m.byID[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.OrderIDs = append(u.OrderIDs, orderID)
	return nil
}

type memBoots struct {
	mu      sync.Mutex
	byID    map[string]domain.Boot
	seq     int
	findErr error
}

func newMemBoots() *memBoots {
	return &memBoots{byID: map[string]domain.Boot{}}
}

func (m *memBoots) add(attrs map[string]string, price *float64) domain.Boot {
	b := &domain.Boot{Attributes: attrs, Price: price}
	_, _ = m.Create(context.Background(), b)
	return *b
}

func (m *memBoots) Init(context.Context) error { return nil }

func (m *memBoots) Create(_ context.Context, b *domain.Boot) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	b.ID = fmt.Sprintf("b%03d", m.seq)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.byID[b.ID] = *b
	return b.ID, nil
}

func (m *memBoots) Get(_ context.Context, id string) (*domain.Boot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (m *memBoots) List(context.Context) ([]domain.Boot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Boot, 0, len(m.byID))
	for _, b := range m.byID {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memBoots) FindByIDs(_ context.Context, ids []string) ([]domain.Boot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []domain.Boot
	seen := map[string]bool{}
	// reverse order so callers cannot rely on repository ordering
	for i := len(ids) - 1; i >= 0; i-- {
		if b, ok := m.byID[ids[i]]; ok && !seen[b.ID] {
			seen[b.ID] = true
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBoots) Update(_ context.Context, id string, patch domain.BootPatch) (*domain.Boot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&b)
	m.byID[id] = b
	return &b, nil
}

func (m *memBoots) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memOrders struct {
	mu        sync.Mutex
	orders    []domain.Order
	seq       int
	createErr error
}

func (m *memOrders) Init(context.Context) error { return nil }

func (m *memOrders) Create(_ context.Context, o *domain.Order) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return "", m.createErr
	}
	m.seq++
	o.ID = fmt.Sprintf("o%d", m.seq)
	stored := *o
	stored.Boots = nil
	stored.BootIDs = append([]string(nil), o.BootIDs...)
	m.orders = append(m.orders, stored)
	return o.ID, nil
}

func (m *memOrders) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memOrders) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type stubIssuer struct {
	subject string
	role    domain.Role
}

func (s *stubIssuer) Issue(subjectID string, role domain.Role) (string, error) {
	s.subject = subjectID
	s.role = role
	return "token-for-" + subjectID, nil
}

func price(v float64) *float64 { return &v }
