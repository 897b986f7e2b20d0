package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"boot-shop/internal/domain"
	"boot-shop/internal/repository"
)

type RepositoryTestSuite struct {
	suite.Suite
	db     *sql.DB
	users  repository.UserRepository
	boots  repository.BootRepository
	orders repository.OrderRepository
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) SetupTest() {
	db, err := Open(filepath.Join(s.T().TempDir(), "data", "test.db"))
	s.Require().NoError(err)
	s.db = db

	s.users = NewUserRepository(db)
	s.boots = NewBootRepository(db)
	s.orders = NewOrderRepository(db)

	ctx := context.Background()
	s.Require().NoError(s.users.Init(ctx))
	s.Require().NoError(s.boots.Init(ctx))
	s.Require().NoError(s.orders.Init(ctx))
}

func (s *RepositoryTestSuite) TearDownTest() {
	s.db.Close()
}

func (s *RepositoryTestSuite) createUser(name string) *domain.User {
	user := &domain.User{Username: name, PasswordHash: "hash"}
	_, err := s.users.Create(context.Background(), user)
	s.Require().NoError(err)
	return user
}

func (s *RepositoryTestSuite) createBoot(attrs map[string]string, price *float64) *domain.Boot {
	boot := &domain.Boot{Attributes: attrs, Price: price}
	_, err := s.boots.Create(context.Background(), boot)
	s.Require().NoError(err)
	return boot
}

func price(v float64) *float64 { return &v }

func (s *RepositoryTestSuite) TestUserCreateAndLookup() {
	ctx := context.Background()
	user := s.createUser("alice")

	s.NotEmpty(user.ID)
	s.Equal(domain.RoleUser, user.Role)

	byName, err := s.users.GetByUsername(ctx, "alice")
	s.Require().NoError(err)
	s.Equal(user.ID, byName.ID)
	s.Equal("hash", byName.PasswordHash)

	byID, err := s.users.GetByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)
	s.Empty(byID.OrderIDs)
}

func (s *RepositoryTestSuite) TestUserDuplicateUsername() {
	s.createUser("alice")

	_, err := s.users.Create(context.Background(), &domain.User{Username: "alice", PasswordHash: "other"})
	s.ErrorIs(err, repository.ErrAlreadyExists)

	stored, err := s.users.GetByUsername(context.Background(), "alice")
	s.Require().NoError(err)
	s.Equal("hash", stored.PasswordHash)
}

func (s *RepositoryTestSuite) TestUserNotFound() {
	_, err := s.users.GetByID(context.Background(), "missing")
	s.ErrorIs(err, repository.ErrNotFound)

	_, err = s.users.GetByUsername(context.Background(), "nobody")
	s.ErrorIs(err, repository.ErrNotFound)

	s.ErrorIs(s.users.AppendOrder(context.Background(), "missing", "o1"), repository.ErrNotFound)
}

func (s *RepositoryTestSuite) TestUserAppendOrderIsASet() {
	ctx := context.Background()
	user := s.createUser("bob")

	s.Require().NoError(s.users.AppendOrder(ctx, user.ID, "o1"))
	s.Require().NoError(s.users.AppendOrder(ctx, user.ID, "o2"))
	s.Require().NoError(s.users.AppendOrder(ctx, user.ID, "o1"))

	stored, err := s.users.GetByID(ctx, user.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"o1", "o2"}, stored.OrderIDs)
}

func (s *RepositoryTestSuite) TestBootCRUD() {
	ctx := context.Background()
	boot := s.createBoot(map[string]string{"Верх": "кожа", "Сезонность": "зима"}, price(120))

	got, err := s.boots.Get(ctx, boot.ID)
	s.Require().NoError(err)
	s.Equal("кожа", got.Attributes["Верх"])
	s.Equal(120.0, got.PriceValue())

	updated, err := s.boots.Update(ctx, boot.ID, domain.BootPatch{
		Attributes: map[string]string{"Сезонность": "демисезон"},
		SetPrice:   true,
	})
	s.Require().NoError(err)
	s.Equal("кожа", updated.Attributes["Верх"])
	s.Equal("демисезон", updated.Attributes["Сезонность"])
	s.Nil(updated.Price)

	reloaded, err := s.boots.Get(ctx, boot.ID)
	s.Require().NoError(err)
	s.Nil(reloaded.Price)
	s.Equal("демисезон", reloaded.Attributes["Сезонность"])

	s.Require().NoError(s.boots.Delete(ctx, boot.ID))
	_, err = s.boots.Get(ctx, boot.ID)
	s.ErrorIs(err, repository.ErrNotFound)
	s.ErrorIs(s.boots.Delete(ctx, boot.ID), repository.ErrNotFound)

	_, err = s.boots.Update(ctx, boot.ID, domain.BootPatch{})
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *RepositoryTestSuite) TestBootListAndFindByIDs() {
	ctx := context.Background()
	a := s.createBoot(map[string]string{"name": "a"}, price(10))
	b := s.createBoot(map[string]string{"name": "b"}, nil)
	s.createBoot(map[string]string{"name": "c"}, price(30))

	all, err := s.boots.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("a", all[0].Attributes["name"])

	found, err := s.boots.FindByIDs(ctx, []string{b.ID, "unknown", a.ID, a.ID})
	s.Require().NoError(err)
	s.Len(found, 2)

	none, err := s.boots.FindByIDs(ctx, nil)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *RepositoryTestSuite) TestOrdersListedOldestFirst() {
	ctx := context.Background()
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	second := &domain.Order{UserID: alice.ID, BootIDs: []string{"b2", "b1"}, TotalPrice: 30, CreatedAt: base.Add(time.Minute)}
	first := &domain.Order{UserID: alice.ID, BootIDs: []string{"b1"}, TotalPrice: 10, CreatedAt: base}
	other := &domain.Order{UserID: bob.ID, BootIDs: []string{"b3"}, CreatedAt: base}
	for _, o := range []*domain.Order{second, first, other} {
		_, err := s.orders.Create(ctx, o)
		s.Require().NoError(err)
		s.NotEmpty(o.ID)
	}

	orders, err := s.orders.ListByUser(ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(orders, 2)
	s.Equal(first.ID, orders[0].ID)
	s.Equal([]string{"b1"}, orders[0].BootIDs)
	s.Equal(second.ID, orders[1].ID)
	s.Equal([]string{"b2", "b1"}, orders[1].BootIDs)
	s.Equal(30.0, orders[1].TotalPrice)
	s.True(base.Equal(orders[0].CreatedAt))

	empty, err := s.orders.ListByUser(ctx, "nobody")
	s.Require().NoError(err)
	s.NotNil(empty)
	s.Empty(empty)
}

func TestOpenCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	db, err := Open(filepath.Join(dir, "x.db"))
	require.NoError(t, err)
	defer db.Close()
	require.DirExists(t, dir)
}
