// Package store opens the configured persistence backend and hands out its
// repositories.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"boot-shop/internal/config"
	"boot-shop/internal/repository"
	"boot-shop/internal/repository/mongodb"
	"boot-shop/internal/repository/rediscache"
	"boot-shop/internal/repository/sqlite"
)

// Store bundles the repositories of one backend.
type Store struct {
	Users  repository.UserRepository
	Boots  repository.BootRepository
	Orders repository.OrderRepository

	closers []func() error
}

// Open connects to the backend selected by cfg.Database.Driver, wraps the
// boot repository with Redis when cfg.Cache.RedisAddr is set and creates
// the schema.
func Open(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*Store, error) {
	s := &Store{}

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		s.Users = sqlite.NewUserRepository(db)
		s.Boots = sqlite.NewBootRepository(db)
		s.Orders = sqlite.NewOrderRepository(db)
		logger.Infof("using sqlite database %s", cfg.Database.Path)

	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, cfg.Database.MongoURI, cfg.Database.MongoDatabase)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() error {
			return client.Disconnect(context.Background())
		})
		s.Users = mongodb.NewUserRepository(db)
		s.Boots = mongodb.NewBootRepository(db)
		s.Orders = mongodb.NewOrderRepository(db)
		logger.Infof("using mongo database %s", cfg.Database.MongoDatabase)

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	if cfg.Cache.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		if err := rediscache.Ping(ctx, rdb); err != nil {
			_ = rdb.Close()
			_ = s.Close()
			return nil, err
		}
		s.closers = append(s.closers, rdb.Close)
		s.Boots = rediscache.NewBootRepository(s.Boots, rdb, cfg.CacheTTL(), logger)
		logger.Infof("caching boots in redis at %s", cfg.Cache.RedisAddr)
	}

	if err := s.init(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if err := s.Users.Init(ctx); err != nil {
		return fmt.Errorf("init user repository: %w", err)
	}
	if err := s.Boots.Init(ctx); err != nil {
		return fmt.Errorf("init boot repository: %w", err)
	}
	if err := s.Orders.Init(ctx); err != nil {
		return fmt.Errorf("init order repository: %w", err)
	}
	return nil
}

// Close releases connections in reverse order of acquisition.
func (s *Store) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
