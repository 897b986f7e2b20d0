// Package rediscache decorates a BootRepository with a cache-aside layer in Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"boot-shop/internal/domain"
	"boot-shop/internal/repository"
)

const keyPrefix = "bootshop:boot:"

// BootRepository serves single-boot lookups from Redis and falls back to the
// wrapped repository on a miss. Writes go to the wrapped repository first;
// an update then overwrites the cached entry with the stored boot and a
// delete drops it. Cache failures are logged and never fail a call.
type BootRepository struct {
	repository.BootRepository
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *logrus.Logger
}

func NewBootRepository(next repository.BootRepository, rdb redis.Cmdable, ttl time.Duration, logger *logrus.Logger) repository.BootRepository {
	if logger == nil {
		logger = logrus.New()
	}
	return &BootRepository{BootRepository: next, rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(id string) string {
	return keyPrefix + id
}

type cachedBoot struct {
	ID         string            `json:"id"`
	Attributes map[string]string `json:"attributes"`
	Price      *float64          `json:"price,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func encodeBoot(b domain.Boot) ([]byte, error) {
	return json.Marshal(cachedBoot{
		ID:         b.ID,
		Attributes: b.Attributes,
		Price:      b.Price,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	})
}

func decodeBoot(raw []byte) (*domain.Boot, error) {
	var c cachedBoot
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if c.Attributes == nil {
		c.Attributes = map[string]string{}
	}
	return &domain.Boot{
		ID:         c.ID,
		Attributes: c.Attributes,
		Price:      c.Price,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}, nil
}

func (r *BootRepository) Get(ctx context.Context, id string) (*domain.Boot, error) {
	raw, err := r.rdb.Get(ctx, cacheKey(id)).Bytes()
	switch {
	case err == nil:
		if boot, decodeErr := decodeBoot(raw); decodeErr == nil {
			return boot, nil
		}
		r.logger.Warnf("discarding undecodable cache entry for boot %s", id)
	case !errors.Is(err, redis.Nil):
		r.logger.Warnf("boot cache get %s: %v", id, err)
	}

	boot, err := r.BootRepository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, *boot)
	return boot, nil
}

func (r *BootRepository) Update(ctx context.Context, id string, patch domain.BootPatch) (*domain.Boot, error) {
	boot, err := r.BootRepository.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	r.store(ctx, *boot)
	return boot, nil
}

func (r *BootRepository) Delete(ctx context.Context, id string) error {
	if err := r.BootRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id)
	return nil
}

func (r *BootRepository) store(ctx context.Context, boot domain.Boot) {
	raw, err := encodeBoot(boot)
	if err != nil {
		r.logger.Warnf("encode boot %s for cache: %v", boot.ID, err)
		return
	}
	if err := r.rdb.Set(ctx, cacheKey(boot.ID), raw, r.ttl).Err(); err != nil {
		r.logger.Warnf("boot cache set %s: %v", boot.ID, err)
	}
}

func (r *BootRepository) evict(ctx context.Context, id string) {
	if err := r.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		r.logger.Warnf("boot cache evict %s: %v", id, err)
	}
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, rdb *redis.Client) error {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
