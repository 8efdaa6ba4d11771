package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/room-booking/internal/config"
	"github.com/iliyamo/room-booking/internal/model"
)

// RoomCatalog resolves a room id to its capacity and nightly price.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id uint64) (model.Room, error)
}

// CachedCatalog wraps a RoomCatalog with a Redis read-through cache.
// Only successful lookups are cached; misses and Redis failures fall
// through to the wrapped catalog so a Redis outage never blocks admission.
type CachedCatalog struct {
	next RoomCatalog
	rdb  *redis.Client
	cfg  config.CatalogCacheConfig
	log  *slog.Logger
}

// NewCachedCatalog returns next unchanged when caching is disabled or no
// Redis client is available.
func NewCachedCatalog(next RoomCatalog, rdb *redis.Client, cfg config.CatalogCacheConfig, log *slog.Logger) RoomCatalog {
	if !cfg.Enabled || rdb == nil {
		return next
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedCatalog{next: next, rdb: rdb, cfg: cfg, log: log}
}

// cachedRoom is the Redis payload; prices are kept in cents.
type cachedRoom struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	MaxGuests  int    `json:"max_guests"`
	PriceCents int64  `json:"price_cents"`
}

func (c *CachedCatalog) key(id uint64) string {
	return fmt.Sprintf("%s:room:%d", c.cfg.Prefix, id)
}

// GetRoom serves from Redis when possible.
func (c *CachedCatalog) GetRoom(ctx context.Context, id uint64) (model.Room, error) {
	key := c.key(id)
	if bs, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var cr cachedRoom
		if jerr := json.Unmarshal(bs, &cr); jerr == nil {
			return model.Room{ID: cr.ID, Name: cr.Name, MaxGuests: cr.MaxGuests, Price: model.Money(cr.PriceCents)}, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("catalog cache read failed", "key", key, "error", err)
	}

	room, err := c.next.GetRoom(ctx, id)
	if err != nil {
		return model.Room{}, err
	}
	payload, err := json.Marshal(cachedRoom{ID: room.ID, Name: room.Name, MaxGuests: room.MaxGuests, PriceCents: room.Price.Cents()})
	if err == nil {
		ttl := c.cfg.TTL
		if ttl <= 0 {
			ttl = time.Minute
		}
		if serr := c.rdb.SetEx(ctx, key, payload, ttl).Err(); serr != nil {
			c.log.Warn("catalog cache write failed", "key", key, "error", serr)
		}
	}
	return room, nil
}
