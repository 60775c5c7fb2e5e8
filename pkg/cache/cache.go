// Package cache keeps partitioned schedule archives in Redis so repeated schedule views
// do not hit the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/calendar"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/config"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

const archivePrefix = "roster:archive:"

// NewClient connects to Redis and pings it. It returns nil, nil when no address is
// configured.
func NewClient(cfg config.RedisConfig, logger *zap.Logger) (*goredis.Client, error) {
	if cfg.Addr == "" {
		logger.Info("redis disabled, archive cache off")
		return nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))
	return rdb, nil
}

// ArchiveCache stores one archive per site and week. Each site is a Redis hash keyed
// by the week anchor the archive was partitioned around, so invalidating a site is a
// single delete. Every invalidation also bumps a per-site version: a reader passes the
// version it saw before loading, and Set drops the archive once that version is
// outdated. A nil *ArchiveCache is a cache that always misses.
type ArchiveCache struct {
	rdb    *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewArchiveCache wraps rdb. A nil client yields a nil cache.
func NewArchiveCache(rdb *goredis.Client, ttl time.Duration, logger *zap.Logger) *ArchiveCache {
	if rdb == nil {
		return nil
	}
	return &ArchiveCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Get returns the cached archive of the site for the week containing today.
func (c *ArchiveCache) Get(ctx context.Context, siteID string, today time.Time) (models.Archive, bool, error) {
	if c == nil {
		return models.Archive{}, false, nil
	}
	raw, err := c.rdb.HGet(ctx, archivePrefix+siteID, field(today)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return models.Archive{}, false, nil
	}
	if err != nil {
		return models.Archive{}, false, fmt.Errorf("read cached archive of %q: %w", siteID, err)
	}

	var a models.Archive
	if err := json.Unmarshal(raw, &a); err != nil {
		c.logger.Warn("discarding unreadable cached archive", zap.String("site", siteID), zap.Error(err))
		return models.Archive{}, false, nil
	}
	if a.Previous == nil {
		a.Previous = []models.ScheduleDocument{}
	}
	return a, true, nil
}

// Version returns the site's invalidation counter. Read it before loading the archive
// that will be handed to Set.
func (c *ArchiveCache) Version(ctx context.Context, siteID string) (int64, error) {
	if c == nil {
		return 0, nil
	}
	v, err := readVersion(ctx, c.rdb, siteID)
	if err != nil {
		return 0, fmt.Errorf("read archive version of %q: %w", siteID, err)
	}
	return v, nil
}

// Set caches the archive of the site for the week containing today, unless the site
// was invalidated since version was read.
func (c *ArchiveCache) Set(ctx context.Context, siteID string, today time.Time, version int64, a models.Archive) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode archive of %q: %w", siteID, err)
	}
	key := archivePrefix + siteID
	err = c.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := readVersion(ctx, tx, siteID)
		if err != nil {
			return err
		}
		if current != version {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, key, field(today), raw)
			pipe.Expire(ctx, key, c.ttl)
			return nil
		})
		return err
	}, versionKey(siteID))
	if errors.Is(err, errStale) || errors.Is(err, goredis.TxFailedErr) {
		c.logger.Debug("skipping outdated archive", zap.String("site", siteID), zap.Int64("version", version))
		return nil
	}
	if err != nil {
		return fmt.Errorf("cache archive of %q: %w", siteID, err)
	}
	return nil
}

// Invalidate drops every cached archive of the site and bumps its version.
func (c *ArchiveCache) Invalidate(ctx context.Context, siteID string) error {
	if c == nil {
		return nil
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(siteID))
		pipe.Del(ctx, archivePrefix+siteID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate archive of %q: %w", siteID, err)
	}
	return nil
}

var errStale = errors.New("archive version changed")

// the version key never expires, a reset could let an old reader match again
func versionKey(siteID string) string {
	return archivePrefix + siteID + ":version"
}

type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

func readVersion(ctx context.Context, cmd getter, siteID string) (int64, error) {
	v, err := cmd.Get(ctx, versionKey(siteID)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return v, err
}

func field(today time.Time) string {
	return calendar.Format(calendar.WeekAnchor(today))
}
