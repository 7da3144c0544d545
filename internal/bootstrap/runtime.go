// Package bootstrap wires shared runtime dependencies for the binaries.
package bootstrap

import (
	"fmt"
	"strings"

	"bucketlist/internal/cache"
	"bucketlist/internal/config"
	"bucketlist/internal/database"
	"bucketlist/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemoData bool
}

// InitRuntime connects to the database and Redis and optionally seeds demo
// data. The Redis client may be nil when the server is unreachable; callers
// are expected to degrade gracefully.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemoData {
		if strings.EqualFold(cfg.Env, "production") {
			return nil, nil, fmt.Errorf("refusing to seed demo data in production")
		}
		if err := seed.Run(db, seed.Options{}); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}
