package redis

import (
	"context"
	"log"

	"github.com/pinsim/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// Connect opens the Redis client used for the cached frame snapshots and
// the session-expiry schedule.
func Connect(cfg *config.Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Println("[REDIS] Connected")
	return client, nil
}
