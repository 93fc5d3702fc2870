package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pinsim/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// StartCleanupWorker starts a background worker that expires inactive
// sessions using the Redis sorted-set schedule. TouchSession pushes the
// score forward on every input, so only truly idle sessions come due.
func StartCleanupWorker(ctx context.Context, rdb *redis.Client, cfg *config.Config) {
	if rdb == nil || cfg == nil {
		log.Println("[CLEANUP] Redis or config missing; cleanup worker not started")
		return
	}

	log.Println("[CLEANUP] Cleanup worker started")
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.CleanupPollSeconds) * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[CLEANUP] Cleanup worker stopping")
				return
			case <-ticker.C:
				now := time.Now().Unix()

				members, err := rdb.ZRangeByScore(ctx, "session_expiry", &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now)}).Result()
				if err != nil {
					log.Printf("[CLEANUP] Failed to fetch due sessions: %v", err)
					continue
				}
				for _, token := range members {
					// Attempt to remove (race-safe across nodes)
					if removed, _ := rdb.ZRem(ctx, "session_expiry", token).Result(); removed > 0 {
						log.Printf("[CLEANUP] Expiring idle session %s", token)
						if Manager != nil {
							if err := Manager.StopSession(token, StatusExpired); err != nil {
								log.Printf("[CLEANUP] Expire failed for %s: %v", token, err)
							}
						}
					}
				}
			}
		}
	}()
}
