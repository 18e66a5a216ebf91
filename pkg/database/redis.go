package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"review-core/pkg/logger"
)

// ConnectRedis opens and pings a Redis connection.
func ConnectRedis(addr string, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}

	logger.Info("redis connected")
	return rdb, nil
}
