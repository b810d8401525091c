package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClients keeps subscriptions on their own connection pool so that
// long-lived SUBSCRIBE calls never starve token lookups and publishes.
type RedisClients struct {
	Main   *redis.Client
	PubSub *redis.Client
}

func NewRedisClients(ctx context.Context, redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mainClient := redis.NewClient(opt)
	if err := mainClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis (main): %w", err)
	}

	pubsubOpt := *opt
	pubsubClient := redis.NewClient(&pubsubOpt)
	if err := pubsubClient.Ping(ctx).Err(); err != nil {
		mainClient.Close()
		return nil, fmt.Errorf("failed to ping Redis (pubsub): %w", err)
	}

	return &RedisClients{
		Main:   mainClient,
		PubSub: pubsubClient,
	}, nil
}

func (r *RedisClients) Close() {
	r.Main.Close()
	r.PubSub.Close()
}
