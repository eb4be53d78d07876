package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"opening_tree/internal/bootstrap"
)

// AdapterRedis connects the session store to a redis database selected by
// REDIS_DB, so several deployments can share one server.
type AdapterRedis struct {
	client *redis.Client
	cfg    *bootstrap.Config
	log    *zap.SugaredLogger
}

func NewAdapterRedis(cfg *bootstrap.Config, log *zap.SugaredLogger) *AdapterRedis {
	return &AdapterRedis{
		cfg: cfg,
		log: log,
	}
}

func (a *AdapterRedis) Init(ctx context.Context) error {
	timeout := dialTimeout(a.cfg)
	client := redis.NewClient(&redis.Options{
		Addr:        a.cfg.RedisUrl,
		Password:    a.cfg.RedisPassword,
		DB:          a.cfg.RedisDB,
		DialTimeout: timeout,
	})

	ctxPing, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(ctxPing).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("ping redis at %s (db %d): %w", a.cfg.RedisUrl, a.cfg.RedisDB, err)
	}
	a.client = client

	a.log.Infof("redis session store ready (%s, db %d)", a.cfg.RedisUrl, a.cfg.RedisDB)
	return nil
}

func (a *AdapterRedis) GetClient() *redis.Client {
	return a.client
}

func (a *AdapterRedis) Close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

const defaultDialTimeout = 5 * time.Second

func dialTimeout(cfg *bootstrap.Config) time.Duration {
	if cfg.StoreDialTimeout <= 0 {
		return defaultDialTimeout
	}
	return cfg.StoreDialTimeout
}
