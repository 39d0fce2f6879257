package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/supplydash/inventory-engine/internal/config"
	"github.com/supplydash/inventory-engine/internal/domain"
)

const (
	kpiKey        = "portfolio:kpis"
	defaultKPITTL = time.Minute
)

// KPICache caches the portfolio KPI read model between roll-forward
// runs. Runs invalidate it.
type KPICache interface {
	Get(ctx context.Context) (*domain.PortfolioKPIs, bool, error)
	Set(ctx context.Context, kpis *domain.PortfolioKPIs) error
	Invalidate(ctx context.Context) error
}

type redisKPICache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopKPICache struct{}

func NewKPICache(cfg config.CacheConfig) (KPICache, error) {
	if !cfg.Enabled {
		return &noopKPICache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.KPITTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultKPITTL
	}

	return &redisKPICache{client: client, ttl: ttl}, nil
}

func NewNoopKPICache() KPICache {
	return &noopKPICache{}
}

func (c *redisKPICache) Get(ctx context.Context) (*domain.PortfolioKPIs, bool, error) {
	payload, err := c.client.Get(ctx, kpiKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var kpis domain.PortfolioKPIs
	if err := json.Unmarshal(payload, &kpis); err != nil {
		return nil, false, fmt.Errorf("decode kpi cache: %w", err)
	}

	return &kpis, true, nil
}

func (c *redisKPICache) Set(ctx context.Context, kpis *domain.PortfolioKPIs) error {
	payload, err := json.Marshal(kpis)
	if err != nil {
		return fmt.Errorf("encode kpi cache: %w", err)
	}

	if err := c.client.Set(ctx, kpiKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisKPICache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, kpiKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (n *noopKPICache) Get(ctx context.Context) (*domain.PortfolioKPIs, bool, error) {
	return nil, false, nil
}

func (n *noopKPICache) Set(ctx context.Context, kpis *domain.PortfolioKPIs) error {
	return nil
}

func (n *noopKPICache) Invalidate(ctx context.Context) error {
	return nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}
