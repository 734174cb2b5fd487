package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/travelwithsue/travelapi/config"
	"github.com/travelwithsue/travelapi/internal/domain"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
	lookupTTL  time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL, lookupTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
		lookupTTL:  lookupTTL,
	}
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

// GetLookup returns a cached external API response, or nil on a miss.
func (c *RedisCache) GetLookup(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, lookupKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (c *RedisCache) SetLookup(ctx context.Context, key string, payload []byte) error {
	return c.client.Set(ctx, lookupKey(key), payload, c.lookupTTL).Err()
}

// BlacklistToken invalidates a refresh token until its natural expiry.
func (c *RedisCache) BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	return c.client.Set(ctx, blacklistKey(tokenID), "revoked", ttl).Err()
}

func (c *RedisCache) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.client.Exists(ctx, blacklistKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func flightsKey() string {
	return "cache:flights"
}

func lookupKey(key string) string {
	return "cache:lookup:" + key
}

func blacklistKey(tokenID string) string {
	return "auth:blacklist:" + tokenID
}
