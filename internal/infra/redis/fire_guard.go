package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// FireGuard marks a day as fired with SET NX so several bot instances sharing
// one Redis fire the daily transition once between them.
type FireGuard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewFireGuard(client *redis.Client, prefix string, ttl time.Duration) *FireGuard {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &FireGuard{client: client, prefix: prefix, ttl: ttl}
}

func (g *FireGuard) Claim(ctx context.Context, day string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(day), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "setnx fire marker")
	}
	return ok, nil
}

func (g *FireGuard) Release(ctx context.Context, day string) error {
	return errors.Wrap(g.client.Del(ctx, g.key(day)).Err(), "delete fire marker")
}

func (g *FireGuard) key(day string) string {
	return g.prefix + "fired:" + day
}
