package preferences

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/redis"
)

// Redis stores preference blobs without expiry.
type Redis struct {
	client *redis.Client
}

// NewRedis returns a Backend over client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, key)
	if redis.IsNilError(err) {
		return nil, ErrNotFound
	}
	return v, err
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, 0)
}

func (r *Redis) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Del(ctx, key)
	return n > 0, err
}

func (r *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	return r.client.ScanKeys(ctx, prefix)
}
