package cache

import (
	"context"
	"time"
)

// BytesCache is the minimal key/value contract used for sessions and
// active-deliveries snapshots. A missing key is (nil, false, nil).
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
