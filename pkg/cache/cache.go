package cache

import (
	"context"
	"time"
)

// Store 带过期时间的键值缓存，值以 JSON 形式保存
type Store interface {
	// Get 命中时把值解码到 dest 并返回 true
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
