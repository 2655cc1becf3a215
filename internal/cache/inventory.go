package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:public:%d"
	PublishedListKey  = "posts:published"
	DenylistKeyPrefix = "denylist:%s"
)

const (
	// UserTTL bounds staleness of cached public profiles. Authorization
	// reads never go through the cache.
	UserTTL = 5 * time.Minute
	// PublishedListTTL is short so freshly published posts appear quickly.
	PublishedListTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func denylistKey(jti string) string {
	return fmt.Sprintf(DenylistKeyPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePublishedList(ctx context.Context) {
	Invalidate(ctx, PublishedListKey)
}

// DenylistToken records a revoked refresh token jti until its natural
// expiry. A nil Redis client makes this a no-op: logout then degrades to
// client-side token disposal.
func DenylistToken(ctx context.Context, jti string, until time.Duration) {
	if client == nil || jti == "" || until <= 0 {
		return
	}
	client.Set(ctx, denylistKey(jti), "1", until)
}

// IsTokenDenylisted reports whether the refresh token jti was revoked.
func IsTokenDenylisted(ctx context.Context, jti string) bool {
	if client == nil || jti == "" {
		return false
	}
	n, err := client.Exists(ctx, denylistKey(jti)).Result()
	return err == nil && n > 0
}
