package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	CustomerKeyPrefix = "customer:%s"
)

const (
	CustomerTTL = 5 * time.Minute
)

// CustomerKey builds the cache key for a customer account lookup.
func CustomerKey(accountNumber string) string {
	return fmt.Sprintf(CustomerKeyPrefix, accountNumber)
}

// Invalidate removes a single key, best-effort.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateCustomer drops the cached account projection after mutations
// so lookups never serve a stale boxes_requested count.
func InvalidateCustomer(ctx context.Context, accountNumber string) {
	Invalidate(ctx, CustomerKey(accountNumber))
}
