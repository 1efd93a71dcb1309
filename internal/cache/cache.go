package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache holds reference rows read through the repositories
type Cache interface {
	// Get reports false on a miss or when caching is disabled
	Get(ctx context.Context, key string) (interface{}, bool)
	// Set stores value; an expiration of 0 uses the cache default
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
}

const (
	PrefixProduct      = "product:v1:"
	PrefixSalesPerson  = "salesperson:v1:"
	PrefixTaxRate      = "taxrate:v1:"
	PrefixDiscountRate = "discountrate:v1:"
)

// ExpiryDefaultInMemory is used for reference rows, which change only through migrations
const ExpiryDefaultInMemory = 10 * time.Minute

// GenerateKey joins prefix and params with colons
func GenerateKey(prefix string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range params {
		b.WriteByte(':')
		fmt.Fprint(&b, p)
	}
	return b.String()
}

// Load returns the cached T under key, calling load and caching its result on a miss.
// A cached value of another type is treated as a miss. Errors are not cached.
func Load[T any](ctx context.Context, c Cache, key string, load func() (T, error)) (T, error) {
	if v, ok := c.Get(ctx, key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	t, err := load()
	if err != nil {
		return t, err
	}
	c.Set(ctx, key, t, ExpiryDefaultInMemory)
	return t, nil
}
