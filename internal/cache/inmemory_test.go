package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/flexprice/notebilling/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(config.GetDefaultConfig())

	key := GenerateKey(PrefixProduct, 7)
	assert.Equal(t, "product:v1::7", key)

	c.Set(ctx, key, "shampoo", ExpiryDefaultInMemory)
	v, ok := c.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, "shampoo", v)

	c.Set(ctx, GenerateKey(PrefixTaxRate, 1), "10%", ExpiryDefaultInMemory)
	c.DeleteByPrefix(ctx, PrefixProduct)
	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
	_, ok = c.Get(ctx, GenerateKey(PrefixTaxRate, 1))
	assert.True(t, ok)
}

func TestInMemoryCache_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := config.GetDefaultConfig()
	cfg.Cache.Enabled = false
	c := NewInMemoryCache(cfg)

	c.Set(ctx, "k", 1, 0)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(config.GetDefaultConfig())

	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}

	v, err := Load(ctx, c, "answer", load)
	assert.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = Load(ctx, c, "answer", load)
	assert.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	_, err = Load(ctx, c, "broken", func() (int, error) { return 0, errors.New("db down") })
	assert.Error(t, err)
	_, ok := c.Get(ctx, "broken")
	assert.False(t, ok)
}
