package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accountView struct {
	AccountNumber  string `json:"account_number"`
	BoxesRequested int    `json:"boxes_requested"`
}

func withTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAsideFetchesOnMissThenServesFromCache(t *testing.T) {
	withTestRedis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *accountView) func() error {
		return func() error {
			fetches++
			dest.AccountNumber = "IM-10001"
			dest.BoxesRequested = 5
			return nil
		}
	}

	var first accountView
	require.NoError(t, Aside(ctx, CustomerKey("IM-10001"), &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, 5, first.BoxesRequested)

	var second accountView
	require.NoError(t, Aside(ctx, CustomerKey("IM-10001"), &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read must come from cache")
	assert.Equal(t, 5, second.BoxesRequested)
}

func TestAsidePropagatesFetchError(t *testing.T) {
	withTestRedis(t)

	wantErr := errors.New("db down")
	var dest accountView
	err := Aside(context.Background(), "customer:IM-10002", &dest, time.Minute, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestInvalidateCustomerDropsKey(t *testing.T) {
	mr := withTestRedis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, CustomerKey("IM-10003"), accountView{AccountNumber: "IM-10003"}, time.Minute))
	require.True(t, mr.Exists(CustomerKey("IM-10003")))

	InvalidateCustomer(ctx, "IM-10003")
	assert.False(t, mr.Exists(CustomerKey("IM-10003")))
}

func TestHelpersAreNilSafe(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var dest accountView
	found, err := GetJSON(ctx, "customer:IM-10004", &dest)
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, SetJSON(ctx, "customer:IM-10004", dest, time.Minute))
	InvalidateCustomer(ctx, "IM-10004")

	// Aside degrades to a plain fetch.
	require.NoError(t, Aside(ctx, "customer:IM-10004", &dest, time.Minute, func() error {
		dest.BoxesRequested = 7
		return nil
	}))
	assert.Equal(t, 7, dest.BoxesRequested)
}
