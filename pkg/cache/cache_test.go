package cache_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/treeverse/metastore/pkg/cache"
)

func TestCacheRace(t *testing.T) {
	const (
		parallelism = 25
		n           = 200
		worldSize   = 10
		cacheSize   = 7
	)

	c, err := cache.NewCache(cacheSize, time.Hour*12, cache.NewJitterFn(time.Millisecond))
	require.NoError(t, err)

	start := make(chan struct{})
	wg := sync.WaitGroup{}

	for i := 0; i < parallelism; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			for j := 0; j < n; j++ {
				k := j % worldSize
				kk, err := c.GetOrSet(k, func() (interface{}, error) {
					return k * k, nil
				})
				if errors.Is(err, cache.ErrCacheItemNotFound) {
					// evicted while another caller was setting it
					continue
				}
				if err != nil {
					t.Error(err)
					return
				}
				if kk.(int) != k*k {
					t.Errorf("[%d] got %d^2=%d, expected %d", i, k, kk, k*k)
				}
			}
		}(i)
	}
	close(start)
	wg.Wait()
}

func TestCacheGetOrSet(t *testing.T) {
	c, err := cache.NewCacheByParams(&cache.Params{Name: "owners", Size: 10, Expiry: time.Hour})
	require.NoError(t, err)
	require.Equal(t, "owners", c.Name())

	calls := 0
	setFn := func() (interface{}, error) {
		calls++
		return "value", nil
	}
	for i := 0; i < 3; i++ {
		v, err := c.GetOrSet("key", setFn)
		require.NoError(t, err)
		require.Equal(t, "value", v)
	}
	require.Equal(t, 1, calls)

	c.Remove("key")
	_, err = c.GetOrSet("key", setFn)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestCacheSetError(t *testing.T) {
	c, err := cache.NewCache(10, time.Hour, nil)
	require.NoError(t, err)

	errFetch := errors.New("fetch failed")
	_, err = c.GetOrSet("key", func() (interface{}, error) { return nil, errFetch })
	require.ErrorIs(t, err, errFetch)

	v, err := c.GetOrSet("key", func() (interface{}, error) { return 1, nil })
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestCacheExpiry(t *testing.T) {
	c, err := cache.NewCache(10, 10*time.Millisecond, cache.NoJitter)
	require.NoError(t, err)

	calls := 0
	setFn := func() (interface{}, error) {
		calls++
		return calls, nil
	}
	_, err = c.GetOrSet("key", setFn)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	v, err := c.GetOrSet("key", setFn)
	require.NoError(t, err)
	require.Equal(t, 2, v)
}

func TestCacheNoExpiry(t *testing.T) {
	c, err := cache.NewCache(10, 0, cache.NoJitter)
	require.NoError(t, err)

	calls := 0
	setFn := func() (interface{}, error) {
		calls++
		return calls, nil
	}
	_, err = c.GetOrSet("key", setFn)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	v, err := c.GetOrSet("key", setFn)
	require.NoError(t, err)
	require.Equal(t, 1, v)
	require.Equal(t, 1, calls)
}

func TestNewCacheInvalidSize(t *testing.T) {
	_, err := cache.NewCache(0, time.Hour, nil)
	require.ErrorIs(t, err, cache.ErrInvalidSize)
}

func TestNoCache(t *testing.T) {
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := cache.NoCache.GetOrSet("key", func() (interface{}, error) {
			calls++
			return nil, nil
		})
		require.NoError(t, err)
	}
	require.Equal(t, 2, calls)
}
