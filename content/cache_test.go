package content

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGetter struct {
	calls atomic.Int32
	err   error
	data  map[Collection][]Record
}

func (g *countingGetter) GetCollection(_ context.Context, c Collection) ([]Record, error) {
	g.calls.Add(1)
	if g.err != nil {
		return nil, g.err
	}
	return g.data[c], nil
}

func TestCacheServesFromMemoryWithinTTL(t *testing.T) {
	src := &countingGetter{data: map[Collection][]Record{
		Blog: {{Collection: Blog, Slug: "a"}},
	}}
	c := NewCache(src, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		records, err := c.GetCollection(ctx, Blog)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	}
	assert.EqualValues(t, 1, src.calls.Load())

	// An empty collection is cached too.
	for i := 0; i < 2; i++ {
		records, err := c.GetCollection(ctx, TIL)
		require.NoError(t, err)
		assert.Empty(t, records)
	}
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestCacheReloadsAfterExpiryAndInvalidate(t *testing.T) {
	src := &countingGetter{data: map[Collection][]Record{}}
	c := NewCache(src, 20*time.Millisecond)
	ctx := context.Background()

	_, _ = c.GetCollection(ctx, Blog)
	time.Sleep(40 * time.Millisecond)
	_, _ = c.GetCollection(ctx, Blog)
	assert.EqualValues(t, 2, src.calls.Load())

	c = NewCache(src, time.Hour)
	_, _ = c.GetCollection(ctx, Blog)
	c.Invalidate()
	_, _ = c.GetCollection(ctx, Blog)
	assert.EqualValues(t, 4, src.calls.Load())
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	src := &countingGetter{err: errors.New("store down")}
	c := NewCache(src, time.Hour)
	ctx := context.Background()

	_, err := c.GetCollection(ctx, TIL)
	assert.ErrorIs(t, err, ErrCollectionUnavailable)

	src.err = nil
	_, err = c.GetCollection(ctx, TIL)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestCacheConcurrentReadersLoadOnce(t *testing.T) {
	src := &countingGetter{data: map[Collection][]Record{}}
	c := NewCache(src, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.GetCollection(context.Background(), Blog)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, src.calls.Load())
}
