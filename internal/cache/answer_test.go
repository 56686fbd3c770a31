package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.data[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) DeletePrefix(_ context.Context, prefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func TestKey_NormalisesQuestion(t *testing.T) {
	a := Key("en", "What is  Riyalak?")
	b := Key("EN", "  what is riyalak? ")
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, KeyPrefix))
	assert.Len(t, strings.TrimPrefix(a, KeyPrefix), 32)

	assert.NotEqual(t, a, Key("ar", "What is Riyalak?"))
}

func TestAnswerCache_SetGet(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, nil)
	ctx := context.Background()

	_, ok := c.Get(ctx, "en", "hello")
	assert.False(t, ok)

	c.Set(ctx, "en", "hello", "hi there")
	got, ok := c.Get(ctx, "en", "Hello")
	require.True(t, ok)
	assert.Equal(t, "hi there", got)
	assert.Equal(t, time.Minute, store.ttls[Key("en", "hello")])
}

func TestAnswerCache_BackendErrorsAreMisses(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	c := New(store, time.Minute, nil)

	calls := 0
	got, hit, err := c.GetOrCompute(context.Background(), "en", "q", func() (string, error) {
		calls++
		return "answer", nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "answer", got)
	assert.Equal(t, 1, calls)
}

func TestAnswerCache_GetOrCompute(t *testing.T) {
	c := New(newMemStore(), 0, nil)
	ctx := context.Background()

	got, hit, err := c.GetOrCompute(ctx, "ar", "تحويل", func() (string, error) { return "نعم", nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "نعم", got)

	got, hit, err = c.GetOrCompute(ctx, "ar", "تحويل", func() (string, error) {
		t.Fatal("compute called on a cached answer")
		return "", nil
	})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "نعم", got)
}

func TestAnswerCache_ErrorsAreNotCached(t *testing.T) {
	store := newMemStore()
	c := New(store, 0, nil)
	boom := errors.New("model down")

	_, _, err := c.GetOrCompute(context.Background(), "en", "q", func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.data)
}

func TestAnswerCache_DeduplicatesConcurrentCompute(t *testing.T) {
	c := New(newMemStore(), 0, nil)
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _, err := c.GetOrCompute(context.Background(), "en", "same", func() (string, error) {
				calls.Add(1)
				<-release
				return "once", nil
			})
			assert.NoError(t, err)
			assert.Equal(t, "once", got)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	// Late arrivals may hit the cache; none may recompute.
	assert.Equal(t, int32(1), calls.Load())
}

func TestAnswerCache_Invalidate(t *testing.T) {
	store := newMemStore()
	store.data["other:key"] = "keep"
	c := New(store, 0, nil)
	ctx := context.Background()
	c.Set(ctx, "en", "a", "1")
	c.Set(ctx, "en", "b", "2")

	require.NoError(t, c.Invalidate(ctx))
	assert.Equal(t, map[string]string{"other:key": "keep"}, store.data)
}
