package statistics

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/MarketFox/internal/pkg/cache"
)

type countingSource struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *countingSource) Collect(now time.Time) (Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return Data{TotalUsers: 3, TotalOrders: 7, UpdatedAt: now}, s.err
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memCache) GetJSON(key string, dst interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dst)
}

func (m *memCache) SetJSON(key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func TestGetCollectsOnceUnderConcurrency(t *testing.T) {
	src := &countingSource{}
	svc := NewService(src, &memCache{data: map[string][]byte{}})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := svc.Get(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, int64(7), d.TotalOrders)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, src.calls)
}

func TestGetWithoutCache(t *testing.T) {
	src := &countingSource{}
	svc := NewService(src, nil)
	_, err := svc.Get(context.Background())
	require.NoError(t, err)
	_, err = svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestGetPropagatesSourceError(t *testing.T) {
	svc := NewService(&countingSource{err: errors.New("db down")}, nil)
	_, err := svc.Get(context.Background())
	assert.Error(t, err)
}
