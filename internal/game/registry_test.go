package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	r := NewRegistry(func(id int64) *Session {
		return NewSession(id, DefaultRules(), WithSource(identitySource{}))
	})

	_, ok := r.Get(1)
	assert.False(t, ok)

	s, created := r.GetOrCreate(1)
	require.True(t, created)
	assert.Equal(t, int64(1), s.ID())

	again, created := r.GetOrCreate(1)
	assert.False(t, created)
	assert.Same(t, s, again)

	r.GetOrCreate(-5)
	assert.Equal(t, []int64{-5, 1}, r.IDs())
	assert.Equal(t, 2, r.Count())

	assert.True(t, r.Remove(1))
	assert.False(t, r.Remove(1))
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_ConcurrentCreateYieldsOneSession(t *testing.T) {
	var mu sync.Mutex
	built := 0
	r := NewRegistry(func(id int64) *Session {
		mu.Lock()
		built++
		mu.Unlock()
		return NewSession(id, DefaultRules())
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.GetOrCreate(42)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, built)
	assert.Equal(t, 1, r.Count())
}
