package idgen

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterIsSequential(t *testing.T) {
	c := NewCounter()
	assert.Equal(t, "settlement-1", c.NewID("settlement"))
	assert.Equal(t, "receipt-2", c.NewID("receipt"))
	assert.Equal(t, "settlement-3", c.NewID("settlement"))
}

func TestCounterConcurrentUnique(t *testing.T) {
	c := NewCounter()
	var (
		mu   sync.Mutex
		seen = map[string]bool{}
		wg   sync.WaitGroup
	)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := c.NewID("x")
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
}

func TestFromName(t *testing.T) {
	src, err := FromName("uuid")
	require.NoError(t, err)
	_, err = uuid.Parse(src.NewID("outing"))
	assert.NoError(t, err)

	src, err = FromName("counter")
	require.NoError(t, err)
	assert.Equal(t, "outing-1", src.NewID("outing"))

	_, err = FromName("snowflake")
	assert.Error(t, err)
}
