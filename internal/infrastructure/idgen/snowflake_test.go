package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_Next(t *testing.T) {
	g, err := NewSnowflake(1)
	require.NoError(t, err)

	n := g.Next("ORD")
	assert.True(t, strings.HasPrefix(n, "ORD-"))
	assert.Equal(t, strings.ToUpper(n), n)
	assert.NotContains(t, g.Next(""), "-")
}

func TestSnowflake_UniqueAcrossGoroutines(t *testing.T) {
	g, err := NewSnowflake(7)
	require.NoError(t, err)

	var mu sync.Mutex
	seen := map[string]struct{}{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				n := g.Next("SN")
				mu.Lock()
				seen[n] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 4000)
}

func TestNewSnowflake_InvalidNode(t *testing.T) {
	_, err := NewSnowflake(5000)
	assert.Error(t, err)
	_, err = NewSnowflake(-1)
	assert.Error(t, err)
}
