package rewrite

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyPoolEmpty(t *testing.T) {
	_, err := NewKeyPool(nil)
	require.Error(t, err)
}

func TestKeyPoolRoundRobin(t *testing.T) {
	pool, err := NewKeyPool([]Credential{
		{Secret: "k1", Label: "one"},
		{Secret: "k2", Label: "two"},
		{Secret: "k3", Label: "three"},
	})
	require.NoError(t, err)

	got := []string{
		pool.Next().Secret, pool.Next().Secret, pool.Next().Secret,
		pool.Next().Secret, pool.Next().Secret,
	}
	assert.Equal(t, []string{"k1", "k2", "k3", "k1", "k2"}, got)
}

func TestKeyPoolSingleEntryAlwaysSame(t *testing.T) {
	pool, err := NewKeyPool([]Credential{{Secret: "only", Label: "only"}})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		assert.Equal(t, "only", pool.Next().Secret)
	}
}

func TestKeyPoolConcurrentNextStaysInBounds(t *testing.T) {
	pool, err := NewKeyPool([]Credential{
		{Secret: "a"}, {Secret: "b"}, {Secret: "c"},
	})
	require.NoError(t, err)

	const workers = 15
	const perWorker = 500

	var wg sync.WaitGroup
	counts := make([]map[string]int, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			local := map[string]int{}
			for i := 0; i < perWorker; i++ {
				local[pool.Next().Secret]++
			}
			counts[w] = local
		}(w)
	}
	wg.Wait()

	total := map[string]int{}
	for _, local := range counts {
		for k, v := range local {
			total[k] += v
		}
	}

	// Every handout must come from the pool, and the atomic cursor
	// distributes exactly evenly.
	assert.Equal(t, workers*perWorker, total["a"]+total["b"]+total["c"])
	assert.Equal(t, workers*perWorker/3, total["a"])
	assert.Equal(t, workers*perWorker/3, total["b"])
	assert.Equal(t, workers*perWorker/3, total["c"])
}

func TestKeyPoolCopiesEntries(t *testing.T) {
	entries := []Credential{{Secret: "a"}, {Secret: "b"}}
	pool, err := NewKeyPool(entries)
	require.NoError(t, err)

	entries[0].Secret = "mutated"
	assert.Equal(t, "a", pool.Next().Secret)
}
