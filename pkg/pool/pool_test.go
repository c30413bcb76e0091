package pool

import (
	"crypto/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	p := NewPool(4)
	defer p.TearDown()

	// Roughly half the draws miss, exercising the retry path.
	var calls int64
	results := p.Search(8, func() interface{} {
		n := atomic.AddInt64(&calls, 1)
		if n%2 == 0 {
			return nil
		}
		return int(n)
	})

	require.Len(t, results, 8)
	for _, r := range results {
		assert.NotNil(t, r)
	}
}

func TestSearchNilPool(t *testing.T) {
	var p *Pool
	misses := 3
	results := p.Search(2, func() interface{} {
		if misses > 0 {
			misses--
			return nil
		}
		return "hit"
	})
	require.Len(t, results, 2)
	assert.Equal(t, "hit", results[0])
	assert.Equal(t, "hit", results[1])
}

func TestParallelize(t *testing.T) {
	p := NewPool(3)
	defer p.TearDown()

	results := p.Parallelize(16, func(i int) interface{} {
		return i * i
	})
	require.Len(t, results, 16)
	for i, r := range results {
		assert.Equal(t, i*i, r)
	}
}

func TestParallelizeNilPool(t *testing.T) {
	var p *Pool
	results := p.Parallelize(4, func(i int) interface{} {
		return i
	})
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, i, r)
	}
}

func TestLockedReader(t *testing.T) {
	r := NewLockedReader(rand.Reader)

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			buf := make([]byte, 64)
			_, err := r.Read(buf)
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}
}
