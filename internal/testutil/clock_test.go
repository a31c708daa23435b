package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_StartsAtEpoch(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Readings())
	assert.Equal(t, Epoch, clock.Now())
}

func TestDeterministicClock_Advances(t *testing.T) {
	clock := NewDeterministicClock()

	first := clock.Now()
	second := clock.Now()
	third := clock.Now()

	assert.Equal(t, time.Millisecond, second.Sub(first))
	assert.Equal(t, time.Millisecond, third.Sub(second))
	assert.Equal(t, int64(3), clock.Readings())
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock()
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Readings())
	assert.Equal(t, Epoch, clock.Now())
}

func TestDeterministicClock_Concurrent(t *testing.T) {
	clock := NewDeterministicClock()

	const goroutines = 10
	const reads = 100

	seen := make(chan time.Time, goroutines*reads)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < reads; j++ {
				seen <- clock.Now()
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[time.Time]bool)
	for ts := range seen {
		require.False(t, unique[ts], "duplicate reading %v", ts)
		unique[ts] = true
	}
	assert.Len(t, unique, goroutines*reads)
	assert.Equal(t, int64(goroutines*reads), clock.Readings())
}
