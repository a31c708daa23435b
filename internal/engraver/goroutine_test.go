package engraver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoroutineID(t *testing.T) {
	here := goroutineID()
	assert.NotZero(t, here)
	assert.Equal(t, here, goroutineID())

	other := make(chan uint64)
	go func() { other <- goroutineID() }()
	id := <-other
	assert.NotZero(t, id)
	assert.NotEqual(t, here, id)
}
