package store

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_CoalescesCalls(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls, last atomic.Int32
	for i := 1; i <= 10; i++ {
		n := int32(i)
		d.Debounce(func() {
			calls.Add(1)
			last.Store(n)
		})
		time.Sleep(2 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(10), last.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Debounce(func() { calls.Add(1) })
	assert.True(t, d.Pending())
	assert.True(t, d.Cancel())
	assert.False(t, d.Pending())
	assert.False(t, d.Cancel(), "nothing left to cancel")

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestDebouncer_Duration(t *testing.T) {
	assert.Equal(t, 250*time.Millisecond, NewDebouncer(250*time.Millisecond).Duration())
}
