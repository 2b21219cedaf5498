package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var fired atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 5; i++ {
		i := i
		d.Schedule(func() {
			fired.Add(1)
			last.Store(int32(i))
		})
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(5), last.Load())
	assert.False(t, d.Pending())
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var fired atomic.Int32

	d.Schedule(func() { fired.Add(1) })
	assert.True(t, d.Pending())

	d.Cancel()
	assert.False(t, d.Pending())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestDebouncerFlushRunsImmediately(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var fired atomic.Int32

	d.Schedule(func() { fired.Add(1) })
	d.Flush()

	assert.Equal(t, int32(1), fired.Load())
	assert.False(t, d.Pending())

	// Flush with nothing pending is a no-op.
	d.Flush()
	assert.Equal(t, int32(1), fired.Load())
}

func TestDebouncerRearmsAfterFiring(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var fired atomic.Int32

	d.Schedule(func() { fired.Add(1) })
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 2*time.Millisecond)

	d.Schedule(func() { fired.Add(1) })
	assert.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, 2*time.Millisecond)
}
