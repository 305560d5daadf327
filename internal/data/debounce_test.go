package data

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(50*time.Millisecond, func() { fired.Add(1) })

	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, int32(0), fired.Load(), "must not fire while triggers keep arriving")

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "a burst collapses to one invocation")
}

func TestDebouncerFlushRunsImmediately(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(time.Hour, func() { fired.Add(1) })

	d.Trigger()
	d.Flush()
	assert.Equal(t, int32(1), fired.Load())

	// Flush with nothing pending is a no-op, and the stopped timer stays dead.
	d.Flush()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestDebouncerFlushWithoutTrigger(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(time.Hour, func() { fired.Add(1) })
	d.Flush()
	assert.Equal(t, int32(0), fired.Load())
}
