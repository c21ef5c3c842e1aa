package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFake_AdvanceFiresDueTimersInOrder(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fc := NewFake(start)

	var order []string
	fc.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	fc.AfterFunc(1*time.Second, func() { order = append(order, "a") })
	fc.AfterFunc(5*time.Second, func() { order = append(order, "c") })

	fc.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, fc.Pending())
	assert.Equal(t, start.Add(2*time.Second), fc.Now())

	fc.Advance(3 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, fc.Pending())
}

func TestFake_StopPreventsFiring(t *testing.T) {
	fc := NewFake(time.Unix(0, 0))

	fired := false
	timer := fc.AfterFunc(time.Second, func() { fired = true })

	require.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports already stopped")

	fc.Advance(time.Minute)
	assert.False(t, fired)
}

func TestFake_TimerScheduledFromCallback(t *testing.T) {
	fc := NewFake(time.Unix(0, 0))

	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			fc.AfterFunc(time.Second, tick)
		}
	}
	fc.AfterFunc(time.Second, tick)

	fc.Advance(10 * time.Second)
	assert.Equal(t, 3, count)
}

func TestReal_AfterFunc(t *testing.T) {
	done := make(chan struct{})
	Real().AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}
