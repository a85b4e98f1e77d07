package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	clk := NewFake()
	var fired []string

	clk.AfterFunc(300*time.Millisecond, func() { fired = append(fired, "c") })
	clk.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "a") })
	clk.AfterFunc(200*time.Millisecond, func() { fired = append(fired, "b") })

	clk.Advance(250 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, fired)

	clk.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, fired)
	assert.Zero(t, clk.Pending())
}

func TestFakeChainedTimersUseCallbackTime(t *testing.T) {
	clk := NewFake()
	start := clk.Now()
	var at time.Duration

	clk.AfterFunc(500*time.Millisecond, func() {
		clk.AfterFunc(800*time.Millisecond, func() {
			at = clk.Now().Sub(start)
		})
	})

	clk.Advance(10 * time.Second)
	assert.Equal(t, 1300*time.Millisecond, at)
	assert.Equal(t, 10*time.Second, clk.Now().Sub(start))
}

func TestFakeStop(t *testing.T) {
	clk := NewFake()
	called := false
	timer := clk.AfterFunc(time.Second, func() { called = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop())

	clk.Advance(2 * time.Second)
	assert.False(t, called)
}

func TestOrSystem(t *testing.T) {
	fake := NewFake()
	assert.Same(t, fake, OrSystem(fake))
	assert.NotNil(t, OrSystem(nil))
}
