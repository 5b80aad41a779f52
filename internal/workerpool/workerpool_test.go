package workerpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_KeepsOrder(t *testing.T) {
	items := []int{5, 1, 4, 2, 3}
	out, err := Map(context.Background(), items, 3, func(_ context.Context, n int) int {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * n
	})
	require.NoError(t, err)
	assert.Equal(t, []int{25, 1, 16, 4, 9}, out)
}

func TestMap_BoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	items := make([]int, 20)

	_, err := Map(context.Background(), items, 2, func(context.Context, int) struct{} {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		running.Add(-1)
		return struct{}{}
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestMap_Empty(t *testing.T) {
	out, err := Map(context.Background(), nil, 0, func(context.Context, string) int { return 1 })
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMap_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	items := make([]int, 100)
	_, err := Map(ctx, items, 1, func(context.Context, int) int {
		if calls.Add(1) == 3 {
			cancel()
		}
		return 0
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, calls.Load(), int32(100))
}
