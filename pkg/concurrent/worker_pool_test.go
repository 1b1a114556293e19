package concurrent_test

import (
	"sort"
	"sync/atomic"
	"testing"

	"lintang/racemap/pkg/concurrent"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool(t *testing.T) {
	t.Run("every job produces one result", func(t *testing.T) {
		wp := concurrent.NewWorkerPool[int, int](3, 10)
		for i := 0; i < 10; i++ {
			wp.AddJob(i)
		}
		wp.Close()
		wp.Start(func(job int) int { return job * job })
		wp.Wait()

		var got []int
		for r := range wp.CollectResults() {
			got = append(got, r)
		}
		sort.Ints(got)
		assert.Equal(t, []int{0, 1, 4, 9, 16, 25, 36, 49, 64, 81}, got)
	})

	t.Run("close twice is safe", func(t *testing.T) {
		wp := concurrent.NewWorkerPool[int, int](1, 1)
		wp.Close()
		assert.NotPanics(t, wp.Close)
	})

	t.Run("zero workers still runs", func(t *testing.T) {
		var calls int32
		out := concurrent.Run(0, []string{"a", "b"}, func(s string) string {
			atomic.AddInt32(&calls, 1)
			return s + s
		})
		assert.Equal(t, []string{"aa", "bb"}, out)
		assert.Equal(t, int32(2), calls)
	})
}

func TestRunKeepsOrder(t *testing.T) {
	jobs := make([]int, 100)
	for i := range jobs {
		jobs[i] = i
	}
	out := concurrent.Run(8, jobs, func(j int) int { return j + 1 })
	for i, v := range out {
		assert.Equal(t, i+1, v)
	}

	assert.Empty(t, concurrent.Run(4, nil, func(j int) int { return j }))
}
