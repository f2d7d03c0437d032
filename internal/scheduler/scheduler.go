package scheduler

import (
	"context"
	"sync"
)

// Run feeds items through a queue to a fixed set of workers and waits
// for every item to finish. A failing item never stops the others.
// workers <= 0 starts one worker per item. Results keep the order of items.
func Run[T, R any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, item T) R) []R {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results
	}
	if workers <= 0 || workers > len(items) {
		workers = len(items)
	}

	type job struct {
		index int
		item  T
	}
	jobCh := make(chan job, len(items))
	for i, item := range items {
		jobCh <- job{index: i, item: item}
	}
	close(jobCh)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				// each index is written by exactly one worker
				results[j.index] = fn(ctx, j.item)
			}
		}()
	}
	wg.Wait()
	return results
}
