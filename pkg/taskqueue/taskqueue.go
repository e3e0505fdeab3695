// Package taskqueue runs a function over a list of items with a fixed number
// of workers.
package taskqueue

import (
	"context"
	"sync"
)

// Run calls fn for every item using exactly workers goroutines, each pulling
// the next item from a shared queue. All workers start immediately, even
// when there are fewer items than workers. Run returns once every worker has
// found the queue empty or seen ctx done; it then reports ctx.Err().
//
// A worker does not pick up a new item after ctx is done, but an fn that is
// already running is left to observe ctx itself.
func Run[T any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, item T)) error {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan T, len(items))
	for _, item := range items {
		jobs <- item
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker(ctx, &wg, jobs, fn)
	}
	wg.Wait()

	return ctx.Err()
}

func worker[T any](ctx context.Context, wg *sync.WaitGroup, jobs <-chan T, fn func(context.Context, T)) {
	defer wg.Done()
	for item := range jobs {
		if ctx.Err() != nil {
			return
		}
		fn(ctx, item)
	}
}
