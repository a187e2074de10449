package runner

import (
	"context"
	"sync"
)

// pool is a fixed set of workers shared by every suite in a run.
type pool struct {
	tasks chan func()
	wg    sync.WaitGroup
}

func newPool(workers int) *pool {
	if workers < 1 {
		workers = 1
	}
	p := &pool{tasks: make(chan func())}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
	return p
}

// submit hands task to an idle worker. It returns false when ctx
// ends first.
func (p *pool) submit(ctx context.Context, task func()) bool {
	select {
	case p.tasks <- task:
		return true
	case <-ctx.Done():
		return false
	}
}

// close stops the workers after queued tasks finish.
func (p *pool) close() {
	close(p.tasks)
	p.wg.Wait()
}

// slots holds one result per case. Each index is written once.
type slots[T any] struct {
	mu     sync.Mutex
	values []T
	filled []bool
}

func newSlots[T any](n int) *slots[T] {
	return &slots[T]{values: make([]T, n), filled: make([]bool, n)}
}

func (s *slots[T]) set(i int, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filled[i] {
		return
	}
	s.values[i] = v
	s.filled[i] = true
}

// drain returns the values, filling empty slots with fill(i).
func (s *slots[T]) drain(fill func(i int) T) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.values))
	for i := range s.values {
		if s.filled[i] {
			out[i] = s.values[i]
		} else {
			out[i] = fill(i)
		}
	}
	return out
}
