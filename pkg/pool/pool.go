// Package pool provides a simple way to parallelize heavy operations,
// with a long lived set of workers shared across calls.
package pool

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// task is a unit of work handed to a worker.
//
// When search is set, the worker repeatedly calls generate until remaining
// hits zero, storing each hit in results. Otherwise it runs apply for the
// single index i.
type task struct {
	search    bool
	generate  func() interface{}
	apply     func(int) interface{}
	i         int
	remaining *int64
	results   []interface{}
	done      chan<- struct{}
}

func (t task) runSearch() {
	for atomic.LoadInt64(t.remaining) > 0 {
		v := t.generate()
		if v == nil {
			continue
		}
		slot := atomic.AddInt64(t.remaining, -1)
		if slot < 0 {
			// Another worker claimed the last slot first.
			return
		}
		t.results[slot] = v
		t.done <- struct{}{}
	}
}

func (t task) runApply() {
	t.results[t.i] = t.apply(t.i)
	t.done <- struct{}{}
}

func worker(tasks <-chan task) {
	for t := range tasks {
		if t.search {
			t.runSearch()
		} else {
			t.runApply()
		}
	}
}

// Pool is a fixed collection of worker goroutines fed over a shared channel.
//
// A nil Pool is valid, and simply runs everything in the calling goroutine.
type Pool struct {
	tasks chan task
	done  chan struct{}
}

// NewPool creates a Pool with a certain number of workers.
//
// If count <= 0, this uses the number of available CPUs instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		tasks: make(chan task),
		done:  make(chan struct{}),
	}
	for i := 0; i < count; i++ {
		go worker(p.tasks)
	}
	return p
}

// TearDown stops the pool's workers. The Pool must not be used afterwards.
func (p *Pool) TearDown() {
	if p == nil {
		return
	}
	close(p.tasks)
}

// Search calls f until count non nil results have been found, and returns them.
//
// Every worker hammers f concurrently, so f must be safe to call from
// multiple goroutines. The final ordering of the results is arbitrary.
func (p *Pool) Search(count int, f func() interface{}) []interface{} {
	if p == nil {
		return searchAlone(count, f)
	}
	remaining := int64(count)
	results := make([]interface{}, count)
	t := task{
		search:    true,
		generate:  f,
		remaining: &remaining,
		results:   results,
		done:      p.done,
	}
	// Offer the task to every idle worker while draining completions, so
	// we never deadlock when all workers are already busy searching.
	found := 0
	for found < count {
		select {
		case p.tasks <- t:
		case <-p.done:
			found++
		}
	}
	return results
}

func searchAlone(count int, f func() interface{}) []interface{} {
	results := make([]interface{}, count)
	for i := 0; i < count; i++ {
		for {
			if v := f(); v != nil {
				results[i] = v
				break
			}
		}
	}
	return results
}

// Parallelize calls f for each index in [0, count), and returns the results
// in order.
func (p *Pool) Parallelize(count int, f func(int) interface{}) []interface{} {
	if p == nil {
		return runAlone(count, f)
	}
	results := make([]interface{}, count)
	sent, got := 0, 0
	for sent < count {
		t := task{
			apply:   f,
			i:       sent,
			results: results,
			done:    p.done,
		}
		select {
		case p.tasks <- t:
			sent++
		case <-p.done:
			got++
		}
	}
	for ; got < count; got++ {
		<-p.done
	}
	return results
}

func runAlone(count int, f func(int) interface{}) []interface{} {
	results := make([]interface{}, count)
	for i := 0; i < count; i++ {
		results[i] = f(i)
	}
	return results
}

// lockedReader wraps a reader with a lock.
type lockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader wraps an io.Reader so that it's safe for concurrent reads.
func NewLockedReader(r io.Reader) io.Reader {
	return &lockedReader{reader: r}
}

func (r *lockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}
