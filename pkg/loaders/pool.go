package loaders

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/df07/go-scene-viewer/pkg/scene"
)

// LoadTask represents an asset load request for the worker pool
type LoadTask struct {
	ID    int // Submission order, for matching results
	Asset string
}

// LoadResult contains the outcome of a load task. Exactly one of Node and Err
// is set.
type LoadResult struct {
	ID      int
	Asset   string
	Node    *scene.Node
	Err     error
	Elapsed time.Duration
}

// Pool loads assets on a fixed set of worker goroutines. Results are
// delivered on a single channel in completion order; there is no ordering
// between independent loads and a failed load never affects another.
//
// Submissions go to an unbounded backlog that a dispatcher feeds to the
// workers, so Submit never blocks on a busy pool.
type Pool struct {
	source      Source
	taskQueue   chan LoadTask
	resultQueue chan LoadResult
	numWorkers  int
	wg          sync.WaitGroup

	wake chan struct{}
	quit chan struct{}

	mu      sync.Mutex
	backlog []LoadTask
	nextID  int
	started bool
	stopped bool
}

// NewPool creates a pool with the given number of workers and queue size.
// Non-positive values select the CPU count and a queue of 64.
func NewPool(source Source, numWorkers, queueSize int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	return &Pool{
		source:      source,
		taskQueue:   make(chan LoadTask, queueSize),
		resultQueue: make(chan LoadResult, queueSize),
		numWorkers:  numWorkers,
		wake:        make(chan struct{}, 1),
		quit:        make(chan struct{}),
	}
}

// Start begins the dispatcher and all workers. Loads run with ctx; cancelling
// it fails any load still in flight.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	go p.dispatch()
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}
}

// Submit queues an asset load and returns its task ID without waiting for a
// free worker
func (p *Pool) Submit(asset string) (int, error) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return 0, ErrPoolStopped
	}
	id := p.nextID
	p.nextID++
	p.backlog = append(p.backlog, LoadTask{ID: id, Asset: asset})
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return id, nil
}

// Results returns the channel completed loads are delivered on. It is closed
// by Stop.
func (p *Pool) Results() <-chan LoadResult {
	return p.resultQueue
}

// NumWorkers returns the number of workers in the pool
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Stop drops queued loads, waits for in-flight ones to finish, discarding
// their results, and closes the results channel
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	started := p.started
	p.backlog = nil
	p.mu.Unlock()

	close(p.quit)
	if !started {
		close(p.taskQueue)
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-p.resultQueue:
		case <-done:
			close(p.resultQueue)
			return
		}
	}
}

// dispatch moves backlog tasks onto the worker queue until Stop
func (p *Pool) dispatch() {
	defer close(p.taskQueue)

	for {
		p.mu.Lock()
		var task LoadTask
		ready := len(p.backlog) > 0
		if ready {
			task = p.backlog[0]
			p.backlog = p.backlog[1:]
		}
		p.mu.Unlock()

		if !ready {
			select {
			case <-p.wake:
				continue
			case <-p.quit:
				return
			}
		}

		select {
		case p.taskQueue <- task:
		case <-p.quit:
			return
		}
	}
}

// run is the main worker loop
func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()

	for task := range p.taskQueue {
		select {
		case <-p.quit:
			continue
		default:
		}

		start := time.Now()
		node, err := p.load(ctx, task.Asset)
		if err == nil && node == nil {
			err = &LoadError{Asset: task.Asset, Err: errNoNode}
		}
		if err != nil {
			node = nil
		}

		p.resultQueue <- LoadResult{
			ID:      task.ID,
			Asset:   task.Asset,
			Node:    node,
			Err:     err,
			Elapsed: time.Since(start),
		}
	}
}

// load calls the source, turning a panic into a failed load
func (p *Pool) load(ctx context.Context, asset string) (node *scene.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			node = nil
			err = &LoadError{Asset: asset, Err: fmt.Errorf("%w: %v", errPanic, r)}
		}
	}()
	return p.source.Load(ctx, asset)
}
