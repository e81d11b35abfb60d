package worker

import (
	"context"
	"sync"
)

// Job is a unit of analysis work executed by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a job execution
type Result interface {
	GetError() error
}

// Pool executes jobs with a bounded number of workers. The worker count
// is the concurrency ceiling: at no point are more jobs in flight than
// workers. Cancellation of the parent context abandons queued jobs and
// stops in-flight ones at their next context check.
type Pool struct {
	workers     int
	jobQueue    chan Job
	results     chan Result
	collected   []Result
	collectDone chan struct{}
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	closeQueue  sync.Once
	closeResult sync.Once
}

// NewPool creates a pool bound to ctx with the given number of workers
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	poolCtx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:     workers,
		jobQueue:    make(chan Job, workers*2),
		results:     make(chan Result, workers*2),
		collectDone: make(chan struct{}),
		ctx:         poolCtx,
		cancel:      cancel,
	}
}

// Start launches the workers and the result collector. The collector
// drains continuously so workers never block on a full result buffer,
// which would otherwise stall Submit on large batches.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	go func() {
		for result := range p.results {
			p.collected = append(p.collected, result)
		}
		close(p.collectDone)
	}()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job for execution. After cancellation it is a no-op.
// Must not be called after Wait or Shutdown.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- job:
	}
}

// Wait closes the queue, waits for all submitted jobs to finish and
// returns their results. Results of a cancelled pool are partial and
// discarded by the caller; ordering is not meaningful here since the
// aggregator sorts after collection.
func (p *Pool) Wait() []Result {
	p.closeQueue.Do(func() {
		close(p.jobQueue)
	})
	p.wg.Wait()
	p.closeResult.Do(func() {
		close(p.results)
	})
	<-p.collectDone

	return p.collected
}

// Shutdown cancels the pool immediately and discards pending work
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResult.Do(func() {
		close(p.results)
	})
	<-p.collectDone
}
