package encode

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sophisticatedways/cgen-go/pkg/word"
)

// Job is one independent encode run: NewSink builds a fresh backend/sink
// pair (a new *cnf.Formula or *anf.Formula has no shared state with any
// other job, so running several concurrently is safe even though a single
// Encode call is not reentrant per §5) and Config drives it.
type Job struct {
	Name    string
	NewSink func() (word.Backend, Sink)
	Config  Config
}

// JobResult carries one job's outcome: the populated sink (for the caller to
// write out as DIMACS/PolyBoRi), the digest when Config.HMode is HCompute,
// and any error Encode returned.
type JobResult struct {
	Name   string
	Sink   Sink
	Result *Result
	Err    error
}

// WorkerPool runs a batch of independent encode Jobs across NumWorkers
// goroutines, grounded on the teacher's pkg/search/worker.go WorkerPool:
// same buffered-channel-of-tasks distribution, sync.WaitGroup join, and
// sync/atomic progress counters drained by a ticking reporter goroutine.
// The optimizer and a single Encode call stay single-threaded per §5 — this
// pool only parallelizes across separate formula objects, never within one.
type WorkerPool struct {
	NumWorkers int

	mu        sync.Mutex
	results   []JobResult
	completed atomic.Int64
	failed    atomic.Int64
}

// NewWorkerPool creates a pool with the given worker count; 0 or negative
// defaults to runtime.NumCPU(), matching the teacher's NewWorkerPool.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{NumWorkers: numWorkers}
}

// Stats returns the number of completed and failed jobs so far.
func (wp *WorkerPool) Stats() (completed, failed int64) {
	return wp.completed.Load(), wp.failed.Load()
}

// RunJobs distributes jobs across the pool's workers and returns every
// result once all jobs have completed. Order is not guaranteed to match the
// input slice; callers that need positional correspondence should key off
// JobResult.Name.
func (wp *WorkerPool) RunJobs(jobs []Job, verbose bool) []JobResult {
	total := int64(len(jobs))

	ch := make(chan Job, len(jobs))
	for _, j := range jobs {
		ch <- j
	}
	close(ch)

	done := make(chan struct{})
	start := time.Now()
	if verbose {
		go wp.reportProgress(done, start, total)
	}

	var wg sync.WaitGroup
	for i := 0; i < wp.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range ch {
				wp.runJob(job, verbose)
			}
		}()
	}
	wg.Wait()
	close(done)

	if verbose {
		elapsed := time.Since(start)
		completed, failed := wp.Stats()
		fmt.Printf("  [%s] %d/%d jobs (%d failed) | DONE\n", elapsed.Round(time.Second), completed, total, failed)
	}

	wp.mu.Lock()
	defer wp.mu.Unlock()
	return append([]JobResult(nil), wp.results...)
}

func (wp *WorkerPool) reportProgress(done chan struct{}, start time.Time, total int64) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			completed, failed := wp.Stats()
			elapsed := time.Since(start)
			pct := float64(completed) / float64(total) * 100
			fmt.Printf("  [%s] %d/%d jobs (%.1f%%) | %d failed\n", elapsed.Round(time.Second), completed, total, pct, failed)
		}
	}
}

func (wp *WorkerPool) runJob(job Job, verbose bool) {
	b, s := job.NewSink()
	res, err := Encode(b, s, job.Config)

	wp.mu.Lock()
	wp.results = append(wp.results, JobResult{Name: job.Name, Sink: s, Result: res, Err: err})
	wp.mu.Unlock()

	wp.completed.Add(1)
	if err != nil {
		wp.failed.Add(1)
		if verbose {
			fmt.Printf("  FAILED %s: %v\n", job.Name, err)
		}
	} else if verbose {
		fmt.Printf("  OK %s\n", job.Name)
	}
}
