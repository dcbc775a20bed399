package frame

import (
	"context"
	"runtime"
	"sync"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
)

// Job is a raw frame waiting to be compressed.
type Job struct {
	Index      int
	Image      []byte
	Samples    []byte
	AudioStart byte
}

// Outcome is the result of a job. Err is either nil, a budget warning (the
// record is usable), or a fatal error.
type Outcome struct {
	Record Record
	Err    error
}

// Pool compresses frames on several goroutines and hands them back in the order
// they were submitted.
type Pool struct {
	compressor *Compressor
	workers    int
}

// NewPool creates a pool. If `workers` is less than 1, one worker per CPU is
// used.
func NewPool(compressor *Compressor, workers int) *Pool {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{compressor: compressor, workers: workers}
}

func (p *Pool) Workers() int {
	return p.workers
}

type sequencedJob struct {
	sequence int
	job      Job
}

type sequencedOutcome struct {
	sequence int
	outcome  Outcome
}

// Run compresses every job from `jobs` until it's closed, calling `handle` with
// each outcome in submission order from the calling goroutine. At most twice as
// many frames as there are workers are in flight at once.
//
// Run stops early if `handle` returns an error, which it then returns, or if
// `ctx` is cancelled, in which case it returns an error wrapping
// [vidgen.ErrCancelled]. Outcomes after the point of cancellation are dropped.
func (p *Pool) Run(ctx context.Context, jobs <-chan Job, handle func(Outcome) error) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	work := make(chan sequencedJob)
	results := make(chan sequencedOutcome, p.workers)
	inFlight := make(chan struct{}, 2*p.workers)

	go func() {
		defer close(work)
		sequence := 0
		for {
			var job Job
			var ok bool
			select {
			case <-runCtx.Done():
				return
			case job, ok = <-jobs:
				if !ok {
					return
				}
			}

			select {
			case <-runCtx.Done():
				return
			case inFlight <- struct{}{}:
			}

			select {
			case <-runCtx.Done():
				return
			case work <- sequencedJob{sequence: sequence, job: job}:
			}
			sequence++
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				record, err := p.compressor.Compress(
					item.job.Index, item.job.Image, item.job.Samples, item.job.AudioStart)
				select {
				case results <- sequencedOutcome{item.sequence, Outcome{record, err}}:
				case <-runCtx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	pending := map[int]Outcome{}
	next := 0
	for result := range results {
		pending[result.sequence] = result.outcome
		for {
			outcome, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			<-inFlight

			if ctx.Err() != nil {
				return vidgen.ErrCancelled.Wrap(ctx.Err())
			}
			if err := handle(outcome); err != nil {
				return err
			}
		}
	}

	if ctx.Err() != nil {
		return vidgen.ErrCancelled.Wrap(ctx.Err())
	}
	return nil
}
