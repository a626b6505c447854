package sim

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/MJE43/sicbo-sim/internal/engine"
	"github.com/MJE43/sicbo-sim/internal/games"
)

// ChunkSize is the number of trials one batch job rolls.
const ChunkSize = 8192

// BatchParams configures RunBatch.
type BatchParams struct {
	Count   int
	Seed    uint64
	Workers int // 0 = GOMAXPROCS
	// OnProgress, if set, receives the number of trials just completed.
	// It is called from worker goroutines.
	OnProgress func(done int)
}

type batchJob struct {
	index int
	start int
	end   int
}

// RunBatch rolls Count trials across a worker pool. Chunk i draws from
// NewSeededSource(Seed, i) and writes its own slice region, so the result
// depends only on Seed and Count.
func RunBatch(ctx context.Context, p BatchParams) ([]games.Outcome, error) {
	if p.Count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, p.Count)
	}
	out := make([]games.Outcome, p.Count)
	if p.Count == 0 {
		return out, nil
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunks := (p.Count + ChunkSize - 1) / ChunkSize
	if workers > chunks {
		workers = chunks
	}

	jobs := make(chan batchJob, workers*2)
	var completed atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case job, ok := <-jobs:
					if !ok {
						return
					}
					src := engine.NewSeededSource(p.Seed, uint64(job.index))
					for i := job.start; i < job.end; i++ {
						out[i] = games.Classify(engine.Roll(src))
					}
					completed.Add(int64(job.end - job.start))
					if p.OnProgress != nil {
						p.OnProgress(job.end - job.start)
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < chunks; i++ {
			start := i * ChunkSize
			job := batchJob{index: i, start: start, end: min(start+ChunkSize, p.Count)}
			select {
			case jobs <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()

	if err := ctx.Err(); err != nil && int(completed.Load()) < p.Count {
		return nil, fmt.Errorf("batch cancelled after %d of %d trials: %w", completed.Load(), p.Count, err)
	}
	return out, nil
}
