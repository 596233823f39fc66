package study

import (
	"context"
	"runtime"
	"sync"

	"github.com/cwbudde/algo-recon/measure/quality"
)

// ProgressFunc receives the number of completed repetitions out of the
// total as a study advances. Calls are serialized across workers; a nil
// function disables reporting.
type ProgressFunc func(done, total int)

// runGrid executes every (coordinate, repetition) cell of a study on a
// pool of workers and returns the per-repetition results indexed as
// coordinate*reps+rep. Cancellation stops dispatching new repetitions;
// the ones already in flight finish and keep their slots, and the
// context error is returned alongside the partial results.
func runGrid(ctx context.Context, nCoord, reps, workers int, progress ProgressFunc,
	eval func(coord, rep int) []stratResult,
) ([][]stratResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	total := nCoord * reps
	slots := make([][]stratResult, total)

	jobs := make(chan int)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for idx := range jobs {
				slots[idx] = eval(idx/reps, idx%reps)

				if progress != nil {
					mu.Lock()
					done++
					progress(done, total)
					mu.Unlock()
				}
			}
		}()
	}

	var runErr error

dispatch:
	for idx := 0; idx < total; idx++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break dispatch
		case jobs <- idx:
		}
	}

	close(jobs)
	wg.Wait()

	return slots, runErr
}

// scoreInto runs every strategy over one observation and folds the
// scores into res. A strategy that fails to reconstruct or to score is
// counted on its slot and excluded instead of aborting the repetition.
func scoreInto(res []stratResult, strats []Strategy, observed, ideal []float64) {
	for s, strat := range strats {
		rec, err := strat.Process(observed)
		if err != nil {
			res[s].failed++
			continue
		}

		m, err := quality.Score(rec, ideal, strat.Warmup())
		if err != nil {
			res[s].failed++
			continue
		}

		res[s].observe(m)
	}
}
