package solver

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// RunModels runs every model run for an input file. With workers > 1 the
// runs are farmed out to a worker pool; each worker builds its own grid so
// runs never share state.
func RunModels(opts RunOptions, workers int) ([]*Result, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > 1 && opts.NumberModelRuns == 1 {
		return nil, fmt.Errorf("worker pool is not beneficial when there is only one model to run")
	}
	if workers > opts.NumberModelRuns {
		workers = opts.NumberModelRuns
	}

	if workers == 1 {
		results := make([]*Result, 0, opts.NumberModelRuns)
		for run := 1; run <= opts.NumberModelRuns; run++ {
			r, err := RunModel(opts, run)
			if err != nil {
				return nil, fmt.Errorf("failed to solve model run %d: %s", run, err)
			}
			results = append(results, r)
		}
		return results, nil
	}

	log.Infof("farming %d model runs out to %d workers", opts.NumberModelRuns, workers)

	runs := make(chan int, opts.NumberModelRuns)
	for run := 1; run <= opts.NumberModelRuns; run++ {
		runs <- run
	}
	close(runs)

	resultCh := make(chan *Result, opts.NumberModelRuns)
	errCh := make(chan error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for run := range runs {
				r, err := RunModel(opts, run)
				if err != nil {
					errCh <- fmt.Errorf("failed to solve model run %d: %s", run, err)
					return
				}
				resultCh <- r
			}
		}()
	}

	wg.Wait()
	close(resultCh)
	close(errCh)

	if err, ok := <-errCh; ok {
		return nil, err
	}

	results := make([]*Result, 0, opts.NumberModelRuns)
	for r := range resultCh {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ModelRun < results[j].ModelRun })
	return results, nil
}
