package taguchi

import (
	"fmt"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/emwave/emwave/output"
	"github.com/emwave/emwave/solver"
)

// IterationResult records one optimisation iteration: the parameter values
// the response table selected, the confirmation experiment's fitness and
// the confirmation run itself.
type IterationResult struct {
	Values  map[string]float64
	Fitness float64
	Run     *solver.Result
}

// Shrink factor applied to the level spread after every iteration.
const rangeReduction = 0.5

// Optimise runs the Taguchi loop over the configured parameters: each
// iteration runs one experiment per orthogonal array row, scores them at the
// fitness receiver, picks the best level per parameter from a response table
// and confirms with a single run before narrowing the ranges. Experiments
// within an iteration are independent and run on up to workers goroutines.
func Optimise(opts solver.RunOptions, cfg *Config, workers int) ([]IterationResult, error) {
	k := len(cfg.Params)
	oa, n, err := selectOA(k)
	if err != nil {
		return nil, err
	}

	log.Infof("optimising %d parameters with %d experiments per iteration", k, n)

	// Level values per parameter: lower, centre, upper. The spread starts at
	// a quarter of the parameter range and halves every iteration, recentred
	// on the best level found.
	centre := make([]float64, k)
	spread := make([]float64, k)
	for i, p := range cfg.Params {
		centre[i] = (p.Min + p.Max) / 2
		spread[i] = (p.Max - p.Min) / 4
	}

	var history []IterationResult
	fitness := make([]float64, n)

	for iteration := 1; iteration <= cfg.MaxIterations; iteration++ {
		levels := make([][numLevels]float64, k)
		for i, p := range cfg.Params {
			levels[i] = [numLevels]float64{
				clampRange(centre[i]-spread[i], p.Min, p.Max),
				clampRange(centre[i], p.Min, p.Max),
				clampRange(centre[i]+spread[i], p.Min, p.Max),
			}
		}

		// Run the experiments. Each experiment is one model run with the
		// parameter values its orthogonal array row selects.
		if workers < 1 {
			workers = 1
		}
		sem := make(chan struct{}, workers)
		errs := make([]error, n)
		var wg sync.WaitGroup
		for exp := 0; exp < n; exp++ {
			expOpts := opts
			expOpts.NumberModelRuns = n
			expOpts.Extra = map[string]float64{}
			for i, p := range cfg.Params {
				expOpts.Extra[p.Name] = levels[i][oa[exp][i]]
			}

			wg.Add(1)
			go func(exp int, expOpts solver.RunOptions) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				result, err := solver.RunModel(expOpts, exp+1)
				if err != nil {
					errs[exp] = fmt.Errorf("failed to run experiment %d of iteration %d: %s", exp+1, iteration, err)
					return
				}
				fitness[exp], errs[exp] = fitnessMax(result.OutputFile, cfg.FitnessRx, cfg.FitnessComponent)
			}(exp, expOpts)
		}
		wg.Wait()
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
		log.Infof("iteration %d: completed %d experiments, fitness %v", iteration, n, fitness)

		// Response table: mean fitness per parameter level, best level wins.
		best := make([]int, k)
		for i := 0; i < k; i++ {
			var sum, count [numLevels]float64
			for exp := 0; exp < n; exp++ {
				level := oa[exp][i]
				sum[level] += fitness[exp]
				count[level]++
			}
			for level := 1; level < numLevels; level++ {
				if sum[level]/count[level] > sum[best[i]]/count[best[i]] {
					best[i] = level
				}
			}
		}

		// Confirmation experiment with the winning levels.
		values := make(map[string]float64, k)
		for i, p := range cfg.Params {
			values[p.Name] = levels[i][best[i]]
		}
		confOpts := opts
		confOpts.NumberModelRuns = 1
		confOpts.Extra = values

		result, err := solver.RunModel(confOpts, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to run confirmation experiment of iteration %d: %s", iteration, err)
		}
		confFitness, err := fitnessMax(result.OutputFile, cfg.FitnessRx, cfg.FitnessComponent)
		if err != nil {
			return nil, err
		}
		log.Infof("iteration %d: confirmation fitness %g with %v", iteration, confFitness, values)

		history = append(history, IterationResult{Values: values, Fitness: confFitness, Run: result})

		if cfg.StopThreshold > 0 && len(history) > 1 {
			prev := history[len(history)-2].Fitness
			if prev != 0 && math.Abs(confFitness-prev)/math.Abs(prev) < cfg.StopThreshold {
				log.Infof("fitness improvement below threshold, stopping after iteration %d", iteration)
				break
			}
		}

		// Narrow the search around the winners.
		for i := range cfg.Params {
			centre[i] = levels[i][best[i]]
			spread[i] *= rangeReduction
		}
	}

	return history, nil
}

func clampRange(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// fitnessMax scores a run by the largest field magnitude the receiver saw.
func fitnessMax(outputFile, rxID, component string) (float64, error) {
	trace, err := output.Read(outputFile)
	if err != nil {
		return 0, err
	}
	values, err := trace.RxTrace(rxID, component)
	if err != nil {
		return 0, err
	}

	max := 0.0
	for _, v := range values {
		if a := math.Abs(v); a > max {
			max = a
		}
	}
	return max, nil
}
