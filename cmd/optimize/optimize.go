package optimize

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/emwave/emwave/database"
	"github.com/emwave/emwave/database/data_model"
	"github.com/emwave/emwave/solver"
	"github.com/emwave/emwave/taguchi"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	var inputFile string

	return &cli.Command{
		Name:  "optimize",
		Usage: "optimise model parameters with the Taguchi method",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "inputfile",
				UsageText:   "<input>",
				Destination: &inputFile,
				Min:         1,
				Max:         1,
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "max-iterations",
				Usage: "override the iteration limit from the input file's taguchi block",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "worker count for running experiments concurrently",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "registry",
				Usage: "path to a sqlite run registry to record confirmation runs in",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := taguchi.ParseBlock(inputFile)
			if err != nil {
				return err
			}
			if n := int(cmd.Int("max-iterations")); n > 0 {
				cfg.MaxIterations = n
			}

			opts := solver.RunOptions{InputFile: inputFile}
			history, err := taguchi.Optimise(opts, cfg, int(cmd.Int("workers")))
			if err != nil {
				return err
			}

			best := history[len(history)-1]
			log.Infof("optimisation finished after %d iterations, fitness %g", len(history), best.Fitness)
			for name, value := range best.Values {
				log.Infof("  %s = %g", name, value)
			}

			if registry := cmd.String("registry"); registry != "" {
				if err := recordHistory(registry, inputFile, history); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func recordHistory(registry, inputFile string, history []taguchi.IterationResult) error {
	db, err := database.Open(registry)
	if err != nil {
		return err
	}
	defer database.Close(db)

	for i, it := range history {
		entry := &data_model.RunEntry{
			InputFile:  inputFile,
			Title:      it.Run.Title,
			ModelRun:   i + 1,
			TotalRuns:  len(history),
			OutputFile: it.Run.OutputFile,
			Iterations: it.Run.Iterations,
			Dt:         it.Run.Dt,
			Elapsed:    it.Run.Elapsed.Seconds(),
		}
		if err := database.RecordRun(db, entry); err != nil {
			return fmt.Errorf("failed to record confirmation run %d: %s", i+1, err)
		}
	}

	return nil
}
