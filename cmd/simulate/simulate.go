package simulate

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/emwave/emwave/database"
	"github.com/emwave/emwave/database/data_model"
	"github.com/emwave/emwave/output"
	"github.com/emwave/emwave/solver"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	var inputFile string

	return &cli.Command{
		Name:  "simulate",
		Usage: "run a model input file",
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
				Name:  "n",
				Usage: "number of times to run the input file",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "worker count for farming out model runs",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "geometry-only",
				Usage: "only build models and produce geometry files",
			},
			&cli.BoolFlag{
				Name:  "write-processed",
				Usage: "write an input file after any script blocks in the original input file have been processed",
			},
			&cli.StringFlag{
				Name:  "snapshot-codec",
				Usage: "compression for snapshot files, one of none, gzip, zstd, brotli",
				Value: output.CodecNone,
			},
			&cli.StringFlag{
				Name:  "registry",
				Usage: "path to a sqlite run registry to record completed runs in",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			opts, err := getOptionsFromCmd(cmd, inputFile)
			if err != nil {
				return err
			}

			results, err := solver.RunModels(opts, int(cmd.Int("workers")))
			if err != nil {
				return err
			}

			if registry := cmd.String("registry"); registry != "" {
				if err := recordRuns(registry, inputFile, opts.NumberModelRuns, results); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func getOptionsFromCmd(cmd *cli.Command, inputFile string) (solver.RunOptions, error) {
	opts := solver.RunOptions{
		InputFile:       inputFile,
		NumberModelRuns: int(cmd.Int("n")),
		GeometryOnly:    cmd.Bool("geometry-only"),
		WriteProcessed:  cmd.Bool("write-processed"),
		SnapshotCodec:   cmd.String("snapshot-codec"),
	}

	if opts.NumberModelRuns < 1 {
		return opts, fmt.Errorf("number of model runs must be positive, got %d", opts.NumberModelRuns)
	}
	if !output.IsKnownCodec(opts.SnapshotCodec) {
		return opts, fmt.Errorf("unknown snapshot codec %q", opts.SnapshotCodec)
	}

	return opts, nil
}

func recordRuns(registry, inputFile string, totalRuns int, results []*solver.Result) error {
	db, err := database.Open(registry)
	if err != nil {
		return err
	}
	defer database.Close(db)

	for _, r := range results {
		// Geometry-only runs produce no output file and are not recorded.
		if r.OutputFile == "" {
			continue
		}
		entry := &data_model.RunEntry{
			InputFile:  inputFile,
			Title:      r.Title,
			ModelRun:   r.ModelRun,
			TotalRuns:  totalRuns,
			OutputFile: r.OutputFile,
			Iterations: r.Iterations,
			Dt:         r.Dt,
			Elapsed:    r.Elapsed.Seconds(),
		}
		if err := database.RecordRun(db, entry); err != nil {
			return fmt.Errorf("failed to record run %d: %s", r.ModelRun, err)
		}
	}
	log.Infof("recorded %d runs in %s", len(results), registry)

	return nil
}
