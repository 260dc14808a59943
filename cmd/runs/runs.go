package runs

import (
	"context"
	"fmt"
	"time"

	"github.com/emwave/emwave/database"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "inspect the run registry",
		Commands: []*cli.Command{
			subcmdList(),
			subcmdShow(),
			subcmdExport(),
		},
	}
}

func registryFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "registry",
		Usage:    "path to the sqlite run registry",
		Required: true,
	}
}

func inputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "input",
		Usage: "only consider runs of this input file",
	}
}

func subcmdList() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list recorded runs, newest first",
		Flags: []cli.Flag{
			registryFlag(),
			inputFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			db, err := database.Open(cmd.String("registry"))
			if err != nil {
				return err
			}
			defer database.Close(db)

			entries, err := database.ListRuns(db, cmd.String("input"))
			if err != nil {
				return err
			}

			for _, e := range entries {
				fmt.Printf("%4d  %s  run %d/%d  %s\n",
					e.ID, e.CreatedAt.Format(time.DateTime), e.ModelRun, e.TotalRuns, e.OutputFile)
			}
			return nil
		},
	}
}

func subcmdShow() *cli.Command {
	var id uint64

	return &cli.Command{
		Name:  "show",
		Usage: "show one recorded run",
		Arguments: []cli.Argument{
			&cli.UintArg{
				Name:        "id",
				UsageText:   "<id>",
				Destination: &id,
				Min:         1,
				Max:         1,
			},
		},
		Flags: []cli.Flag{
			registryFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			db, err := database.Open(cmd.String("registry"))
			if err != nil {
				return err
			}
			defer database.Close(db)

			e, err := database.RunByID(db, uint(id))
			if err != nil {
				return err
			}

			fmt.Printf("run %d of %d, recorded %s\n", e.ModelRun, e.TotalRuns, e.CreatedAt.Format(time.DateTime))
			fmt.Printf("  title:      %s\n", e.Title)
			fmt.Printf("  input:      %s\n", e.InputFile)
			fmt.Printf("  output:     %s\n", e.OutputFile)
			fmt.Printf("  iterations: %d\n", e.Iterations)
			fmt.Printf("  timestep:   %g s\n", e.Dt)
			fmt.Printf("  solve time: %gs\n", e.Elapsed)
			return nil
		},
	}
}

func subcmdExport() *cli.Command {
	var csvFilePath string

	return &cli.Command{
		Name:  "export",
		Usage: "export recorded runs as CSV",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "csv-file",
				UsageText:   "<csv>",
				Destination: &csvFilePath,
				Min:         1,
				Max:         1,
			},
		},
		Flags: []cli.Flag{
			registryFlag(),
			inputFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			db, err := database.Open(cmd.String("registry"))
			if err != nil {
				return err
			}
			defer database.Close(db)

			return database.ExportCSV(db, cmd.String("input"), csvFilePath)
		},
	}
}
