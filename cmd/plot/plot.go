package plot

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/emwave/emwave/output"
	"github.com/emwave/emwave/render"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "plot",
		Usage: "render traces and snapshots as images",
		Commands: []*cli.Command{
			subcmdTrace(),
			subcmdSnapshot(),
		},
	}
}

func subcmdTrace() *cli.Command {
	var traceFile string

	return &cli.Command{
		Name:  "trace",
		Usage: "plot one receiver component from an output file",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "tracefile",
				UsageText:   "<out-file>",
				Destination: &traceFile,
				Min:         1,
				Max:         1,
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "rx",
				Usage: "receiver ID to plot, defaults to the file's first receiver",
			},
			&cli.StringFlag{
				Name:  "component",
				Usage: "field component to plot",
				Value: "Ez",
			},
			formatFlag(),
			outputFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			format := cmd.String("format")
			if !render.IsKnownFormat(format) {
				return fmt.Errorf("unknown image format %q, expecting one of %s",
					format, strings.Join(render.AllFormats, ", "))
			}

			trace, err := output.Read(traceFile)
			if err != nil {
				return err
			}

			rxID := cmd.String("rx")
			if rxID == "" {
				if len(trace.Header.Rxs) == 0 {
					return fmt.Errorf("%s contains no receivers", traceFile)
				}
				rxID = trace.Header.Rxs[0].ID
			}

			img, err := render.TracePlot(trace, rxID, cmd.String("component"))
			if err != nil {
				return err
			}

			saveAs := cmd.String("output")
			if saveAs == "" {
				saveAs = derivedName(traceFile, format)
			}
			if err := render.WriteImage(img, saveAs, format); err != nil {
				return err
			}

			log.Infof("plot saved as: %s", saveAs)
			return nil
		},
	}
}

func subcmdSnapshot() *cli.Command {
	var snapshotFile string

	return &cli.Command{
		Name:  "snapshot",
		Usage: "render one z slice of a snapshot file",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "snapshotfile",
				UsageText:   "<snap-file>",
				Destination: &snapshotFile,
				Min:         1,
				Max:         1,
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "component",
				Usage: "field component to render",
				Value: "Ez",
			},
			&cli.IntFlag{
				Name:  "slice",
				Usage: "z slice index into the sampled volume",
			},
			formatFlag(),
			outputFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			format := cmd.String("format")
			if !render.IsKnownFormat(format) {
				return fmt.Errorf("unknown image format %q, expecting one of %s",
					format, strings.Join(render.AllFormats, ", "))
			}

			vol, err := output.ReadSnapshot(snapshotFile)
			if err != nil {
				return err
			}

			img, err := render.SnapshotSlice(vol, cmd.String("component"), int(cmd.Int("slice")))
			if err != nil {
				return err
			}

			saveAs := cmd.String("output")
			if saveAs == "" {
				saveAs = derivedName(snapshotFile, format)
			}
			if err := render.WriteImage(img, saveAs, format); err != nil {
				return err
			}

			log.Infof("image saved as: %s", saveAs)
			return nil
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "output image format, one of " + strings.Join(render.AllFormats, ", "),
		Value:   render.FormatPng,
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "path to save the image as, defaults to the input name with the format's extension",
	}
}

func derivedName(path, format string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + format
}
