package main

import (
	"context"
	"fmt"
	"os"

	"github.com/emwave/emwave/cmd/optimize"
	"github.com/emwave/emwave/cmd/plot"
	"github.com/emwave/emwave/cmd/runs"
	"github.com/emwave/emwave/cmd/setup"
	"github.com/emwave/emwave/cmd/simulate"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:    "emwave",
		Usage:   "finite-difference time-domain electromagnetic wave simulator",
		Version: "0.1.0",
		Commands: []*cli.Command{
			simulate.Cmd(),
			optimize.Cmd(),
			plot.Cmd(),
			runs.Cmd(),
			setup.Cmd(),
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Println(err)
		if coder, ok := err.(cli.ExitCoder); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}
