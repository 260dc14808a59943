package setup

import (
	"context"
	"fmt"

	"github.com/emwave/emwave/bootstrap"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "install the system packages and Python toolchain the processing scripts depend on",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "print the commands without running them",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			code := bootstrap.Run(ctx, bootstrap.DefaultSteps(), cmd.Bool("dry-run"))
			if code != 0 {
				return cli.Exit(fmt.Sprintf("setup finished with failures, last failing step exited with %d", code), code)
			}
			return nil
		},
	}
}
