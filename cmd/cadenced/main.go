package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	logx "cadenced/pkg/logx"
)

func main() {
	cmd := &cli.Command{
		Name:   "cadenced",
		Usage:  "Run the check-in on a fixed cadence",
		Flags:  configFlags(),
		Action: runHwd.run,
		Commands: []*cli.Command{
			runHwd.cmd(),
			previewHwd.cmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logx.NewConsole("error").Error("fatal", logx.Err(err))
		os.Exit(1)
	}
}
