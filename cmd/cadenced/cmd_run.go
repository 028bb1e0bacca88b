package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"cadenced/internal/app"
)

var runHwd = &Runner{}

type Runner struct{}

func (r *Runner) cmd() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Run the check-in now and then on every due time until interrupted (default)",
		Action: r.run,
	}
}

func (r *Runner) run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.Run(ctx)
}
