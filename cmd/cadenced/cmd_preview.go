package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"cadenced/internal/app"
)

var previewHwd = &PreviewRunner{}

type PreviewRunner struct{}

const previewLayout = "Mon 2006-01-02 15:04:05 MST"

func (r *PreviewRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Print the next due times of the configured cadence and exit",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Value:   5,
				Usage:   "number of due times to print",
			},
		},
		Action: r.preview,
	}
}

func (r *PreviewRunner) preview(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Keep the terminal clean apart from warnings about the cadence itself.
	cfg.Logging.Level = "warn"

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	times, err := a.Preview(int(cmd.Int("count")))
	if err != nil {
		return err
	}
	c := a.Cadence()
	fmt.Printf("cadence %s (%s)\n", c.String(), c.Describe())
	for _, t := range times {
		fmt.Println(t.Format(previewLayout))
	}
	return nil
}
