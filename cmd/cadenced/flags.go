package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"cadenced/internal/config"
)

const (
	flagEnvFile  = "env-file"
	flagConfig   = "config"
	flagSchedule = "schedule"
	flagPoll     = "poll"
	flagLogLevel = "log-level"
)

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  flagEnvFile,
			Usage: "dotenv file(s) to load; defaults to ./.env when present",
		},
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "optional YAML config file",
			Sources: cli.EnvVars("CADENCED_CONFIG"),
		},
		&cli.StringFlag{
			Name:  flagSchedule,
			Usage: "cadence, overrides SCHEDULE_TIME (e.g. 8h, 30m, 09:00,15:00)",
		},
		&cli.StringFlag{
			Name:  flagPoll,
			Usage: "polling interval, overrides POLL_INTERVAL (e.g. 60s)",
		},
		&cli.StringFlag{
			Name:  flagLogLevel,
			Usage: "trace, debug, info, warn or error",
		},
	}
}

// loadConfig layers flags on top of defaults, YAML and the environment.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		EnvFiles: cmd.StringSlice(flagEnvFile),
		Path:     cmd.String(flagConfig),
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.IsSet(flagSchedule) {
		cfg.ScheduleTime = strings.TrimSpace(cmd.String(flagSchedule))
	}
	if cmd.IsSet(flagPoll) {
		cfg.Scheduler.PollInterval = strings.TrimSpace(cmd.String(flagPoll))
	}
	if cmd.IsSet(flagLogLevel) {
		cfg.Logging.Level = strings.TrimSpace(cmd.String(flagLogLevel))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
