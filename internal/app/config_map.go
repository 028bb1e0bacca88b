package app

import (
	"errors"
	"strings"

	"cadenced/internal/checkin"
	"cadenced/internal/config"
	"cadenced/internal/task/engine"
	"cadenced/internal/task/scheduler"
	logx "cadenced/pkg/logx"
)

func mapLogConfig(cfg *config.Config) logx.Config {
	lc := cfg.Logging
	path := strings.TrimSpace(lc.File.Path)
	return logx.Config{
		Level:   lc.Level,
		Console: lc.Console,
		File: logx.FileConfig{
			Enabled:    path != "",
			Path:       path,
			MaxSizeMB:  lc.File.MaxSizeMB,
			MaxBackups: lc.File.MaxBackups,
			MaxAgeDays: lc.File.MaxAgeDays,
			Compress:   lc.File.Compress,
		},
	}
}

func mapSchedulerConfig(cfg *config.Config) (scheduler.Config, error) {
	poll, err := cfg.PollInterval()
	if err != nil {
		return scheduler.Config{}, err
	}
	return scheduler.Config{
		PollInterval: poll,
		Timezone:     strings.TrimSpace(cfg.Scheduler.Timezone),
		RunOnStart:   cfg.Scheduler.RunOnStart,
	}, nil
}

func mapTaskEngineConfig(cfg *config.Config) engine.Config {
	return engine.Config{HistorySize: cfg.Scheduler.HistorySize}
}

func mapCheckinConfig(cfg *config.Config) (checkin.Config, error) {
	grace, err := cfg.KillGrace()
	if err != nil {
		return checkin.Config{}, err
	}
	return checkin.Config{
		Argv:      cfg.CommandArgv(),
		Dir:       strings.TrimSpace(cfg.Checkin.Dir),
		KillGrace: grace,
	}, nil
}

// resolveCadence parses the configured cadence. An empty value silently means
// the default; an unparseable one is reported and also falls back to the
// default so the daemon keeps running.
func resolveCadence(raw string, log logx.Logger) scheduler.Cadence {
	if strings.TrimSpace(raw) == "" {
		return scheduler.DefaultCadence
	}
	c, err := scheduler.ParseCadence(raw)
	if err == nil {
		return c
	}
	fields := []logx.Field{
		logx.String("schedule_time", raw),
		logx.String("fallback", scheduler.DefaultSpec),
		logx.Err(err),
	}
	var ce *scheduler.CadenceError
	if errors.As(err, &ce) {
		fields = append(fields, logx.Any("supported", ce.Supported))
	}
	log.Warn("invalid schedule; using default", fields...)
	return scheduler.DefaultCadence
}
