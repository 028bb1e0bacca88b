// Package app wires configuration, logging, the check-in command and the
// scheduler into a running daemon.
package app

import (
	"context"
	"fmt"
	"time"

	"cadenced/internal/checkin"
	"cadenced/internal/config"
	"cadenced/internal/task/engine"
	"cadenced/internal/task/scheduler"
	logx "cadenced/pkg/logx"
	"cadenced/pkg/systemd"
)

// JobName identifies the check-in in logs and job IDs.
const JobName = "checkin"

const statusLayout = "2006-01-02 15:04:05"

type App struct {
	cfg *config.Config

	log  logx.Logger
	logs *logx.Service

	cadence scheduler.Cadence
	cmd     *checkin.Command
	engine  *engine.Service
	sched   *scheduler.Service
	sd      *systemd.Notifier
}

// Option customizes the App; mostly useful in tests.
type Option func(*options)

type options struct {
	schedOpts []scheduler.Option
	action    scheduler.Action
}

// WithSchedulerOptions forwards options to the scheduler service.
func WithSchedulerOptions(opts ...scheduler.Option) Option {
	return func(o *options) { o.schedOpts = append(o.schedOpts, opts...) }
}

// WithAction replaces the check-in subprocess with fn.
func WithAction(fn scheduler.Action) Option {
	return func(o *options) { o.action = fn }
}

// New builds the App from a loaded configuration. The cadence is resolved
// here, so an invalid SCHEDULE_TIME is reported once at startup.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logSvc, log := logx.New(mapLogConfig(cfg))
	appLog := log.With(logx.String("comp", "app"))

	a := &App{
		cfg:  cfg,
		log:  appLog,
		logs: logSvc,
		sd:   systemd.NewNotifier(log.With(logx.String("comp", "systemd"))),
	}
	a.cadence = resolveCadence(cfg.ScheduleTime, appLog)

	schedCfg, err := mapSchedulerConfig(cfg)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	action := o.action
	if action == nil {
		ccfg, err := mapCheckinConfig(cfg)
		if err != nil {
			_ = logSvc.Close()
			return nil, err
		}
		cmd, err := checkin.New(ccfg, log.With(logx.String("comp", "checkin")))
		if err != nil {
			_ = logSvc.Close()
			return nil, err
		}
		a.cmd = cmd
		action = cmd.Run
	}

	a.engine = engine.New(mapTaskEngineConfig(cfg), log.With(logx.String("comp", "engine")))
	schedOpts := append([]scheduler.Option{scheduler.WithStatusHook(a.onStatus)}, o.schedOpts...)
	a.sched = scheduler.New(schedCfg, a.engine, log.With(logx.String("comp", "scheduler")), schedOpts...)

	if _, err := a.sched.Register(a.cadence, JobName, action); err != nil {
		_ = logSvc.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) Logger() logx.Logger           { return a.log }
func (a *App) Cadence() scheduler.Cadence    { return a.cadence }
func (a *App) Scheduler() *scheduler.Service { return a.sched }

// Run blocks until ctx is cancelled. Interruption is a clean shutdown.
func (a *App) Run(ctx context.Context) error {
	fields := []logx.Field{
		logx.String("schedule", a.cadence.String()),
		logx.String("cadence", a.cadence.Describe()),
		logx.String("tz", a.sched.Location().String()),
		logx.Bool("run_on_start", a.cfg.Scheduler.RunOnStart),
	}
	if a.cmd != nil {
		fields = append(fields, logx.Any("command", a.cmd.Argv()), logx.String("dir", a.cmd.Dir()))
	}
	a.log.Info("cadenced starting", fields...)
	a.sd.Ready("starting")
	defer a.sd.Stopping()

	if err := a.sched.RunForever(ctx); err != nil {
		a.log.Error("scheduler stopped with error", logx.Err(err))
		return err
	}
	snap := a.engine.Snapshot()
	a.log.Info("cadenced stopped",
		logx.Int64("runs", int64(snap.Runs)),
		logx.Int64("failures", int64(snap.Failures)),
	)
	return nil
}

// Preview returns the next n due times of the configured cadence.
func (a *App) Preview(n int) ([]time.Time, error) {
	return a.sched.Preview(a.cadence, n)
}

func (a *App) Close() error {
	if a.logs == nil {
		return nil
	}
	return a.logs.Close()
}

func (a *App) onStatus(s scheduler.Snapshot) {
	a.sd.Status(statusLine(s))
}

func statusLine(s scheduler.Snapshot) string {
	line := fmt.Sprintf("runs=%d failures=%d", s.Executor.Runs, s.Executor.Failures)
	if !s.Next.IsZero() {
		line = "next check-in at " + s.Next.Format(statusLayout) + "; " + line
	}
	return line
}
