package scheduler

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"cadenced/internal/task/engine"
	logx "cadenced/pkg/logx"
)

func New(cfg Config, exec *engine.Service, log logx.Logger, opts ...Option) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if exec == nil {
		exec = engine.New(engine.Config{}, log)
	}
	s := &Service{
		cfg:  cfg,
		log:  log,
		exec: exec,
		now:  time.Now,
		idle: rate.Sometimes{Interval: idleLogEvery},
		jobs: map[string]*job{},
	}
	for _, o := range opts {
		if o != nil {
			o(s)
		}
	}
	s.loc = s.loadLocation()
	return s
}

// Location returns the timezone used for daily cadences.
func (s *Service) Location() *time.Location { return s.loc }

// RunForever fires the startup run (if enabled), then scans for due jobs once
// per polling quantum until ctx is cancelled. Cancellation is the only way out
// and is not an error.
func (s *Service) RunForever(ctx context.Context) error {
	s.mu.Lock()
	regs := append([]registration(nil), s.regs...)
	s.mu.Unlock()
	if len(regs) == 0 {
		return ErrNoJobs
	}

	s.log.Info("scheduler started",
		logx.String("tz", s.loc.String()),
		logx.Duration("poll", s.cfg.PollInterval),
		logx.Int("jobs", len(s.order)),
	)

	if s.cfg.RunOnStart {
		for _, r := range regs {
			if ctx.Err() != nil {
				break
			}
			s.log.Info("startup run", logx.String("name", r.name), logx.String("cadence", r.cadence.String()))
			_ = s.exec.Run(ctx, engine.Task{Name: r.name, Run: r.action})
		}
	}
	s.publishStatus()
	if next := s.NextDue(); !next.IsZero() {
		s.log.Info("waiting for next run", logx.String("next", next.Format(previewLayout)))
	}

	timer := time.NewTimer(s.cfg.PollInterval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("interrupt received; scheduler stopped")
			return nil
		case <-timer.C:
		}

		if fired := s.Tick(ctx); fired > 0 {
			s.publishStatus()
		} else {
			s.idle.Do(func() {
				s.log.Debug("idle; no job due", logx.String("next", s.NextDue().Format(previewLayout)))
			})
		}
		timer.Reset(s.cfg.PollInterval)
	}
}

func (s *Service) publishStatus() {
	if s.onStatus == nil {
		return
	}
	s.onStatus(s.Snapshot())
}

func (s *Service) loadLocation() *time.Location {
	tz := strings.TrimSpace(s.cfg.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("invalid timezone; falling back to Local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}
