package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	logx "cadenced/pkg/logx"
)

// Service runs tasks synchronously in the caller's goroutine.
//
// A task's failure or panic is returned as an error wrapping ErrActionFailed; it
// never unwinds the caller.
type Service struct {
	cfg Config
	log logx.Logger

	hmu      sync.Mutex
	history  []HistoryItem
	runs     uint64
	failures uint64
}

func New(cfg Config, log logx.Logger) *Service {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaultHistorySize
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{cfg: cfg, log: log}
}

// Run executes t and blocks until it returns.
func (s *Service) Run(ctx context.Context, t Task) error {
	if t.Run == nil {
		return fmt.Errorf("%w: %s: no action bound", ErrActionFailed, t.Name)
	}
	id := uuid.NewString()
	log := s.log.With(logx.String("task", t.Name), logx.String("run_id", id))

	start := time.Now()
	log.Info("task started", logx.Time("at", start))

	err := s.invoke(ctx, log, t)

	dur := time.Since(start)
	item := HistoryItem{ID: id, Name: t.Name, Started: start, Duration: dur, ExitCode: 0}
	if err != nil {
		item.Error = err.Error()
		item.ExitCode = ExitCode(err)
		fields := []logx.Field{logx.Err(err), logx.Duration("dur", dur)}
		if item.ExitCode >= 0 {
			fields = append(fields, logx.Int("exit_code", item.ExitCode))
		}
		log.Warn("task failed", fields...)
	} else {
		log.Info("task finished", logx.Duration("dur", dur))
	}
	s.record(item, err != nil)

	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrActionFailed, t.Name, err)
	}
	return nil
}

// invoke guards against task panics: convert to error so one bad task can't
// crash the scheduler loop.
func (s *Service) invoke(ctx context.Context, log logx.Logger, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
			log.Error("task panic", logx.Any("panic", r), logx.Stack(logx.StackTrace(3, 32)))
		}
	}()
	return t.Run(ctx)
}

func (s *Service) record(item HistoryItem, failed bool) {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	s.runs++
	if failed {
		s.failures++
	}
	s.history = append(s.history, item)
	if len(s.history) > s.cfg.HistorySize {
		s.history = s.history[len(s.history)-s.cfg.HistorySize:]
	}
}

func (s *Service) Snapshot() Snapshot {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	h := make([]HistoryItem, len(s.history))
	copy(h, s.history)
	return Snapshot{Runs: s.runs, Failures: s.failures, History: h}
}
