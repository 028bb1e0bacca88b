package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"cadenced/internal/task/engine"
	logx "cadenced/pkg/logx"
)

// Config controls the scheduler (trigger) service.
type Config struct {
	// PollInterval is the polling quantum between due-time scans. Default 60s.
	PollInterval time.Duration
	Timezone     string // IANA TZ, e.g. "Asia/Shanghai"; empty means Local
	// RunOnStart fires every registered cadence once when RunForever starts.
	RunOnStart bool
}

const (
	defaultPollInterval = 60 * time.Second
	idleLogEvery        = 10 * time.Minute
)

// Action is the bound action fired by a job.
type Action func(ctx context.Context) error

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now as the scheduler's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStatusHook is called after the startup run and after every tick that
// fired at least one job.
func WithStatusHook(fn func(Snapshot)) Option {
	return func(s *Service) { s.onStatus = fn }
}

// job is one scheduled unit: a whole interval cadence, or one time of a daily cadence.
type job struct {
	id      string
	name    string
	cadence Cadence
	sched   cron.Schedule
	action  Action

	next     time.Time
	prev     time.Time
	runs     int
	failures int
	lastErr  string
}

// registration is one Register call; the startup run fires once per registration.
type registration struct {
	name    string
	cadence Cadence
	action  Action
}

type Service struct {
	// mu guards jobs for Snapshot readers; the loop itself is the only writer.
	mu sync.Mutex

	log logx.Logger
	cfg Config
	loc *time.Location

	exec *engine.Service

	now      func() time.Time
	onStatus func(Snapshot)
	idle     rate.Sometimes

	jobs  map[string]*job
	order []string
	regs  []registration
}

type JobInfo struct {
	ID       string
	Name     string
	Cadence  string
	Next     time.Time
	Prev     time.Time
	Runs     int
	Failures int
	LastErr  string
}

type Snapshot struct {
	Timezone     string
	PollInterval time.Duration
	Next         time.Time
	Jobs         []JobInfo
	Executor     engine.Snapshot
}
