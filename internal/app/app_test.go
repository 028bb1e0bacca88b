package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"cadenced/internal/config"
	"cadenced/internal/task/scheduler"
	logx "cadenced/pkg/logx"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Logging.Console = false
	cfg.Logging.Level = "error"
	return &cfg
}

func TestResolveCadence(t *testing.T) {
	var buf bytes.Buffer
	log := logx.NewWriter(&buf, "debug")

	if got := resolveCadence("", log); got.String() != scheduler.DefaultSpec {
		t.Fatalf("empty = %q, want default", got.String())
	}
	if buf.Len() != 0 {
		t.Fatalf("empty schedule should not warn, got %q", buf.String())
	}

	if got := resolveCadence("09:00,15:00", log); got.String() != "09:00,15:00" {
		t.Fatalf("daily = %q", got.String())
	}

	got := resolveCadence("notanumber h", log)
	if got.String() != scheduler.DefaultSpec {
		t.Fatalf("invalid = %q, want default", got.String())
	}
	if !strings.Contains(buf.String(), "invalid schedule") {
		t.Fatalf("expected warning, got %q", buf.String())
	}
}

func TestMapConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.PollInterval = "5s"
	cfg.Scheduler.Timezone = " Asia/Shanghai "
	cfg.Checkin.Command = "./checkin --once"
	cfg.Checkin.KillGrace = "3s"
	cfg.Logging.File.Path = "/tmp/cadenced.log"

	sc, err := mapSchedulerConfig(cfg)
	if err != nil {
		t.Fatalf("mapSchedulerConfig: %v", err)
	}
	if sc.PollInterval != 5*time.Second || sc.Timezone != "Asia/Shanghai" || !sc.RunOnStart {
		t.Fatalf("scheduler config = %+v", sc)
	}

	cc, err := mapCheckinConfig(cfg)
	if err != nil {
		t.Fatalf("mapCheckinConfig: %v", err)
	}
	if len(cc.Argv) != 2 || cc.Argv[0] != "./checkin" || cc.KillGrace != 3*time.Second {
		t.Fatalf("checkin config = %+v", cc)
	}

	lc := mapLogConfig(cfg)
	if !lc.File.Enabled || lc.File.Path != "/tmp/cadenced.log" {
		t.Fatalf("log config = %+v", lc)
	}
	cfg.Logging.File.Path = ""
	if mapLogConfig(cfg).File.Enabled {
		t.Fatal("file sink should be disabled without a path")
	}

	if got := mapTaskEngineConfig(cfg).HistorySize; got != config.DefaultHistorySize {
		t.Fatalf("HistorySize = %d", got)
	}
}

func TestNewRejectsNilConfig(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestPreview(t *testing.T) {
	cfg := testConfig()
	cfg.ScheduleTime = "30m"
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	a, err := New(cfg,
		WithAction(func(context.Context) error { return nil }),
		WithSchedulerOptions(scheduler.WithClock(func() time.Time { return start })),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	times, err := a.Preview(3)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	want := []time.Time{
		start.Add(30 * time.Minute),
		start.Add(60 * time.Minute),
		start.Add(90 * time.Minute),
	}
	if len(times) != len(want) {
		t.Fatalf("got %d times, want %d", len(times), len(want))
	}
	for i := range want {
		if !times[i].Equal(want[i]) {
			t.Fatalf("times[%d] = %v, want %v", i, times[i], want[i])
		}
	}
}

func TestRunStartupThenInterrupt(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.PollInterval = "1h"

	var (
		mu    sync.Mutex
		calls int
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := New(cfg, WithAction(func(context.Context) error {
		mu.Lock()
		calls++
		mu.Unlock()
		cancel()
		return errors.New("check-in failed")
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v, want nil on interrupt", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("startup run calls = %d, want 1", calls)
	}
}

func TestStatusLine(t *testing.T) {
	var s scheduler.Snapshot
	s.Executor.Runs = 2
	s.Executor.Failures = 1
	if got := statusLine(s); got != "runs=2 failures=1" {
		t.Fatalf("statusLine = %q", got)
	}
	s.Next = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if got := statusLine(s); !strings.HasPrefix(got, "next check-in at 2026-03-01 09:00:00;") {
		t.Fatalf("statusLine = %q", got)
	}
}
