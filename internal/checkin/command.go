// Package checkin runs the check-in task as an isolated subprocess.
//
// The child inherits stdout/stderr so its output shows up in real time; only its
// exit status is inspected. Running out of process means the task exiting (or
// crashing) can never take the scheduler down with it.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	logx "cadenced/pkg/logx"
)

var (
	ErrNonZeroExit = errors.New("check-in exited with non-zero status")
	ErrStart       = errors.New("check-in could not be started")
)

const defaultKillGrace = 10 * time.Second

type Config struct {
	// Argv is the command and its arguments.
	Argv []string
	// Dir is the working directory. Empty means the directory of the running executable.
	Dir string
	// KillGrace is how long the child gets after SIGINT before it is killed.
	KillGrace time.Duration
	// Env is appended to the inherited environment.
	Env []string
}

// ExitError reports a non-zero exit status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string        { return fmt.Sprintf("exit status %d", e.Code) }
func (e *ExitError) ExitCode() int        { return e.Code }
func (e *ExitError) Is(target error) bool { return target == ErrNonZeroExit }

type Command struct {
	cfg Config
	log logx.Logger
}

func New(cfg Config, log logx.Logger) (*Command, error) {
	if len(cfg.Argv) == 0 || strings.TrimSpace(cfg.Argv[0]) == "" {
		return nil, errors.New("check-in command required")
	}
	if cfg.KillGrace <= 0 {
		cfg.KillGrace = defaultKillGrace
	}
	if strings.TrimSpace(cfg.Dir) == "" {
		dir, err := InstallDir()
		if err != nil {
			return nil, err
		}
		cfg.Dir = dir
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Command{cfg: cfg, log: log}, nil
}

// InstallDir returns the directory containing the running executable.
func InstallDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

func (c *Command) Dir() string    { return c.cfg.Dir }
func (c *Command) Argv() []string { return append([]string(nil), c.cfg.Argv...) }

// Run starts the command and waits for it. There is no timeout; on ctx
// cancellation the child gets SIGINT, then SIGKILL after KillGrace.
func (c *Command) Run(ctx context.Context) error {
	name := c.resolve(c.cfg.Argv[0])
	cmd := exec.CommandContext(ctx, name, c.cfg.Argv[1:]...)
	cmd.Dir = c.cfg.Dir
	cmd.Stdin = nil
	cmd.Stdout = logx.Stdout()
	cmd.Stderr = logx.Stderr()
	if len(c.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), c.cfg.Env...)
	}
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGINT) }
	cmd.WaitDelay = c.cfg.KillGrace

	if c.log.Enabled(logx.LevelDebug) {
		c.log.Debug("spawning check-in",
			logx.String("cmd", name),
			logx.String("args", strings.Join(c.cfg.Argv[1:], " ")),
			logx.String("dir", cmd.Dir),
		)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %w", ErrStart, err)
	}
	err := cmd.Wait()
	if err == nil {
		return nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		code := ee.ExitCode()
		if code < 0 {
			// Terminated by a signal.
			return fmt.Errorf("check-in terminated: %w", err)
		}
		return &ExitError{Code: code}
	}
	return err
}

// resolve makes relative paths with a separator ("./checkin", "bin/checkin")
// relative to the working directory instead of the scheduler's cwd. Bare names
// are looked up on PATH.
func (c *Command) resolve(name string) string {
	if filepath.IsAbs(name) || !strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(c.cfg.Dir, name)
}
