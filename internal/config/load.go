package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	yaml "go.yaml.in/yaml/v3"
)

// DefaultEnvFile is loaded when no env files are given and it exists in the
// working directory or next to the executable.
const DefaultEnvFile = ".env"

const (
	defaultPoll     = 60 * time.Second
	minPollInterval = time.Second
)

type LoadOptions struct {
	// EnvFiles are loaded into the process environment, overriding variables
	// that are already set. Explicitly listed files must exist.
	EnvFiles []string
	// Path is an optional YAML config file.
	Path string
}

// Load builds the configuration from defaults, the YAML file and the environment.
func Load(opts LoadOptions) (*Config, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	cfg := Default()
	if p := strings.TrimSpace(opts.Path); p != "" {
		if err := decodeYAMLFile(p, &cfg); err != nil {
			return nil, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		p, ok := findDefaultEnvFile()
		if !ok {
			// The default .env is optional.
			return nil
		}
		files = []string{p}
	}
	if err := godotenv.Overload(files...); err != nil {
		return fmt.Errorf("load env files %v: %w", files, err)
	}
	return nil
}

// executableDir is replaced in tests.
var executableDir = func() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// findDefaultEnvFile looks for .env in the working directory, then next to
// the executable.
func findDefaultEnvFile() (string, bool) {
	candidates := []string{DefaultEnvFile}
	if dir, err := executableDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, DefaultEnvFile))
	}
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}

func decodeYAMLFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("yaml %s: %w", path, err)
	}
	return nil
}

// Validate checks fields that have no safe fallback. ScheduleTime is not checked
// here: an invalid cadence falls back to the default at startup.
func (c *Config) Validate() error {
	poll, err := c.PollInterval()
	if err != nil {
		return err
	}
	if poll < minPollInterval {
		return fmt.Errorf("scheduler.poll_interval: must be >= %s", minPollInterval)
	}
	if _, err := c.KillGrace(); err != nil {
		return err
	}
	if len(c.CommandArgv()) == 0 {
		return errors.New("checkin.command: required")
	}
	if c.Scheduler.HistorySize < 0 {
		return errors.New("scheduler.history_size: must be >= 0")
	}
	return nil
}

func (c *Config) PollInterval() (time.Duration, error) {
	return ParseDurationOrDefault("scheduler.poll_interval", c.Scheduler.PollInterval, defaultPoll)
}

func (c *Config) KillGrace() (time.Duration, error) {
	return ParseDurationField("checkin.kill_grace", c.Checkin.KillGrace)
}

// CommandArgv splits the check-in command on whitespace.
func (c *Config) CommandArgv() []string {
	return strings.Fields(c.Checkin.Command)
}
