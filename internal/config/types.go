package config

// Config is the scheduler configuration.
//
// Sources, lowest precedence first: Default(), the optional YAML file, the
// process environment (after .env files are loaded), and CLI flags applied by
// the caller.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type Config struct {
	// ScheduleTime is the cadence string: "8h", "30m", "09:00" or "09:00,15:00,21:00".
	ScheduleTime string `yaml:"schedule_time" env:"SCHEDULE_TIME"`

	Checkin   CheckinConfig   `yaml:"checkin"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CheckinConfig describes the bound action.
//
// Command is split on whitespace; quoting is not supported.
type CheckinConfig struct {
	Command   string `yaml:"command" env:"CHECKIN_COMMAND"`
	Dir       string `yaml:"dir" env:"CHECKIN_DIR"`
	KillGrace string `yaml:"kill_grace" env:"CHECKIN_KILL_GRACE"`
}

type SchedulerConfig struct {
	PollInterval string `yaml:"poll_interval" env:"POLL_INTERVAL"`
	Timezone     string `yaml:"timezone" env:"TIMEZONE"`
	RunOnStart   bool   `yaml:"run_on_start" env:"RUN_ON_START"`
	HistorySize  int    `yaml:"history_size" env:"HISTORY_SIZE"`
}

type LoggingConfig struct {
	Level   string        `yaml:"level" env:"LOG_LEVEL"`
	Console bool          `yaml:"console" env:"LOG_CONSOLE"`
	File    LogFileConfig `yaml:"file"`
}

// LogFileConfig enables the rotated JSON log file when Path is set.
type LogFileConfig struct {
	Path       string `yaml:"path" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_FILE_MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_FILE_MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_FILE_MAX_AGE_DAYS"`
	Compress   bool   `yaml:"compress" env:"LOG_FILE_COMPRESS"`
}

const (
	DefaultScheduleTime = "8h"
	DefaultCommand      = "./checkin"
	DefaultPollInterval = "60s"
	DefaultKillGrace    = "10s"
	DefaultHistorySize  = 50
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ScheduleTime: DefaultScheduleTime,
		Checkin: CheckinConfig{
			Command:   DefaultCommand,
			KillGrace: DefaultKillGrace,
		},
		Scheduler: SchedulerConfig{
			PollInterval: DefaultPollInterval,
			RunOnStart:   true,
			HistorySize:  DefaultHistorySize,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}
