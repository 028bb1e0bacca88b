package engine

import (
	"context"
	"time"
)

// Config controls the task executor.
//
// There is no timeout: a task that hangs blocks its caller until
// the context is cancelled.
type Config struct {
	// HistorySize bounds the in-memory run history. 0 applies the default (50).
	HistorySize int
}

const defaultHistorySize = 50

// Task is a unit of work executed by the engine.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type HistoryItem struct {
	ID       string
	Name     string
	Started  time.Time
	Duration time.Duration
	ExitCode int // -1 when the error carries no exit status
	Error    string
}

// Snapshot is a lightweight view for diagnostics.
type Snapshot struct {
	Runs     uint64
	Failures uint64
	History  []HistoryItem
}
