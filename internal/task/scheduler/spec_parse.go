package scheduler

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind describes the normalized kind of a cadence string.
type Kind int

const (
	KindInterval Kind = iota + 1
	KindDaily
)

func (k Kind) String() string {
	switch k {
	case KindInterval:
		return "interval"
	case KindDaily:
		return "daily"
	default:
		return "unknown"
	}
}

// Unit is the unit of an interval cadence.
type Unit int

const (
	UnitMinutes Unit = iota + 1
	UnitHours
)

func (u Unit) duration() time.Duration {
	if u == UnitHours {
		return time.Hour
	}
	return time.Minute
}

// maxCount is the largest count whose interval still fits in a time.Duration.
func (u Unit) maxCount() int {
	return int(math.MaxInt64 / int64(u.duration()))
}

func (u Unit) suffix() string {
	if u == UnitHours {
		return "h"
	}
	return "m"
}

// TimeOfDay is a 24h wall-clock time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// Cadence is a parsed cadence string.
//
// Supported forms:
//   - Interval: "8h" / "8H" (every 8 hours), "30m" / "30M" (every 30 minutes)
//   - Daily: "09:00" or "09:00,15:00,21:00" (every day at each listed time)
type Cadence struct {
	Kind  Kind
	Unit  Unit
	Count int
	Times []TimeOfDay
}

// DefaultSpec is used when no cadence is configured or the configured one is invalid.
const DefaultSpec = "8h"

// DefaultCadence fires every 8 hours.
var DefaultCadence = Every(UnitHours, 8)

// Every returns an interval cadence.
func Every(unit Unit, count int) Cadence {
	return Cadence{Kind: KindInterval, Unit: unit, Count: count}
}

// DailyAt returns a daily cadence firing at each of times.
func DailyAt(times ...TimeOfDay) Cadence {
	return Cadence{Kind: KindDaily, Times: append([]TimeOfDay(nil), times...)}
}

// Duration returns the interval length; zero for daily cadences.
func (c Cadence) Duration() time.Duration {
	if c.Kind != KindInterval {
		return 0
	}
	return time.Duration(c.Count) * c.Unit.duration()
}

// String renders the canonical cadence string ("8h", "09:00,15:00").
func (c Cadence) String() string {
	switch c.Kind {
	case KindInterval:
		return strconv.Itoa(c.Count) + c.Unit.suffix()
	case KindDaily:
		parts := make([]string, 0, len(c.Times))
		for _, t := range c.Times {
			parts = append(parts, t.String())
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// Describe returns a short human phrase for logs ("every 8 hours", "daily at 09:00").
func (c Cadence) Describe() string {
	switch c.Kind {
	case KindInterval:
		unit := "minutes"
		if c.Unit == UnitHours {
			unit = "hours"
		}
		return fmt.Sprintf("every %d %s", c.Count, unit)
	case KindDaily:
		return "daily at " + c.String()
	default:
		return "unknown"
	}
}

var reHHMM = regexp.MustCompile(`^(\d{2}):(\d{2})$`)

// ParseCadence parses a cadence string.
//
// Shapes are tested in order: anything containing ':' is a daily list, then an
// 'h'/'H' suffix, then an 'm'/'M' suffix. Duplicate daily times are dropped,
// keeping the first occurrence. Interval counts must be > 0 and small enough
// for the interval to fit in a time.Duration. Daily times are two-digit HH:MM.
func ParseCadence(raw string) (Cadence, error) {
	s := strings.TrimSpace(raw)

	if strings.Contains(s, ":") {
		times, err := parseDailyTimes(s)
		if err != nil {
			return Cadence{}, invalidCadence(raw, err.Error())
		}
		return DailyAt(times...), nil
	}

	low := strings.ToLower(s)
	switch {
	case strings.HasSuffix(low, "h"):
		n, err := parseCount(s[:len(s)-1], UnitHours)
		if err != nil {
			return Cadence{}, invalidCadence(raw, "hours: "+err.Error())
		}
		return Every(UnitHours, n), nil
	case strings.HasSuffix(low, "m"):
		n, err := parseCount(s[:len(s)-1], UnitMinutes)
		if err != nil {
			return Cadence{}, invalidCadence(raw, "minutes: "+err.Error())
		}
		return Every(UnitMinutes, n), nil
	}

	return Cadence{}, invalidCadence(raw, "")
}

func parseCount(v string, unit Unit) (int, error) {
	v = strings.TrimSpace(v)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", v)
	}
	if n <= 0 {
		return 0, fmt.Errorf("count must be > 0, got %d", n)
	}
	if n > unit.maxCount() {
		return 0, fmt.Errorf("count must be <= %d, got %d", unit.maxCount(), n)
	}
	return n, nil
}

func parseDailyTimes(s string) ([]TimeOfDay, error) {
	parts := strings.Split(s, ",")
	out := make([]TimeOfDay, 0, len(parts))
	seen := make(map[TimeOfDay]struct{}, len(parts))
	for _, p := range parts {
		t, err := parseTimeOfDay(p)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

func parseTimeOfDay(v string) (TimeOfDay, error) {
	v = strings.TrimSpace(v)
	m := reHHMM.FindStringSubmatch(v)
	if len(m) != 3 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q, expected HH:MM", v)
	}
	h, _ := strconv.Atoi(m[1])
	if h > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", v)
	}
	mm, _ := strconv.Atoi(m[2])
	if mm > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", v)
	}
	return TimeOfDay{Hour: h, Minute: mm}, nil
}
