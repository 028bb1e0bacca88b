package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"cadenced/internal/task/engine"
	logx "cadenced/pkg/logx"
)

const previewLayout = "2006-01-02 15:04:05"

var dailyParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Register binds action to cadence c and returns the created job IDs.
//
// Interval cadences create one job due at now+interval, with now truncated to
// the second. Daily cadences create one job per listed time, due at today's
// occurrence if still ahead, else tomorrow's.
func (s *Service) Register(c Cadence, name string, action Action) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name required")
	}
	if action == nil {
		return nil, errors.New("action required")
	}

	units, err := s.jobUnits(c)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range units {
		if _, ok := s.jobs[name+"/"+u.cadence.String()]; ok {
			return nil, fmt.Errorf("%w: %s/%s", ErrDuplicateJob, name, u.cadence.String())
		}
	}

	now := s.now()
	ids := make([]string, 0, len(units))
	for _, u := range units {
		j := &job{
			id:      name + "/" + u.cadence.String(),
			name:    name,
			cadence: u.cadence,
			sched:   u.sched,
			action:  action,
			next:    u.sched.Next(now),
		}
		s.jobs[j.id] = j
		s.order = append(s.order, j.id)
		ids = append(ids, j.id)
		s.log.Info("schedule registered",
			logx.String("id", j.id),
			logx.String("cadence", j.cadence.Describe()),
			logx.String("next", j.next.Format(previewLayout)),
		)
	}
	s.regs = append(s.regs, registration{name: name, cadence: c, action: action})
	return ids, nil
}

// Tick fires every job whose due time has passed, in registration order, and
// returns how many fired. Jobs not yet due are left untouched.
func (s *Service) Tick(ctx context.Context) int {
	now := s.now()

	s.mu.Lock()
	due := make([]*job, 0, len(s.order))
	for _, id := range s.order {
		if j := s.jobs[id]; j != nil && !j.next.After(now) {
			due = append(due, j)
		}
	}
	s.mu.Unlock()

	fired := 0
	for _, j := range due {
		if ctx.Err() != nil {
			break
		}
		started := s.now()
		err := s.exec.Run(ctx, engine.Task{Name: j.id, Run: j.action})
		fired++

		s.mu.Lock()
		j.prev = started
		j.runs++
		if err != nil {
			j.failures++
			j.lastErr = err.Error()
		} else {
			j.lastErr = ""
		}
		skipped := s.advanceLocked(j, s.now())
		next := j.next
		s.mu.Unlock()

		fields := []logx.Field{logx.String("id", j.id), logx.String("next", next.Format(previewLayout))}
		if skipped > 0 {
			fields = append(fields, logx.Int("skipped", skipped))
		}
		if err != nil {
			s.log.Warn("run failed; waiting for next due time", append(fields, logx.Err(err))...)
		} else {
			s.log.Info("run complete", fields...)
		}
	}
	return fired
}

// advanceLocked moves j.next past now. Interval jobs step from their previous
// due time so the cadence does not drift; slots already in the past are skipped
// and counted. Daily jobs move to the next occurrence after now.
func (s *Service) advanceLocked(j *job, now time.Time) int {
	if j.cadence.Kind != KindInterval {
		j.next = j.sched.Next(now)
		return 0
	}
	next := j.sched.Next(j.next)
	skipped := 0
	for !next.After(now) {
		next = j.sched.Next(next)
		skipped++
	}
	j.next = next
	return skipped
}

// NextDue returns the earliest due time across all jobs (zero if none).
func (s *Service) NextDue() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	var min time.Time
	for _, id := range s.order {
		j := s.jobs[id]
		if j == nil {
			continue
		}
		if min.IsZero() || j.next.Before(min) {
			min = j.next
		}
	}
	return min
}

// Preview returns the next n due times for c as if it were registered now.
func (s *Service) Preview(c Cadence, n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, nil
	}
	units, err := s.jobUnits(c)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, n*len(units))
	now := s.now()
	for _, u := range units {
		t := now
		for i := 0; i < n; i++ {
			t = u.sched.Next(t)
			if t.IsZero() {
				break
			}
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Before(out[k]) })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

type jobUnit struct {
	cadence Cadence
	sched   cron.Schedule
}

// jobUnits splits c into independently scheduled units with their cron schedules.
func (s *Service) jobUnits(c Cadence) ([]jobUnit, error) {
	switch c.Kind {
	case KindInterval:
		if c.Unit != UnitHours && c.Unit != UnitMinutes {
			return nil, invalidCadence(c.String(), "unknown interval unit")
		}
		if c.Count <= 0 || c.Count > c.Unit.maxCount() {
			return nil, invalidCadence(c.String(), fmt.Sprintf("interval count must be in 1..%d", c.Unit.maxCount()))
		}
		return []jobUnit{{cadence: c, sched: cron.Every(c.Duration())}}, nil
	case KindDaily:
		if len(c.Times) == 0 {
			return nil, invalidCadence(c.String(), "no times listed")
		}
		units := make([]jobUnit, 0, len(c.Times))
		for _, t := range c.Times {
			sched, err := s.dailySchedule(t)
			if err != nil {
				return nil, err
			}
			units = append(units, jobUnit{cadence: DailyAt(t), sched: sched})
		}
		return units, nil
	default:
		return nil, invalidCadence(c.String(), "unknown cadence kind")
	}
}

func (s *Service) dailySchedule(t TimeOfDay) (cron.Schedule, error) {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return nil, invalidCadence(t.String(), "time out of range")
	}
	sched, err := dailyParser.Parse(fmt.Sprintf("%d %d * * *", t.Minute, t.Hour))
	if err != nil {
		return nil, err
	}
	if ss, ok := sched.(*cron.SpecSchedule); ok {
		ss.Location = s.loc
	}
	return sched, nil
}
