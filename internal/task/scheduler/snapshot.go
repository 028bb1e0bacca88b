package scheduler

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	items := make([]JobInfo, 0, len(s.order))
	for _, id := range s.order {
		j := s.jobs[id]
		if j == nil {
			continue
		}
		items = append(items, JobInfo{
			ID:       j.id,
			Name:     j.name,
			Cadence:  j.cadence.String(),
			Next:     j.next,
			Prev:     j.prev,
			Runs:     j.runs,
			Failures: j.failures,
			LastErr:  j.lastErr,
		})
	}
	s.mu.Unlock()

	snap := Snapshot{
		Timezone:     s.loc.String(),
		PollInterval: s.cfg.PollInterval,
		Jobs:         items,
		Executor:     s.exec.Snapshot(),
	}
	for _, it := range items {
		if snap.Next.IsZero() || it.Next.Before(snap.Next) {
			snap.Next = it.Next
		}
	}
	return snap
}
