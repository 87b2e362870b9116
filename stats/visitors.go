package stats

import "time"

const visitorWindow = 24 * time.Hour

// TrackVisitor records a unique visitor
func (s *Storage) TrackVisitor(ip string) {
	if ip == "" {
		return
	}
	now := s.now()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.visitors[ip] = now
}

// UniqueVisitors returns the number of distinct visitors in the last 24 hours.
func (s *Storage) UniqueVisitors() int {
	cutoff := s.now().Add(-visitorWindow)

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	count := 0
	for _, lastVisit := range s.visitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

func (s *Storage) pruneVisitorsLocked(now time.Time) {
	cutoff := now.Add(-visitorWindow)
	for ip, lastVisit := range s.visitors {
		if !lastVisit.After(cutoff) {
			delete(s.visitors, ip)
		}
	}
}

// Statistics summarises usage for the statistics endpoint. The per-tool
// breakdown and month history are only included in development mode.
func (s *Storage) Statistics(devMode bool) map[string]any {
	current := s.GetCurrentStats()
	totals := current.Totals()

	errorRate := 0.0
	if totals.Submissions > 0 {
		errorRate = float64(totals.Failures) / float64(totals.Submissions) * 100
	}

	out := map[string]any{
		"month":             s.month(),
		"uniqueVisitors24h": s.UniqueVisitors(),
		"totalRequests":     totals.Submissions,
		"errorRate":         errorRate,
	}
	if devMode {
		out["tools"] = current.Tools
		out["totals"] = totals
		out["months"] = s.GetAllMonths()
	}
	return out
}
