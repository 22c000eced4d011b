package util

import "time"

// Stopwatch measures wall-clock time for a single decision request.
type Stopwatch struct {
	started time.Time
}

// StartTimer begins timing now.
func StartTimer() Stopwatch {
	return Stopwatch{started: time.Now()}
}

// Elapsed reports the duration since the stopwatch started.
func (s Stopwatch) Elapsed() time.Duration {
	if s.started.IsZero() {
		return 0
	}
	return time.Since(s.started)
}

// ElapsedMs reports whole milliseconds since start. A zero-value stopwatch
// reports zero.
func (s Stopwatch) ElapsedMs() int64 {
	ms := s.Elapsed().Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}
