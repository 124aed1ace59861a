// Package observability tracks per-session command and record fetch statistics.
package observability

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// FetchSource says where a record's text came from.
type FetchSource int

const (
	FetchCache FetchSource = iota
	FetchStore
)

// SessionStats accumulates counters for one command session.
type SessionStats struct {
	mu        sync.RWMutex
	started   time.Time
	commands  map[string]*CommandStats
	fetches   [2]int64
	bloomSkip int64
}

// CommandStats holds statistics for one command kind.
type CommandStats struct {
	Command   string
	Frequency int64
	Failures  int64
	Total     time.Duration
	LastSeen  time.Time
}

// Average returns the mean duration per execution.
func (c CommandStats) Average() time.Duration {
	if c.Frequency == 0 {
		return 0
	}
	return c.Total / time.Duration(c.Frequency)
}

// NewSessionStats creates an empty tracker.
func NewSessionStats() *SessionStats {
	return &SessionStats{
		started:  time.Now(),
		commands: make(map[string]*CommandStats),
	}
}

// RecordCommand records one executed command.
func (s *SessionStats) RecordCommand(command string, elapsed time.Duration, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, exists := s.commands[command]
	if !exists {
		stats = &CommandStats{Command: command}
		s.commands[command] = stats
	}
	stats.Frequency++
	stats.Total += elapsed
	stats.LastSeen = time.Now()
	if failed {
		stats.Failures++
	}
}

// RecordFetch records where one record was served from.
func (s *SessionStats) RecordFetch(src FetchSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches[src]++
}

// RecordBloomSkip records a name lookup answered by the bloom filter alone.
func (s *SessionStats) RecordBloomSkip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bloomSkip++
}

// Fetches returns the number of records served from the cache and the store.
func (s *SessionStats) Fetches() (cache, store int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetches[FetchCache], s.fetches[FetchStore]
}

// BloomSkips returns the number of lookups the bloom filter short-circuited.
func (s *SessionStats) BloomSkips() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bloomSkip
}

// Top returns copies of the n most frequent commands, most frequent first.
// Ties are broken by command name.
func (s *SessionStats) Top(n int) []CommandStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || len(s.commands) == 0 {
		return []CommandStats{}
	}

	stats := make([]CommandStats, 0, len(s.commands))
	for _, c := range s.commands {
		stats = append(stats, *c)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Frequency != stats[j].Frequency {
			return stats[i].Frequency > stats[j].Frequency
		}
		return stats[i].Command < stats[j].Command
	})

	if n > len(stats) {
		n = len(stats)
	}
	return stats[:n]
}

// Display writes a summary of the session so far.
func (s *SessionStats) Display(w io.Writer) error {
	cache, store := s.Fetches()
	top := s.Top(len(s.commands))

	s.mu.RLock()
	elapsed := time.Since(s.started).Round(time.Millisecond)
	skips := s.bloomSkip
	s.mu.RUnlock()

	if _, err := fmt.Fprintf(w, "Session time: %s\nRecords from cache: %d\nRecords from file: %d\nName lookups skipped by filter: %d\n",
		elapsed, cache, store, skips); err != nil {
		return err
	}
	for _, c := range top {
		if _, err := fmt.Fprintf(w, "   %-12s %5d run  %3d failed  avg %s\n",
			c.Command, c.Frequency, c.Failures, c.Average()); err != nil {
			return err
		}
	}
	return nil
}
