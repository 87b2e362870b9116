package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ToolStats counts how submissions to one tool ended.
type ToolStats struct {
	Submissions int `json:"submissions"`
	Successes   int `json:"successes"`
	Failures    int `json:"failures"`
	Validation  int `json:"validation"` // rejected before reaching the backend
	Stale       int `json:"stale"`      // superseded by a later submission
}

// MonthlyStats represents statistics for a specific month
type MonthlyStats struct {
	Tools       map[string]*ToolStats `json:"tools"`
	LastUpdated time.Time             `json:"last_updated"`
}

// Totals sums the counters of every tool.
func (m MonthlyStats) Totals() ToolStats {
	var t ToolStats
	for _, s := range m.Tools {
		t.Submissions += s.Submissions
		t.Successes += s.Successes
		t.Failures += s.Failures
		t.Validation += s.Validation
		t.Stale += s.Stale
	}
	return t
}

func (m MonthlyStats) clone() MonthlyStats {
	out := MonthlyStats{Tools: make(map[string]*ToolStats, len(m.Tools)), LastUpdated: m.LastUpdated}
	for k, v := range m.Tools {
		c := *v
		out.Tools[k] = &c
	}
	return out
}

// Storage handles persistent storage of statistics
type Storage struct {
	mutex       sync.RWMutex
	stats       map[string]*MonthlyStats // key: "YYYY-MM"
	visitors    map[string]time.Time     // client IP -> last visit
	filePath    string
	lastWrite   time.Time
	writeBuffer chan struct{}
	done        chan struct{}
	wg          sync.WaitGroup
	stopOnce    sync.Once
	logger      *zap.Logger
	now         func() time.Time
}

// NewStorage creates a new statistics storage instance
func NewStorage(dataDir string, logger *zap.Logger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{
		stats:       make(map[string]*MonthlyStats),
		visitors:    make(map[string]time.Time),
		filePath:    filepath.Join(dataDir, "stats.json"),
		writeBuffer: make(chan struct{}, 1),
		done:        make(chan struct{}),
		logger:      logger.Named("stats"),
		now:         time.Now,
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	s.wg.Add(1)
	go s.backgroundWriter()

	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var loaded map[string]*MonthlyStats
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.stats = make(map[string]*MonthlyStats, len(loaded))
	for month, m := range loaded {
		if m == nil {
			continue
		}
		if m.Tools == nil {
			m.Tools = make(map[string]*ToolStats)
		}
		for name, t := range m.Tools {
			if t == nil {
				delete(m.Tools, name)
			}
		}
		s.stats[month] = m
	}
	return nil
}

// save writes statistics to file
func (s *Storage) save() error {
	s.mutex.RLock()
	data, err := json.Marshal(s.stats)
	s.mutex.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	// Write to a temporary file first so readers never see a partial file.
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// backgroundWriter handles periodic writes to disk
func (s *Storage) backgroundWriter() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
		case <-ticker.C:
		case <-s.done:
			return
		}
		if err := s.save(); err != nil {
			s.logger.Error("failed to persist statistics", zap.Error(err))
		}
	}
}

func (s *Storage) month() string {
	return s.now().Format("2006-01")
}

// requestWrite signals that a write to disk is needed
func (s *Storage) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
	default:
		// a write is already pending
	}
}

// Observe records how one submission ended. outcome is "validation",
// "stale", "ok" or any failure label.
func (s *Storage) Observe(tool, outcome string) {
	now := s.now()
	month := now.Format("2006-01")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	m, ok := s.stats[month]
	if !ok {
		m = &MonthlyStats{}
		s.stats[month] = m
	}
	if m.Tools == nil {
		m.Tools = make(map[string]*ToolStats)
	}
	t, ok := m.Tools[tool]
	if !ok {
		t = &ToolStats{}
		m.Tools[tool] = t
	}

	switch outcome {
	case "validation":
		t.Validation++
	case "stale":
		t.Submissions++
		t.Stale++
	case "ok":
		t.Submissions++
		t.Successes++
	default:
		t.Submissions++
		t.Failures++
	}
	m.LastUpdated = now

	if now.Sub(s.lastWrite) > time.Minute {
		s.requestWrite()
		s.lastWrite = now
	}
}

// GetCurrentStats returns statistics for the current month
func (s *Storage) GetCurrentStats() MonthlyStats {
	stats, _ := s.GetMonthlyStats(s.month())
	return stats
}

// GetMonthlyStats returns statistics for a specific month
func (s *Storage) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[yearMonth]; exists {
		return stats.clone(), true
	}
	return MonthlyStats{Tools: map[string]*ToolStats{}}, false
}

// GetAllMonths returns all months that have statistics, newest first.
func (s *Storage) GetAllMonths() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.stats))
	for month := range s.stats {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

// Cleanup drops statistics older than retainMonths (the current month
// included) and forgets visitors not seen in a day.
func (s *Storage) Cleanup(retainMonths int) {
	if retainMonths < 1 {
		retainMonths = 1
	}
	now := s.now()
	keep := make(map[string]bool, retainMonths)
	for i := 0; i < retainMonths; i++ {
		keep[now.AddDate(0, -i, 0).Format("2006-01")] = true
	}

	s.mutex.Lock()
	var dropped []string
	for key := range s.stats {
		if !keep[key] {
			delete(s.stats, key)
			dropped = append(dropped, key)
		}
	}
	s.pruneVisitorsLocked(now)
	s.mutex.Unlock()

	s.requestWrite()
	s.logger.Debug("statistics cleaned up", zap.Int("retain_months", retainMonths), zap.Strings("dropped", dropped))
}

// Shutdown stops the background writer and persists a final snapshot.
func (s *Storage) Shutdown() error {
	s.stopOnce.Do(func() { close(s.done) })
	s.wg.Wait()
	return s.save()
}
