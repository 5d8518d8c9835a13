package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesFetched    int64
	CandidatesSelected int64
	DuplicatesSkipped  int64
	SummaryFailures    int64
	TweetsPosted       int64
	ThreadsPublished   int64

	// Timings
	LastRunDuration time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddArticlesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched += int64(n)
}

func (m *Metrics) AddCandidatesSelected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CandidatesSelected += int64(n)
}

func (m *Metrics) IncrementDuplicatesSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesSkipped++
}

func (m *Metrics) IncrementSummaryFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryFailures++
}

func (m *Metrics) IncrementTweetsPosted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TweetsPosted++
}

func (m *Metrics) IncrementThreadsPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ThreadsPublished++
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunDuration = duration
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_fetched":     m.ArticlesFetched,
		"candidates_selected":  m.CandidatesSelected,
		"duplicates_skipped":   m.DuplicatesSkipped,
		"summary_failures":     m.SummaryFailures,
		"tweets_posted":        m.TweetsPosted,
		"threads_published":    m.ThreadsPublished,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
}
