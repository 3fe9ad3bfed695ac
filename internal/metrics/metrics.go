package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched      int64
	FeedsFailed       int64
	ArticlesAccepted  int64
	ArticlesSkipped   int64
	ModelSummaries    int64
	FallbackSummaries int64
	AudioPrimary      int64
	AudioSecondary    int64
	AudioFailed       int64
	CacheHits         int64
	CacheMisses       int64

	// Timings
	LastRefreshTime    time.Duration
	AverageRefreshTime time.Duration
	TotalRefreshTime   time.Duration
	RefreshCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) add(counter *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter++
}

func (m *Metrics) IncrementFeedsFetched()      { m.add(&m.FeedsFetched) }
func (m *Metrics) IncrementFeedsFailed()       { m.add(&m.FeedsFailed) }
func (m *Metrics) IncrementArticlesAccepted()  { m.add(&m.ArticlesAccepted) }
func (m *Metrics) IncrementArticlesSkipped()   { m.add(&m.ArticlesSkipped) }
func (m *Metrics) IncrementModelSummaries()    { m.add(&m.ModelSummaries) }
func (m *Metrics) IncrementFallbackSummaries() { m.add(&m.FallbackSummaries) }
func (m *Metrics) IncrementAudioPrimary()      { m.add(&m.AudioPrimary) }
func (m *Metrics) IncrementAudioSecondary()    { m.add(&m.AudioSecondary) }
func (m *Metrics) IncrementAudioFailed()       { m.add(&m.AudioFailed) }
func (m *Metrics) IncrementCacheHits()         { m.add(&m.CacheHits) }
func (m *Metrics) IncrementCacheMisses()       { m.add(&m.CacheMisses) }

func (m *Metrics) RecordRefreshTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRefreshTime = duration
	m.TotalRefreshTime += duration
	m.RefreshCount++

	if m.RefreshCount > 0 {
		m.AverageRefreshTime = m.TotalRefreshTime / time.Duration(m.RefreshCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
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
		"feeds_fetched":           m.FeedsFetched,
		"feeds_failed":            m.FeedsFailed,
		"articles_accepted":       m.ArticlesAccepted,
		"articles_skipped":        m.ArticlesSkipped,
		"model_summaries":         m.ModelSummaries,
		"fallback_summaries":      m.FallbackSummaries,
		"audio_primary":           m.AudioPrimary,
		"audio_secondary":         m.AudioSecondary,
		"audio_failed":            m.AudioFailed,
		"cache_hits":              m.CacheHits,
		"cache_misses":            m.CacheMisses,
		"last_refresh_time_ms":    m.LastRefreshTime.Milliseconds(),
		"average_refresh_time_ms": m.AverageRefreshTime.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
