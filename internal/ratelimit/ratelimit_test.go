package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsbreeze/internal/logger"
)

func TestBudget_Limit(t *testing.T) {
	b := NewBudget(map[string]int{KindSummarizer: 2}, logger.Discard())

	require.NoError(t, b.Use(KindSummarizer))
	require.NoError(t, b.Use(KindSummarizer))
	assert.Error(t, b.Use(KindSummarizer))
	assert.Equal(t, 2, b.GetStats()["summarizer_used"], "rejected calls are not counted")
}

func TestBudget_UnlimitedKinds(t *testing.T) {
	b := NewBudget(map[string]int{KindTTS: 0}, logger.Discard())

	for i := 0; i < 100; i++ {
		require.NoError(t, b.Use(KindTTS))
	}
	// kinds with no configured limit are unlimited too
	assert.NoError(t, b.Use(KindSummarizer))
}

func TestBudget_DailyReset(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	b := NewBudget(map[string]int{KindTTS: 1}, logger.Discard())
	b.now = func() time.Time { return now }
	b.resetTime = now.Add(24 * time.Hour)

	require.NoError(t, b.Use(KindTTS))
	assert.Error(t, b.Use(KindTTS))

	now = now.Add(25 * time.Hour)
	assert.Equal(t, 0, b.GetStats()["tts_used"])
	require.NoError(t, b.Use(KindTTS))
	assert.Equal(t, now.Add(24*time.Hour).Format(time.RFC3339), b.GetStats()["reset_time"])
}

func TestBudget_Allow(t *testing.T) {
	b := NewBudget(map[string]int{KindSummarizer: 1}, logger.Discard())
	assert.True(t, b.Allow(KindSummarizer))
	assert.False(t, b.Allow(KindSummarizer))

	var nilBudget *Budget
	assert.True(t, nilBudget.Allow(KindTTS))
}

func TestBudget_GetStats(t *testing.T) {
	b := NewBudget(map[string]int{KindSummarizer: 5, KindTTS: 3}, logger.Discard())
	require.NoError(t, b.Use(KindTTS))

	stats := b.GetStats()
	assert.Equal(t, 1, stats["tts_used"])
	assert.Equal(t, 3, stats["tts_limit"])
	assert.Equal(t, 0, stats["summarizer_used"])
	assert.Contains(t, stats, "reset_time")
}
