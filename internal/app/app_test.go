package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsbreeze/internal/config"
	"github.com/deusflow/newsbreeze/internal/logger"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		HTTPAddr:           "127.0.0.1:0",
		Feeds:              []config.Feed{{Name: "Local", URL: "http://127.0.0.1:1/rss"}},
		FetchTimeout:       time.Second,
		UserAgent:          config.DefaultUserAgent,
		MaxPerSource:       5,
		MaxArticles:        20,
		MinContentLength:   50,
		CacheDuration:      time.Hour,
		SummarizerProvider: config.ProviderNone,
		ModelConcurrency:   1,
		AudioDir:           filepath.Join(t.TempDir(), "audio"),
		CloudTTSEnabled:    false,
		EspeakPath:         filepath.Join(t.TempDir(), "no-such-espeak"),
		TTSLanguage:        "en",
	}
}

func TestNew_WiresHandlers(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), logger.Discard())
	require.NoError(t, err)
	assert.Nil(t, a.worker)

	rec := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ModelsLoaded map[string]string `json:"models_loaded"`
		RSSFeeds     []string          `json:"rss_feeds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_loaded", body.ModelsLoaded["summarizer"])
	assert.Equal(t, "not_loaded", body.ModelsLoaded["tts"])
	assert.Equal(t, []string{"Local"}, body.RSSFeeds)
}

func TestNew_UnreachableFeedStillServesNews(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), logger.Discard())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/news", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"news":[],"cached":false}`, rec.Body.String())
}

func TestNew_PrefetchWorker(t *testing.T) {
	cfg := testConfig(t)
	cfg.PrefetchInterval = time.Minute

	a, err := New(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	require.NotNil(t, a.worker)
}

func TestNew_HuggingFaceWithoutKeyFallsBack(t *testing.T) {
	cfg := testConfig(t)
	cfg.SummarizerProvider = config.ProviderHuggingFace

	a, err := New(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Contains(t, rec.Body.String(), `"summarizer":"not_loaded"`)
}
