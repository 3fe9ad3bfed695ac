package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
	ProviderNone        = "none"
)

// DefaultUserAgent is sent on feed requests; some feed hosts reject Go's default client string.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

type Config struct {
	// HTTP settings
	HTTPAddr string

	// Feed settings
	FeedsConfigPath  string
	Feeds            []Feed
	FetchTimeout     time.Duration
	UserAgent        string
	MaxPerSource     int
	MaxArticles      int
	MinContentLength int

	// Cache settings
	CacheDuration    time.Duration
	PrefetchInterval time.Duration // 0 disables background refresh

	// Summarizer settings
	SummarizerProvider string // huggingface | gemini | none
	HuggingFaceAPIKey  string
	HuggingFaceModel   string
	HuggingFaceAPIURL  string
	GeminiAPIKey       string
	GeminiModel        string
	MaxModelRequests   int // per day, 0 = unlimited
	ModelConcurrency   int

	// Audio settings
	AudioDir        string
	GoogleTTSURL    string
	TTSLanguage     string
	CloudTTSEnabled bool
	MaxTTSRequests  int // per day, 0 = unlimited
	EspeakPath      string

	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		HTTPAddr:           ":8000",
		FeedsConfigPath:    "configs/feeds.yaml",
		FetchTimeout:       15 * time.Second,
		UserAgent:          DefaultUserAgent,
		MaxPerSource:       5,
		MaxArticles:        20,
		MinContentLength:   50,
		CacheDuration:      3600 * time.Second,
		SummarizerProvider: ProviderHuggingFace,
		HuggingFaceModel:   "Falconsai/text_summarization",
		HuggingFaceAPIURL:  "https://api-inference.huggingface.co/models",
		GeminiModel:        "gemini-1.5-flash",
		ModelConcurrency:   1,
		AudioDir:           "audio",
		GoogleTTSURL:       "https://translate.google.com",
		TTSLanguage:        "en",
		CloudTTSEnabled:    true,
		EspeakPath:         "espeak-ng",
	}

	cfg.HTTPAddr = getEnvOrDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.UserAgent = getEnvOrDefault("FEED_USER_AGENT", cfg.UserAgent)

	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.FetchTimeout = d
		}
	}
	cfg.MaxPerSource = getEnvIntOrDefault("MAX_PER_SOURCE", cfg.MaxPerSource)
	cfg.MaxArticles = getEnvIntOrDefault("MAX_ARTICLES", cfg.MaxArticles)
	cfg.MinContentLength = getEnvIntOrDefault("MIN_CONTENT_LENGTH", cfg.MinContentLength)

	if secs := getEnvIntOrDefault("CACHE_DURATION_SECONDS", 0); secs != 0 {
		cfg.CacheDuration = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("PREFETCH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.PrefetchInterval = d
		}
	}

	cfg.SummarizerProvider = getEnvOrDefault("SUMMARIZER_PROVIDER", cfg.SummarizerProvider)
	cfg.HuggingFaceAPIKey = os.Getenv("HUGGINGFACE_API_KEY")
	cfg.HuggingFaceModel = getEnvOrDefault("HUGGINGFACE_MODEL", cfg.HuggingFaceModel)
	cfg.HuggingFaceAPIURL = getEnvOrDefault("HUGGINGFACE_API_URL", cfg.HuggingFaceAPIURL)
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.MaxModelRequests = getEnvIntOrDefault("MAX_MODEL_REQUESTS", cfg.MaxModelRequests)
	cfg.ModelConcurrency = getEnvIntOrDefault("MODEL_CONCURRENCY", cfg.ModelConcurrency)

	cfg.AudioDir = getEnvOrDefault("AUDIO_DIR", cfg.AudioDir)
	cfg.GoogleTTSURL = getEnvOrDefault("GOOGLE_TTS_URL", cfg.GoogleTTSURL)
	cfg.TTSLanguage = getEnvOrDefault("TTS_LANGUAGE", cfg.TTSLanguage)
	if v := os.Getenv("CLOUD_TTS_ENABLED"); v != "" {
		cfg.CloudTTSEnabled = v == "true"
	}
	cfg.MaxTTSRequests = getEnvIntOrDefault("MAX_TTS_REQUESTS", cfg.MaxTTSRequests)
	cfg.EspeakPath = getEnvOrDefault("ESPEAK_PATH", cfg.EspeakPath)

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	feeds, err := LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.Feeds = feeds

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if len(c.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}
	seen := make(map[string]struct{}, len(c.Feeds))
	for i, f := range c.Feeds {
		if f.Name == "" {
			return fmt.Errorf("feed %d: name is required", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("feed %q: duplicate name", f.Name)
		}
		seen[f.Name] = struct{}{}
		u, err := url.Parse(f.URL)
		if err != nil {
			return fmt.Errorf("feed %q: invalid url: %w", f.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("feed %q: url scheme must be http or https, got %q", f.Name, u.Scheme)
		}
	}
	if c.MaxPerSource <= 0 {
		return fmt.Errorf("MAX_PER_SOURCE must be positive")
	}
	if c.MaxArticles <= 0 {
		return fmt.Errorf("MAX_ARTICLES must be positive")
	}
	if c.MinContentLength < 0 {
		return fmt.Errorf("MIN_CONTENT_LENGTH must not be negative")
	}
	if c.CacheDuration <= 0 {
		return fmt.Errorf("CACHE_DURATION_SECONDS must be positive")
	}
	if c.ModelConcurrency <= 0 {
		return fmt.Errorf("MODEL_CONCURRENCY must be positive")
	}
	switch c.SummarizerProvider {
	case ProviderHuggingFace, ProviderGemini, ProviderNone:
	default:
		return fmt.Errorf("SUMMARIZER_PROVIDER must be one of %q, %q, %q", ProviderHuggingFace, ProviderGemini, ProviderNone)
	}
	if c.AudioDir == "" {
		return fmt.Errorf("AUDIO_DIR is required")
	}
	return nil
}
