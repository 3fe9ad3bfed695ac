package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/deusflow/newsbreeze/internal/cache"
	"github.com/deusflow/newsbreeze/internal/config"
	"github.com/deusflow/newsbreeze/internal/gemini"
	"github.com/deusflow/newsbreeze/internal/httpapi"
	"github.com/deusflow/newsbreeze/internal/news"
	"github.com/deusflow/newsbreeze/internal/ratelimit"
	"github.com/deusflow/newsbreeze/internal/rss"
	"github.com/deusflow/newsbreeze/internal/summarize"
	"github.com/deusflow/newsbreeze/internal/voice"
	"github.com/deusflow/newsbreeze/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// App owns the HTTP server, the prefetch worker and the services behind them.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	server   *http.Server
	worker   *worker.Worker
	closers  []func()
	stopChan chan os.Signal
	wg       sync.WaitGroup
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{
		config:   cfg,
		logger:   log,
		stopChan: make(chan os.Signal, 1),
	}

	budget := ratelimit.NewBudget(map[string]int{
		ratelimit.KindSummarizer: cfg.MaxModelRequests,
		ratelimit.KindTTS:        cfg.MaxTTSRequests,
	}, log)

	model, err := a.newModel(ctx)
	if err != nil {
		return nil, err
	}
	summarizer := summarize.NewService(model, int64(cfg.ModelConcurrency), budget, log)

	audio := voice.NewService(cfg.AudioDir, a.newPrimaryEngine(), a.newSecondaryEngine(ctx), budget, log)

	sources := make([]rss.Source, 0, len(cfg.Feeds))
	for _, f := range cfg.Feeds {
		sources = append(sources, rss.Source{Name: f.Name, URL: f.URL})
	}
	fetcher := rss.NewFetcher(rss.Options{
		Timeout:          cfg.FetchTimeout,
		UserAgent:        cfg.UserAgent,
		MaxEntries:       cfg.MaxPerSource,
		MinContentLength: cfg.MinContentLength,
	}, log)
	newsService := news.NewService(sources, fetcher, summarizer, cache.New[[]news.Item](cfg.CacheDuration), cfg.MaxArticles, log)

	if cfg.PrefetchInterval > 0 {
		refresh := worker.RefreshFunc(func(ctx context.Context) error {
			_, err := newsService.Refresh(ctx)
			return err
		})
		a.worker = worker.New(refresh, cfg.PrefetchInterval, 5*time.Minute, log)
	}

	handler := httpapi.NewHandler(log, newsService, audio, summarizer, budget)
	a.server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewServer(log, handler, cfg.AudioDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("Services initialized",
		slog.String("component", "app"),
		slog.Bool("summarizer_loaded", summarizer.Loaded()),
		slog.Any("tts_engines", audio.Engines()),
		slog.Int("feed_count", len(sources)),
	)
	return a, nil
}

// newModel returns nil when no backend is configured or it has no credentials.
func (a *App) newModel(ctx context.Context) (summarize.Model, error) {
	log := a.logger.With(slog.String("component", "app"))
	switch a.config.SummarizerProvider {
	case config.ProviderHuggingFace:
		hf, err := summarize.NewHuggingFace(a.config.HuggingFaceAPIURL, a.config.HuggingFaceModel, a.config.HuggingFaceAPIKey)
		if err != nil {
			log.Warn("Summarization model not loaded, using heuristic summaries", slog.Any("error", err))
			return nil, nil
		}
		return hf, nil
	case config.ProviderGemini:
		if a.config.GeminiAPIKey == "" {
			log.Warn("GEMINI_API_KEY not set, using heuristic summaries")
			return nil, nil
		}
		client, err := gemini.NewClient(ctx, a.config.GeminiAPIKey, a.config.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return client, nil
	default:
		log.Info("Summarization model disabled")
		return nil, nil
	}
}

func (a *App) newPrimaryEngine() voice.Engine {
	if !a.config.CloudTTSEnabled {
		return nil
	}
	return voice.NewGoogleTTS(a.config.GoogleTTSURL, a.config.TTSLanguage)
}

func (a *App) newSecondaryEngine(ctx context.Context) voice.Engine {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	espeak, err := voice.NewEspeak(probeCtx, a.config.EspeakPath, a.config.TTSLanguage, voice.ExecRunner)
	if err != nil {
		a.logger.Warn("Local speech engine not available",
			slog.String("component", "app"),
			slog.Any("error", err),
		)
		return nil
	}
	return espeak
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts down.
func (a *App) Run() error {
	a.logger.Info("Starting NewsBreeze",
		slog.String("component", "app"),
		slog.Int("feed_count", len(a.config.Feeds)),
		slog.String("cache_duration", a.config.CacheDuration.String()),
	)
	if a.worker != nil {
		a.worker.Start()
	}

	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	defer listener.Close()
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)

	serveErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-a.stopChan:
		a.logger.Info("Shutdown signal received",
			slog.String("component", "app"),
			slog.String("signal", sig.String()),
		)
	case err := <-serveErr:
		a.logger.Error("HTTP server failed", slog.Any("error", err))
		a.Shutdown()
		return err
	}
	return a.Shutdown()
}

// Shutdown stops the worker, drains the HTTP server within 10 s and releases
// model clients.
func (a *App) Shutdown() error {
	a.logger.Info("Starting graceful shutdown")
	signal.Stop(a.stopChan)
	if a.worker != nil {
		a.worker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var shutdownErr error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.Any("error", err))
		shutdownErr = err
	}

	for _, c := range a.closers {
		c()
	}
	a.wg.Wait()
	a.logger.Info("Application stopped gracefully")
	return shutdownErr
}
