// Package summarize produces short article summaries with a model backend and
// a sentence-based heuristic when the model cannot be used.
package summarize

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"

	"github.com/deusflow/newsbreeze/internal/metrics"
	"github.com/deusflow/newsbreeze/internal/ratelimit"
)

const (
	MethodModel    = "model"
	MethodFallback = "fallback"
)

const (
	maxInputChars = 1024
	TaskPrefix    = "summarize: "
)

// Params is the generation window passed to a model backend.
type Params struct {
	MinLength     int
	MaxLength     int
	NumBeams      int
	LengthPenalty float64
	EarlyStopping bool
}

var DefaultParams = Params{
	MinLength:     30,
	MaxLength:     150,
	NumBeams:      4,
	LengthPenalty: 2.0,
	EarlyStopping: true,
}

// Model is a seq2seq summarization backend. input already carries the task prefix.
type Model interface {
	Summarize(ctx context.Context, input string, params Params) (string, error)
	Name() string
}

type Result struct {
	Text   string
	Method string
}

type Service struct {
	model  Model
	sem    *semaphore.Weighted
	budget *ratelimit.Budget
	log    *slog.Logger
}

// NewService builds a summarizer. model may be nil, in which case every
// summary comes from the heuristic. budget may be nil.
func NewService(model Model, concurrency int64, budget *ratelimit.Budget, log *slog.Logger) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		model:  model,
		sem:    semaphore.NewWeighted(concurrency),
		budget: budget,
		log:    log.With(slog.String("component", "summarize")),
	}
}

// Loaded reports whether a model backend is configured.
func (s *Service) Loaded() bool {
	return s.model != nil
}

// ModelName returns the backend name, or "" without one.
func (s *Service) ModelName() string {
	if s.model == nil {
		return ""
	}
	return s.model.Name()
}

// Summarize never fails; any problem with the model yields the heuristic summary.
func (s *Service) Summarize(ctx context.Context, text string) Result {
	if summary, ok := s.tryModel(ctx, text); ok {
		metrics.Global.IncrementModelSummaries()
		return Result{Text: summary, Method: MethodModel}
	}
	metrics.Global.IncrementFallbackSummaries()
	return Result{Text: Heuristic(text), Method: MethodFallback}
}

func (s *Service) tryModel(ctx context.Context, text string) (string, bool) {
	if s.model == nil {
		return "", false
	}
	log := s.log.With(slog.String("op", "model"), slog.String("backend", s.model.Name()))

	if err := s.sem.Acquire(ctx, 1); err != nil {
		log.Warn("Model slot unavailable", slog.Any("error", err))
		return "", false
	}
	defer s.sem.Release(1)

	if !s.budget.Allow(ratelimit.KindSummarizer) {
		log.Warn("Model budget exhausted, using fallback")
		return "", false
	}

	summary, err := s.model.Summarize(ctx, PrepareInput(text), DefaultParams)
	if err != nil {
		log.Error("Model summarization failed", slog.Any("error", err))
		return "", false
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		log.Warn("Model returned empty summary")
		return "", false
	}

	log.Debug("Generated summary", slog.Int("length", utf8.RuneCountInString(summary)))
	return summary, true
}

// PrepareInput truncates text to the model's input window and adds the task prefix.
func PrepareInput(text string) string {
	return TaskPrefix + truncateRunes(text, maxInputChars)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
