package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/newsbreeze/internal/metrics"
	"github.com/deusflow/newsbreeze/internal/news"
	"github.com/deusflow/newsbreeze/internal/voice"
)

const maxBodyBytes = 1 << 20

type newsGetter interface {
	GetNews(ctx context.Context) ([]news.Item, bool, error)
	Sources() []string
}

type audioGenerator interface {
	Synthesize(ctx context.Context, text, voiceName string) (voice.Result, error)
	Loaded() bool
	Engines() []string
}

type summarizerInfo interface {
	Loaded() bool
	ModelName() string
}

type budgetStats interface {
	GetStats() map[string]interface{}
}

type Handler struct {
	log        *slog.Logger
	news       newsGetter
	audio      audioGenerator
	summarizer summarizerInfo
	budget     budgetStats
	now        func() time.Time
}

// NewHandler builds the API handlers. budget may be nil.
func NewHandler(log *slog.Logger, getter newsGetter, audio audioGenerator, summarizer summarizerInfo, budget budgetStats) *Handler {
	return &Handler{
		log:        log,
		news:       getter,
		audio:      audio,
		summarizer: summarizer,
		budget:     budget,
		now:        time.Now,
	}
}

type newsResponse struct {
	News   []news.Item `json:"news"`
	Cached bool        `json:"cached"`
}

type audioRequest struct {
	Text      string `json:"text"`
	VoiceName string `json:"voice_name"`
}

type audioResponse struct {
	AudioURL *string `json:"audio_url"`
	Success  bool    `json:"success"`
	Message  string  `json:"message"`
}

type voicesResponse struct {
	Voices []voice.Profile `json:"voices"`
}

type healthResponse struct {
	Status       string            `json:"status"`
	ModelsLoaded map[string]string `json:"models_loaded"`
	RSSFeeds     []string          `json:"rss_feeds"`
	AIFeatures   map[string]string `json:"ai_features"`
	Timestamp    string            `json:"timestamp"`
}

// getNews handles GET /api/news.
func (h *Handler) getNews(w http.ResponseWriter, r *http.Request) {
	const op = "httpapi/getNews"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)

	items, cached, err := h.news.GetNews(r.Context())
	if err != nil {
		log.Error("Failed to get news", slog.Any("error", err))
		metrics.Global.SetError(err.Error())
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Error fetching news: %v", err))
		return
	}

	log.Info("Returning news", slog.Int("items", len(items)), slog.Bool("cached", cached))
	respondWithJSON(w, http.StatusOK, newsResponse{News: items, Cached: cached})
}

// generateAudio handles POST /api/generate-audio.
func (h *Handler) generateAudio(w http.ResponseWriter, r *http.Request) {
	const op = "httpapi/generateAudio"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)

	var req audioRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		log.Warn("Invalid request body", slog.Any("error", err))
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		log.Warn("Empty text")
		respondWithError(w, http.StatusBadRequest, "Field 'text' is required")
		return
	}
	if req.VoiceName == "" {
		req.VoiceName = voice.DefaultVoice
	}

	log.Info("Audio generation requested", slog.String("voice", req.VoiceName))
	res, err := h.audio.Synthesize(r.Context(), req.Text, req.VoiceName)
	switch {
	case err == nil:
		ref := res.Ref
		respondWithJSON(w, http.StatusOK, audioResponse{
			AudioURL: &ref,
			Success:  true,
			Message:  fmt.Sprintf("Audio generated successfully with %s voice using %s", req.VoiceName, res.Engine),
		})
	case errors.Is(err, voice.ErrUnavailable):
		respondWithJSON(w, http.StatusOK, audioResponse{
			Success: false,
			Message: "Failed to generate audio. TTS engine may not be available.",
		})
	default:
		log.Error("Audio generation failed", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Error generating audio")
	}
}

// getVoices handles GET /api/voices.
func (h *Handler) getVoices(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, voicesResponse{Voices: voice.Profiles()})
}

// healthCheck handles GET /health.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	summarization := "heuristic"
	if h.summarizer.Loaded() {
		summarization = h.summarizer.ModelName()
	}
	synthesis := "none"
	if engines := h.audio.Engines(); len(engines) > 0 {
		synthesis = strings.Join(engines, " + ")
	}

	respondWithJSON(w, http.StatusOK, healthResponse{
		Status: "healthy",
		ModelsLoaded: map[string]string{
			"summarizer": loadedStatus(h.summarizer.Loaded()),
			"tts":        loadedStatus(h.audio.Loaded()),
		},
		RSSFeeds: h.news.Sources(),
		AIFeatures: map[string]string{
			"summarization":   summarization,
			"voice_synthesis": synthesis,
		},
		Timestamp: h.now().Format(time.RFC3339),
	})
}

// getMetrics handles GET /metrics.
func (h *Handler) getMetrics(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()
	if h.budget != nil {
		stats["budget"] = h.budget.GetStats()
	}
	respondWithJSON(w, http.StatusOK, stats)
}

func loadedStatus(ok bool) string {
	if ok {
		return "loaded"
	}
	return "not_loaded"
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"detail": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
