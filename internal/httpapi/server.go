package httpapi

import (
	"log/slog"
	"net/http"
)

// NewServer registers the API routes and the audio file server, wrapped in
// request ID, logging and CORS middleware.
func NewServer(log *slog.Logger, h *Handler, audioDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/news", h.getNews)
	mux.HandleFunc("POST /api/generate-audio", h.generateAudio)
	mux.HandleFunc("GET /api/voices", h.getVoices)
	mux.HandleFunc("GET /health", h.healthCheck)
	mux.HandleFunc("GET /metrics", h.getMetrics)

	fs := http.FileServer(http.Dir(audioDir))
	mux.Handle("GET /audio/", http.StripPrefix("/audio/", fs))

	var handler http.Handler = mux
	handler = loggingMiddleware(log)(handler)
	handler = requestIDMiddleware()(handler)
	handler = corsMiddleware()(handler)
	return handler
}
