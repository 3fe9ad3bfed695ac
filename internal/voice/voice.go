// Package voice renders text to audio files with a cloud engine and a local
// fallback engine.
package voice

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/deusflow/newsbreeze/internal/metrics"
	"github.com/deusflow/newsbreeze/internal/ratelimit"
)

var (
	ErrUnavailable = errors.New("no speech engine could generate audio")
	ErrEmptyText   = errors.New("text is empty")
)

// RefPrefix is the URL path the audio directory is served under.
const RefPrefix = "/audio/"

// Engine writes speech for text to path.
type Engine interface {
	Name() string
	Ext() string
	Synthesize(ctx context.Context, text string, profile Profile, path string) error
}

type Result struct {
	Ref    string
	Engine string
	Path   string
}

type Service struct {
	dir       string
	primary   Engine
	secondary Engine
	budget    *ratelimit.Budget
	log       *slog.Logger
}

// NewService builds the audio service. Either engine may be nil.
func NewService(dir string, primary, secondary Engine, budget *ratelimit.Budget, log *slog.Logger) *Service {
	return &Service{
		dir:       dir,
		primary:   primary,
		secondary: secondary,
		budget:    budget,
		log:       log.With(slog.String("component", "voice")),
	}
}

// Loaded reports whether any engine is configured.
func (s *Service) Loaded() bool {
	return s.primary != nil || s.secondary != nil
}

// Engines names the configured engines in fallback order.
func (s *Service) Engines() []string {
	var names []string
	for _, e := range []Engine{s.primary, s.secondary} {
		if e != nil {
			names = append(names, e.Name())
		}
	}
	return names
}

// Synthesize renders text with the primary engine, then the secondary one.
// Files are always regenerated.
func (s *Service) Synthesize(ctx context.Context, text, voiceName string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyText
	}
	profile := Lookup(voiceName)
	log := s.log.With(slog.String("voice", profile.Name))
	log.Info("Generating audio", slog.Int("text_length", len(text)))

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		metrics.Global.IncrementAudioFailed()
		log.Error("Cannot create audio directory", slog.String("dir", s.dir), slog.Any("error", err))
		return Result{}, fmt.Errorf("%w: create audio dir: %w", ErrUnavailable, err)
	}

	if s.primary != nil {
		if !s.budget.Allow(ratelimit.KindTTS) {
			log.Warn("Cloud speech budget exhausted", slog.String("engine", s.primary.Name()))
		} else if res, err := s.render(ctx, s.primary, text, profile); err != nil {
			log.Warn("Primary engine failed", slog.String("engine", s.primary.Name()), slog.Any("error", err))
		} else {
			metrics.Global.IncrementAudioPrimary()
			log.Info("Audio generated", slog.String("engine", res.Engine), slog.String("ref", res.Ref))
			return res, nil
		}
	}

	if s.secondary != nil {
		res, err := s.render(ctx, s.secondary, text, profile)
		if err == nil {
			metrics.Global.IncrementAudioSecondary()
			log.Info("Audio generated", slog.String("engine", res.Engine), slog.String("ref", res.Ref))
			return res, nil
		}
		log.Warn("Secondary engine failed", slog.String("engine", s.secondary.Name()), slog.Any("error", err))
	}

	metrics.Global.IncrementAudioFailed()
	log.Error("No speech engine available")
	return Result{}, ErrUnavailable
}

func (s *Service) render(ctx context.Context, engine Engine, text string, profile Profile) (Result, error) {
	name := FileName(profile.Name, text, engine.Ext())
	path := filepath.Join(s.dir, name)

	if err := engine.Synthesize(ctx, text, profile, path); err != nil {
		os.Remove(path)
		return Result{}, err
	}
	return Result{Ref: RefPrefix + name, Engine: engine.Name(), Path: path}, nil
}

// FileName is news_{voice}_{hash}.{ext}, hash being the first 8 hex digits of MD5(text).
func FileName(voice, text, ext string) string {
	sum := md5.Sum([]byte(text))
	return fmt.Sprintf("news_%s_%s.%s", voice, hex.EncodeToString(sum[:])[:8], ext)
}
