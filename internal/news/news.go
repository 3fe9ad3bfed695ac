package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/deusflow/newsbreeze/internal/cache"
	"github.com/deusflow/newsbreeze/internal/metrics"
	"github.com/deusflow/newsbreeze/internal/rss"
	"github.com/deusflow/newsbreeze/internal/summarize"
)

// CacheKey is the single slot the aggregated news is stored under.
const CacheKey = "latest_news"

var errEmptyContent = errors.New("article has no content")

// Item is a summarized article as served to clients.
type Item struct {
	Title           string  `json:"title"`
	Summary         string  `json:"summary"`
	OriginalContent string  `json:"original_content"`
	URL             string  `json:"url"`
	Published       string  `json:"published"`
	Source          string  `json:"source"`
	AudioFile       *string `json:"audio_file"`
}

type Fetcher interface {
	Fetch(ctx context.Context, src rss.Source) []rss.Article
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) summarize.Result
}

type Service struct {
	sources     []rss.Source
	fetcher     Fetcher
	summarizer  Summarizer
	store       *cache.Cache[[]Item]
	maxArticles int
	group       singleflight.Group
	log         *slog.Logger
}

func NewService(sources []rss.Source, fetcher Fetcher, summarizer Summarizer, store *cache.Cache[[]Item], maxArticles int, log *slog.Logger) *Service {
	return &Service{
		sources:     sources,
		fetcher:     fetcher,
		summarizer:  summarizer,
		store:       store,
		maxArticles: maxArticles,
		log:         log.With(slog.String("component", "news")),
	}
}

// GetNews returns the cached items while they are fresh, otherwise rebuilds
// them. The bool reports whether the result came from the cache. The returned
// slice is shared and must not be modified.
func (s *Service) GetNews(ctx context.Context) ([]Item, bool, error) {
	if items, ok := s.store.Get(CacheKey); ok {
		metrics.Global.IncrementCacheHits()
		s.log.Debug("Serving cached news", slog.Int("items", len(items)))
		return items, true, nil
	}
	metrics.Global.IncrementCacheMisses()

	items, err := s.load(ctx, false)
	if err != nil {
		return nil, false, err
	}
	return items, false, nil
}

// Refresh rebuilds and stores the news regardless of cache state. Concurrent
// callers share one rebuild, which keeps running if a caller gives up.
func (s *Service) Refresh(ctx context.Context) ([]Item, error) {
	return s.load(ctx, true)
}

// load runs at most one rebuild at a time. Unless force is set, an entry
// stored by a rebuild that finished after the caller's cache miss is reused.
func (s *Service) load(ctx context.Context, force bool) ([]Item, error) {
	buildCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(CacheKey, func() (interface{}, error) {
		if !force {
			if items, ok := s.store.Get(CacheKey); ok {
				return items, nil
			}
		}
		return s.build(buildCtx), nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("aggregate news: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Item), nil
	}
}

// Sources lists the configured feed names in order.
func (s *Service) Sources() []string {
	names := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		names = append(names, src.Name)
	}
	return names
}

func (s *Service) build(ctx context.Context) []Item {
	start := time.Now()
	log := s.log.With(slog.String("op", "refresh"))
	log.Info("Fetching news from feeds", slog.Int("sources", len(s.sources)))

	articles := s.fetchAll(ctx)
	log.Info("Collected articles", slog.Int("articles", len(articles)))

	if s.maxArticles > 0 && len(articles) > s.maxArticles {
		articles = articles[:s.maxArticles]
	}

	items := make([]Item, 0, len(articles))
	for i, a := range articles {
		item, err := s.buildItem(ctx, a)
		if err != nil {
			log.Warn("Skipping article", slog.Int("index", i), slog.String("source", a.Source), slog.Any("error", err))
			continue
		}
		items = append(items, item)
	}

	s.store.Set(CacheKey, items)

	elapsed := time.Since(start)
	metrics.Global.RecordRefreshTime(elapsed)
	metrics.Global.SetLastRun()
	log.Info("News refreshed", slog.Int("items", len(items)), slog.Duration("took", elapsed))
	return items
}

// fetchAll fetches every source concurrently and concatenates the results in
// configured source order.
func (s *Service) fetchAll(ctx context.Context) []rss.Article {
	perSource := make([][]rss.Article, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		g.Go(func() error {
			perSource[i] = s.fetcher.Fetch(gctx, src)
			return nil
		})
	}
	// fetchers report their own failures; Wait never returns an error
	_ = g.Wait()

	var all []rss.Article
	for _, articles := range perSource {
		all = append(all, articles...)
	}
	return all
}

func (s *Service) buildItem(ctx context.Context, a rss.Article) (Item, error) {
	if a.Content == "" {
		return Item{}, errEmptyContent
	}
	res := s.summarizer.Summarize(ctx, a.Content)
	return Item{
		Title:           a.Title,
		Summary:         res.Text,
		OriginalContent: a.Content,
		URL:             a.URL,
		Published:       a.Published,
		Source:          a.Source,
	}, nil
}
