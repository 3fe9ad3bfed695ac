package rss

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/newsbreeze/internal/metrics"
	"github.com/deusflow/newsbreeze/internal/textclean"
)

// maxBodyBytes caps how much of a feed response is read.
const maxBodyBytes = 10 << 20

// publishedLayout is used when an entry carries no date of its own.
const publishedLayout = "2006-01-02T15:04:05.000000"

var (
	errNilEntry     = errors.New("empty feed entry")
	errShortContent = errors.New("content too short")
)

// Source is one configured feed.
type Source struct {
	Name string
	URL  string
}

// Article is a cleaned feed entry. Published keeps the feed's own format.
type Article struct {
	Title     string
	Content   string
	URL       string
	Published string
	Source    string
}

type Options struct {
	Timeout          time.Duration
	UserAgent        string
	MaxEntries       int
	MinContentLength int
}

// Fetcher downloads and parses feeds. It is safe for concurrent use.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxEntries int
	minContent int
	log        *slog.Logger
	now        func() time.Time
}

func NewFetcher(opts Options, log *slog.Logger) *Fetcher {
	return &Fetcher{
		client:     &http.Client{Timeout: opts.Timeout},
		userAgent:  opts.UserAgent,
		maxEntries: opts.MaxEntries,
		minContent: opts.MinContentLength,
		log:        log.With(slog.String("component", "rss")),
		now:        time.Now,
	}
}

// Fetch returns up to MaxEntries cleaned articles from src. Any failure of the
// source itself is logged and yields no articles.
func (f *Fetcher) Fetch(ctx context.Context, src Source) []Article {
	log := f.log.With(slog.String("source", src.Name), slog.String("url", src.URL))
	log.Info("Fetching feed")

	body, err := f.download(ctx, src.URL)
	if err != nil {
		log.Error("Feed fetch failed", slog.Any("error", err))
		metrics.Global.IncrementFeedsFailed()
		return nil
	}

	// gofeed parsers keep per-document state, so each fetch gets its own.
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		log.Error("Feed parse failed", slog.Any("error", err))
		metrics.Global.IncrementFeedsFailed()
		return nil
	}
	metrics.Global.IncrementFeedsFetched()

	log.Info("Feed parsed", slog.Int("entries", len(feed.Items)), slog.String("feed_type", feed.FeedType))
	if len(feed.Items) == 0 {
		return nil
	}

	items := feed.Items
	if f.maxEntries > 0 && len(items) > f.maxEntries {
		items = items[:f.maxEntries]
	}

	articles := make([]Article, 0, len(items))
	for i, item := range items {
		article, err := f.buildArticle(feed.FeedType, item, src.Name)
		if err != nil {
			metrics.Global.IncrementArticlesSkipped()
			if errors.Is(err, errShortContent) {
				log.Debug("Entry skipped", slog.Int("index", i), slog.Any("error", err))
			} else {
				log.Warn("Entry processing failed", slog.Int("index", i), slog.Any("error", err))
			}
			continue
		}
		metrics.Global.IncrementArticlesAccepted()
		articles = append(articles, article)
	}

	log.Info("Feed processed", slog.Int("articles", len(articles)))
	return articles
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (f *Fetcher) buildArticle(feedType string, item *gofeed.Item, sourceName string) (Article, error) {
	if item == nil {
		return Article{}, errNilEntry
	}

	content := textclean.Clean(fieldsOf(feedType, item).body())
	if n := utf8.RuneCountInString(content); n < f.minContent {
		return Article{}, fmt.Errorf("%w: %d < %d characters", errShortContent, n, f.minContent)
	}

	published := item.Published
	if published == "" {
		published = item.Updated
	}
	if published == "" {
		published = f.now().Format(publishedLayout)
	}

	return Article{
		Title:     textclean.Clean(item.Title),
		Content:   content,
		URL:       item.Link,
		Published: published,
		Source:    sourceName,
	}, nil
}

// entryFields holds the candidate text fields of an entry. Which of them a
// feed fills depends on its format.
type entryFields struct {
	Content     string
	Summary     string
	Description string
	Title       string
}

// fieldsOf maps gofeed's universal item back onto the format's own fields.
// gofeed stores Atom <summary> and JSON Feed "summary" in Description.
func fieldsOf(feedType string, item *gofeed.Item) entryFields {
	e := entryFields{
		Content: item.Content,
		Title:   item.Title,
	}
	switch feedType {
	case "atom", "json":
		e.Summary = item.Description
	default:
		e.Description = item.Description
		if item.ITunesExt != nil {
			e.Summary = item.ITunesExt.Summary
		}
	}
	return e
}

// body picks content, then summary, then description, then title.
func (e entryFields) body() string {
	for _, v := range []string{e.Content, e.Summary, e.Description, e.Title} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
