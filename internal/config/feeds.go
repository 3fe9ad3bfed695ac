package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Feed is one named syndication source.
type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// FeedsConfig is YAML config structure
// feeds:
//   - name: CNN
//     url: https://...
type FeedsConfig struct {
	Feeds []Feed `yaml:"feeds"`
}

// DefaultFeeds are used when no feeds file exists.
func DefaultFeeds() []Feed {
	return []Feed{
		{Name: "CNN", URL: "http://rss.cnn.com/rss/cnn_topstories.rss"},
		{Name: "New York Times", URL: "http://feeds.nytimes.com/nyt/rss/HomePage"},
		{Name: "Washington Post", URL: "http://www.washingtonpost.com/rss/"},
		{Name: "USA Today", URL: "http://rssfeeds.usatoday.com/usatoday-NewsTopStories"},
		{Name: "NPR", URL: "http://www.npr.org/rss/rss.php?id=1001"},
		{Name: "BBC News", URL: "http://newsrss.bbc.co.uk/rss/newsonline_world_edition/americas/rss.xml"},
	}
}

// LoadFeeds reads the feed list from a YAML file. A missing file yields DefaultFeeds.
func LoadFeeds(path string) ([]Feed, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultFeeds(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open feeds config: %w", err)
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse feeds config %s: %w", path, err)
	}
	return cfg.Feeds, nil
}
