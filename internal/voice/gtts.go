package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// maxChunkChars is the longest text the translate_tts endpoint accepts per request.
const maxChunkChars = 100

const ttsUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// GoogleTTS uses the public Google Translate speech endpoint.
type GoogleTTS struct {
	baseURL    string
	lang       string
	httpClient *http.Client
}

func NewGoogleTTS(baseURL, lang string) *GoogleTTS {
	if baseURL == "" {
		baseURL = "https://translate.google.com"
	}
	if lang == "" {
		lang = "en"
	}
	return &GoogleTTS{
		baseURL: strings.TrimRight(baseURL, "/"),
		lang:    lang,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (g *GoogleTTS) Name() string { return "gtts" }
func (g *GoogleTTS) Ext() string  { return "mp3" }

// Synthesize fetches one MP3 segment per chunk and writes them back to back.
// The endpoint has no voice or rate controls, so profile is unused.
func (g *GoogleTTS) Synthesize(ctx context.Context, text string, _ Profile, path string) error {
	chunks := splitText(text, maxChunkChars)
	if len(chunks) == 0 {
		return ErrEmptyText
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := g.fetchChunk(ctx, chunk, i, len(chunks), &audio); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	if err := os.WriteFile(path, audio.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	return nil
}

func (g *GoogleTTS) fetchChunk(ctx context.Context, chunk string, idx, total int, w io.Writer) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", g.lang)
	params.Set("q", chunk)
	params.Set("ttsspeed", "1")
	params.Set("total", strconv.Itoa(total))
	params.Set("idx", strconv.Itoa(idx))
	params.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/translate_tts?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", ttsUserAgent)
	req.Header.Set("Referer", g.baseURL+"/")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("speech endpoint returned status: %d", resp.StatusCode)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return fmt.Errorf("read audio: %w", err)
	}
	if n == 0 {
		return errors.New("empty audio segment")
	}
	return nil
}

// splitText packs whole words into chunks of at most limit runes. Longer
// words are cut.
func splitText(text string, limit int) []string {
	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		runes := []rune(word)
		for len(runes) > limit {
			flush()
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		if len(runes) == 0 {
			continue
		}

		need := len(runes)
		if curLen > 0 {
			need++
		}
		if curLen+need > limit {
			flush()
			need = len(runes)
		}
		if curLen > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(string(runes))
		curLen += need
	}
	flush()
	return chunks
}
