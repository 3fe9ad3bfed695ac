package gemini

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/newsbreeze/internal/summarize"
)

// Client is a summarize.Model backed by Google Gemini.
type Client struct {
	client *genai.Client
	model  string
}

var summaryLabel = regexp.MustCompile(`(?i)^\**\s*summary\s*\**\s*:\s*\**\s*`)

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *Client) Name() string {
	return c.model
}

func (c *Client) Summarize(ctx context.Context, input string, params summarize.Params) (string, error) {
	model := c.client.GenerativeModel(c.model)
	// tokens are roughly words; leave headroom for the label
	model.SetMaxOutputTokens(int32(params.MaxLength * 2))

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(input, params)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	return parseSummary(text), nil
}

func buildPrompt(input string, params summarize.Params) string {
	article := strings.TrimPrefix(input, summarize.TaskPrefix)
	article = strings.Join(strings.Fields(article), " ")

	return fmt.Sprintf(`Summarize the news article below in %d to %d words.
Write plain prose without lists or headings. Do not add facts that are not in the article.

Answer strictly in this format:
SUMMARY: <summary>

ARTICLE:
%s
`, params.MinLength/2, params.MaxLength/2, article)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("no text in Gemini response")
	}
	return b.String(), nil
}

// parseSummary drops the SUMMARY label and joins continuation lines.
// Unlabelled output is used as is.
func parseSummary(response string) string {
	var lines []string
	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lines = append(lines, summaryLabel.ReplaceAllString(line, ""))
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}
