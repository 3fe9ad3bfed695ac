package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HuggingFace calls the Hugging Face Inference API for a summarization model.
type HuggingFace struct {
	apiURL     string
	model      string
	apiKey     string
	httpClient *http.Client
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	MinLength     int     `json:"min_length"`
	MaxLength     int     `json:"max_length"`
	NumBeams      int     `json:"num_beams"`
	LengthPenalty float64 `json:"length_penalty"`
	EarlyStopping bool    `json:"early_stopping"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfOutput struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

type hfError struct {
	Error string `json:"error"`
}

// NewHuggingFace returns an error when no API key is given; the caller then
// runs without a model.
func NewHuggingFace(apiURL, model, apiKey string) (*HuggingFace, error) {
	if apiKey == "" {
		return nil, errors.New("huggingface: api key is required")
	}
	if model == "" {
		return nil, errors.New("huggingface: model is required")
	}
	return &HuggingFace{
		apiURL: strings.TrimRight(apiURL, "/"),
		model:  model,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

func (h *HuggingFace) Name() string {
	return h.model
}

func (h *HuggingFace) Summarize(ctx context.Context, input string, params Params) (string, error) {
	reqBody := hfRequest{
		Inputs: input,
		Parameters: hfParameters{
			MinLength:     params.MinLength,
			MaxLength:     params.MaxLength,
			NumBeams:      params.NumBeams,
			LengthPenalty: params.LengthPenalty,
			EarlyStopping: params.EarlyStopping,
		},
		Options: hfOptions{WaitForModel: true},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal summarization request: %w", err)
	}

	url := h.apiURL + "/" + h.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create summarization request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarization request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read summarization response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr hfError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("huggingface error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("huggingface error (status %d): %s", resp.StatusCode, string(body))
	}

	var outputs []hfOutput
	if err := json.Unmarshal(body, &outputs); err != nil {
		return "", fmt.Errorf("failed to decode summarization response: %w", err)
	}
	if len(outputs) == 0 {
		return "", errors.New("huggingface returned no outputs")
	}

	text := outputs[0].SummaryText
	if text == "" {
		text = outputs[0].GeneratedText
	}
	return text, nil
}
