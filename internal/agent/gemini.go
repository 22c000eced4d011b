package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GeminiClient implements Provider against the Google Generative Language
// generateContent endpoint.
type GeminiClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// NewGeminiClient constructs a client if the supplied configuration is valid.
func NewGeminiClient(cfg Config) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrDisabled
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	cfg.BaseURL = strings.TrimSpace(strings.TrimSuffix(cfg.BaseURL, "/"))
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = 0.7
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GeminiClient{
		httpClient:  &http.Client{Timeout: timeout},
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       cfg.Model,
		baseURL:     cfg.BaseURL,
		temperature: temp,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Enabled reports whether the client can make outbound calls.
func (c *GeminiClient) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Decide requests a recommendation for the task from the remote model.
func (c *GeminiClient) Decide(ctx context.Context, taskDescription string, taskContext map[string]any) (Decision, error) {
	if !c.Enabled() {
		return Decision{}, ErrDisabled
	}

	prompt := systemInstruction + "\n\n" + buildPrompt(taskDescription, taskContext)
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":     c.temperature,
			"maxOutputTokens": c.maxTokens,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Decision{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Decision{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Decision{}, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return Decision{}, fmt.Errorf("gemini status %d: %v", resp.StatusCode, apiErr)
	}

	var decoded generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Decision{}, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return Decision{}, errors.New("gemini empty response")
	}

	decision, err := parseDecisionText(decoded.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return Decision{}, fmt.Errorf("parse gemini response: %w", err)
	}
	decision.Source = SourceProvider
	decision.ModelName = c.model
	return decision, nil
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}
