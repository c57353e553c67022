package geminiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// --- Gemini API Configuration ---
const (
	defaultAPIBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel      = "gemini-2.5-flash"

	// RequestTimeout bounds one generateContent round trip.
	RequestTimeout = 25 * time.Second

	// Upstream error bodies are only kept for logging.
	maxErrorBodyBytes = 4 << 10
)

var (
	// ErrNoCandidates means the API answered 200 but had no text to give back.
	ErrNoCandidates = errors.New("no content found in Gemini response")

	// ErrMissingAPIKey is returned before any request is sent.
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")
)

// UpstreamError is a non-2xx answer from the generateContent endpoint.
type UpstreamError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Gemini API error: %d", e.StatusCode)
}

// --- Structs for Gemini API Request/Response ---

type GeminiPayload struct {
	Contents         []GeminiContent   `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings   []SafetySetting   `json:"safetySettings,omitempty"`
}

// GeminiContent is one turn. Role is "user" or "model".
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text"`
}

type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// FirstText returns the first candidate's first text part, or "" when the
// envelope carries nothing usable.
func (r GeminiResponse) FirstText() string {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Parts[0].Text
}

// Client talks to the generateContent endpoint. The zero value is not usable;
// build one with NewClient.
type Client struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client

	// APIKey is consulted on every call so a rotated key is picked up
	// without a restart.
	APIKey func() string
}

// NewClient reads GEMINI_API_BASE_URL and GEMINI_MODEL, falling back to the
// public endpoint and the default flash model.
func NewClient() *Client {
	baseURL := os.Getenv("GEMINI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultModel
	}

	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		HTTPClient: &http.Client{Timeout: RequestTimeout},
		APIKey:     func() string { return os.Getenv("GEMINI_API_KEY") },
	}
}

func (c *Client) endpoint(apiKey string) string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, url.PathEscape(c.Model), url.QueryEscape(apiKey))
}

// GenerateContent sends a single generateContent request and returns the
// first candidate's text. It never retries; that is the caller's call.
func (c *Client) GenerateContent(ctx context.Context, log *zerolog.Logger, payload GeminiPayload) (string, error) {
	apiKey := ""
	if c.APIKey != nil {
		apiKey = c.APIKey()
	}
	if apiKey == "" {
		log.Error().Msg("GEMINI_API_KEY environment variable is not set.")
		return "", ErrMissingAPIKey
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(apiKey), bytes.NewReader(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: RequestTimeout}
	}

	start := time.Now()
	log.Info().Str("model", c.Model).Int("turns", len(payload.Contents)).Msg("Calling Gemini API...")

	resp, err := httpClient.Do(req)
	if err != nil {
		// *url.Error carries the full URL, API key included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		upstreamErr := &UpstreamError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
		log.Warn().Err(upstreamErr).Str("body", upstreamErr.Body).Msg("Gemini API returned non-success status")
		return "", upstreamErr
	}

	var geminiResp GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	log.Info().Dur("latency", time.Since(start)).Int("candidates", len(geminiResp.Candidates)).Msg("Gemini API responded")

	text := geminiResp.FirstText()
	if text == "" {
		return "", ErrNoCandidates
	}
	return text, nil
}
