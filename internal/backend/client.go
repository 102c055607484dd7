package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
)

// Client talks to the query backend over HTTP. It owns no state beyond the
// base URL and transport; every call is a single attempt with no retry.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a backend client. timeout covers each individual request.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError is a backend-reported failure: a non-2xx response whose body
// carried a detail field. Detail is surfaced to the user verbatim.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
}

// UserMessage returns the text shown to the user for err: the backend's
// detail verbatim when present, otherwise the generic fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// Answer is the structured response to one query.
type Answer struct {
	SQLQuery    string           `json:"sql_query"`
	Results     domain.ResultSet `json:"results"`
	Explanation string           `json:"explanation"`
	Suggestions []string         `json:"suggestions,omitempty"`
}

type queryRequest struct {
	Query  string `json:"query"`
	Domain string `json:"domain,omitempty"`
}

// Query sends a natural-language question, optionally scoped to a domain,
// and returns the backend's structured answer. Result rows are coerced to
// the first row's column set.
func (c *Client) Query(ctx context.Context, question, domainID string) (*Answer, error) {
	var answer Answer
	err := c.postJSON(ctx, "/api/query", queryRequest{Query: question, Domain: domainID}, &answer)
	if err != nil {
		return nil, err
	}
	answer.Results = answer.Results.Normalize()
	return &answer, nil
}

type suggestionRequest struct {
	Question string `json:"question,omitempty"`
	Domain   string `json:"domain,omitempty"`
}

type suggestionResponse struct {
	Suggestions []string `json:"suggestions"`
}

// SuggestForQuestion returns follow-up candidates for partially typed input.
func (c *Client) SuggestForQuestion(ctx context.Context, question string) ([]string, error) {
	var resp suggestionResponse
	if err := c.postJSON(ctx, "/api/suggestions", suggestionRequest{Question: question}, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// SuggestForDomain returns starter questions for a data domain.
func (c *Client) SuggestForDomain(ctx context.Context, domainID string) ([]string, error) {
	var resp suggestionResponse
	if err := c.postJSON(ctx, "/api/suggestions", suggestionRequest{Domain: domainID}, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// Export asks the backend to serialize data and returns the binary file.
func (c *Client) Export(ctx context.Context, data domain.ResultSet, format string) ([]byte, error) {
	body, err := json.Marshal(domain.ExportRequest{Data: data, Format: format})
	if err != nil {
		return nil, fmt.Errorf("failed to encode export request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/export", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doBinary(req)
}

type synthesizeRequest struct {
	Text string `json:"text"`
}

// SynthesizeSpeech converts text to a playable audio payload.
func (c *Client) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(synthesizeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/synthesize_speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doBinary(req)
}

type transcribeResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads recorded audio as multipart form data and returns the
// recognized text.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("audio_file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("failed to buffer audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	raw, err := c.doBinary(req)
	if err != nil {
		return "", err
	}

	var resp transcribeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to decode transcription: %w", err)
	}
	return resp.Text, nil
}

type schemaResponse struct {
	Schema json.RawMessage `json:"schema"`
}

// Schema fetches the backend's opaque schema description.
func (c *Client) Schema(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/schema", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	raw, err := c.doBinary(req)
	if err != nil {
		return nil, err
	}

	var resp schemaResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	return resp.Schema, nil
}

// Health probes the backend's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	_, err = c.doBinary(req)
	return err
}

// postJSON sends a JSON body and decodes a JSON response into out.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.doBinary(req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type errorBody struct {
	Detail string `json:"detail"`
}

// doBinary executes a request and returns the raw body, converting non-2xx
// responses into *APIError with the backend's detail field when present.
func (c *Client) doBinary(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			apiErr.Detail = eb.Detail
		}
		return nil, apiErr
	}

	return body, nil
}
