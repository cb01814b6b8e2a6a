package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// probeGemini issues a minimal streamGenerateContent request and classifies
// the outcome from the first newline-delimited JSON object that arrives.
// Gemini's stream is not SSE-framed: each line is a complete JSON object.
func probeGemini(ctx context.Context, cfg ProviderConfig, clients *ClientCache) (HealthStatus, string, *int) {
	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = defaultGeminiEndpoint
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	model := cfg.Model
	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent", baseURL, model)

	body := map[string]any{
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]string{{"text": "hi"}}},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": 1,
			"temperature":     0,
		},
	}
	for k, v := range cfg.Metadata {
		if _, reserved := body[k]; !reserved {
			body[k] = v
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return StatusFailed, msgUnknownError, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return StatusFailed, msgUnknownError, nil
	}
	req.Header.Set("x-goog-api-key", cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "check-cx/0.1.0")
	req.Header.Set("Cache-Control", "no-store")
	for k, v := range cfg.RequestHeaders {
		req.Header.Set(k, v)
	}

	client := clients.Get(baseURL, cfg.APIKey, cfg.RequestHeaders, ProbeTimeout)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return StatusFailed, msgTimeout, nil
		}
		return StatusFailed, msgUnknownError, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return StatusFailed, msgHTTPStatus(resp.StatusCode), nil
	}

	if !waitForFirstJSONLine(resp.Body) {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return StatusFailed, msgTimeout, nil
		}
		return StatusFailed, msgUnknownError, nil
	}

	elapsedMs := int(time.Since(start).Milliseconds())
	return classifyLatency(elapsedMs)
}
