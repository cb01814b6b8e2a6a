package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion      = "2023-06-01"
	statusOverloaded         = 529
)

// probeAnthropic issues a minimal Messages API streaming request and
// classifies the outcome from the first SSE event that arrives. Status 529
// ("overloaded") is Anthropic-specific and is reported verbatim rather than
// folded into the generic HTTP-status message.
func probeAnthropic(ctx context.Context, cfg ProviderConfig, clients *ClientCache) (HealthStatus, string, *int) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultAnthropicEndpoint
	}
	baseURL := strings.TrimSuffix(endpoint, "/v1/messages")

	body := map[string]any{
		"model":      cfg.Model,
		"max_tokens": 1,
		"messages":   []map[string]string{{"role": "user", "content": "hi"}},
		"stream":     true,
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

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return StatusFailed, msgUnknownError, nil
	}
	req.Header.Set("x-api-key", cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)
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
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || matchesAbortedError(err) {
			return StatusFailed, msgTimeout, nil
		}
		return StatusFailed, msgUnknownError, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == statusOverloaded {
		return StatusFailed, anthropicOverloadedMessage(resp.Body), nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return StatusFailed, msgHTTPStatus(resp.StatusCode), nil
	}

	if !waitForFirstSSEEvent(resp.Body) {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return StatusFailed, msgTimeout, nil
		}
		return StatusFailed, msgUnknownError, nil
	}

	elapsedMs := int(time.Since(start).Milliseconds())
	return classifyLatency(elapsedMs)
}

var abortedPattern = "request was aborted"

func matchesAbortedError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), abortedPattern)
}

// anthropicErrorBody mirrors the Messages API's {"error":{"message":...}}
// envelope returned alongside a 529.
type anthropicErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func anthropicOverloadedMessage(body io.Reader) string {
	var parsed anthropicErrorBody
	if err := json.NewDecoder(body).Decode(&parsed); err != nil || parsed.Error.Message == "" {
		return msgHTTPStatus(statusOverloaded)
	}
	return parsed.Error.Message
}
