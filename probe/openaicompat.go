package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// probeOpenAICompatible issues a minimal streaming chat-completion request
// against an OpenAI-compatible endpoint and classifies the outcome from the
// first SSE event that arrives, or the failure that prevented one.
func probeOpenAICompatible(ctx context.Context, cfg ProviderConfig, clients *ClientCache) (HealthStatus, string, *int) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}
	baseURL := deriveOpenAIBaseURL(endpoint)

	model, effort := splitReasoningEffort(cfg.Model)

	body := map[string]any{
		"model":       model,
		"messages":    []map[string]string{{"role": "user", "content": "hi"}},
		"max_tokens":  1,
		"temperature": 0,
		"stream":      true,
	}
	if effort != "" {
		body["reasoning_effort"] = effort
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

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return StatusFailed, msgUnknownError, nil
	}
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
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

	if !waitForFirstSSEEvent(resp.Body) {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return StatusFailed, msgTimeout, nil
		}
		return StatusFailed, msgUnknownError, nil
	}

	elapsedMs := int(time.Since(start).Milliseconds())
	return classifyLatency(elapsedMs)
}

// deriveOpenAIBaseURL trims a trailing "/chat/completions" path and
// normalizes the official OpenAI host to its "/v1" base, matching the
// teacher's path-derivation idiom for provider base URLs.
func deriveOpenAIBaseURL(endpoint string) string {
	base := strings.TrimSuffix(endpoint, "/chat/completions")
	base = strings.TrimSuffix(base, "/")
	if strings.Contains(base, "api.openai.com") && !strings.HasSuffix(base, "/v1") {
		base = strings.TrimSuffix(base, "/v1") + "/v1"
	}
	return base
}
