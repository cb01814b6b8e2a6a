package probe

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeGemini_OperationalOnFirstLine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-gemini", r.Header.Get("x-goog-api-key"))
		assert.Contains(t, r.URL.Path, ":streamGenerateContent")

		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "{\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"h\"}]}}]}\n")
		w.(http.Flusher).Flush()
	}))
	defer server.Close()

	cfg := ProviderConfig{
		Type:     ProviderGemini,
		Endpoint: server.URL,
		Model:    "gemini-1.5-flash",
		APIKey:   "sk-gemini",
	}
	status, msg, latency := probeGemini(newTestContext(), cfg, NewClientCache())

	assert.Equal(t, StatusOperational, status)
	assert.Contains(t, msg, "流式响应正常")
	require.NotNil(t, latency)
}

func TestProbeGemini_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	cfg := ProviderConfig{
		Type:     ProviderGemini,
		Endpoint: server.URL,
		Model:    "gemini-1.5-flash",
		APIKey:   "sk-bad",
	}
	status, msg, latency := probeGemini(newTestContext(), cfg, NewClientCache())

	assert.Equal(t, StatusFailed, status)
	assert.Equal(t, "HTTP 403", msg)
	assert.Nil(t, latency)
}

func TestProbeGemini_EmptyStreamFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := ProviderConfig{
		Type:     ProviderGemini,
		Endpoint: server.URL,
		Model:    "gemini-1.5-flash",
		APIKey:   "sk-test",
	}
	status, msg, latency := probeGemini(newTestContext(), cfg, NewClientCache())

	assert.Equal(t, StatusFailed, status)
	assert.Equal(t, msgUnknownError, msg)
	assert.Nil(t, latency)
}
