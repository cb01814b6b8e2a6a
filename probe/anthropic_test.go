package probe

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeAnthropic_OperationalOnFirstEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "event: message_start\ndata: {\"type\":\"message_start\"}\n\n")
		w.(http.Flusher).Flush()
	}))
	defer server.Close()

	cfg := ProviderConfig{
		Type:     ProviderAnthropic,
		Endpoint: server.URL + "/v1/messages",
		Model:    "claude-3-5-sonnet-latest",
		APIKey:   "sk-ant-test",
	}
	status, msg, latency := probeAnthropic(newTestContext(), cfg, NewClientCache())

	assert.Equal(t, StatusOperational, status)
	assert.Contains(t, msg, "流式响应正常")
	require.NotNil(t, latency)
}

func TestProbeAnthropic_OverloadedStatusReportsVendorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusOverloaded)
		fmt.Fprint(w, `{"error":{"message":"Overloaded"}}`)
	}))
	defer server.Close()

	cfg := ProviderConfig{
		Type:     ProviderAnthropic,
		Endpoint: server.URL + "/v1/messages",
		Model:    "claude-3-5-sonnet-latest",
		APIKey:   "sk-ant-test",
	}
	status, msg, latency := probeAnthropic(newTestContext(), cfg, NewClientCache())

	assert.Equal(t, StatusFailed, status)
	assert.Equal(t, "Overloaded", msg)
	assert.Nil(t, latency)
}

func TestProbeAnthropic_OverloadedWithoutBodyFallsBackToHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusOverloaded)
	}))
	defer server.Close()

	cfg := ProviderConfig{
		Type:     ProviderAnthropic,
		Endpoint: server.URL + "/v1/messages",
		Model:    "claude-3-5-sonnet-latest",
		APIKey:   "sk-ant-test",
	}
	status, msg, _ := probeAnthropic(newTestContext(), cfg, NewClientCache())

	assert.Equal(t, StatusFailed, status)
	assert.Equal(t, "HTTP 529", msg)
}

func TestProbeAnthropic_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := ProviderConfig{
		Type:     ProviderAnthropic,
		Endpoint: server.URL + "/v1/messages",
		Model:    "claude-3-5-sonnet-latest",
		APIKey:   "sk-bad",
	}
	status, msg, _ := probeAnthropic(newTestContext(), cfg, NewClientCache())

	assert.Equal(t, StatusFailed, status)
	assert.Equal(t, "HTTP 401", msg)
}
