package officialstatus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/check-cx/monitor/probe"
)

func TestPoller_FetchOne_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := statusPagePayload{}
		payload.Status.Indicator = "none"
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	p := NewPoller(map[probe.ProviderType]string{probe.ProviderAnthropic: server.URL}, time.Hour, zap.NewNop())
	result := p.fetchOne(context.Background(), server.URL)

	assert.Equal(t, string(StatusOperational), result.Status)
}

func TestPoller_FetchOne_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewPoller(map[probe.ProviderType]string{probe.ProviderAnthropic: server.URL}, time.Hour, zap.NewNop())
	result := p.fetchOne(context.Background(), server.URL)

	assert.Equal(t, string(StatusUnknown), result.Status)
	assert.Equal(t, "HTTP 503", result.Message)
}

func TestPoller_RunOnce_PopulatesCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := statusPagePayload{}
		payload.Status.Indicator = "minor"
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	p := NewPoller(map[probe.ProviderType]string{probe.ProviderOpenAI: server.URL}, time.Hour, zap.NewNop())
	p.runOnce(context.Background())

	result, ok := p.GetOfficialStatus(probe.ProviderOpenAI)
	require.True(t, ok)
	assert.Equal(t, string(StatusDegraded), result.Status)
}

func TestPoller_GetOfficialStatus_UnknownProviderNotOK(t *testing.T) {
	p := NewPoller(nil, time.Hour, zap.NewNop())
	_, ok := p.GetOfficialStatus(probe.ProviderGemini)
	assert.False(t, ok)
}

func TestPoller_EnsureRunning_IsIdempotent(t *testing.T) {
	p := NewPoller(nil, time.Hour, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.EnsureRunning(ctx)
	p.EnsureRunning(ctx)

	assert.True(t, p.started.Load())
	p.Stop()
}
