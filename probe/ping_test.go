package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasurePing_SuccessViaHEAD(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ms := MeasurePing(context.Background(), server.URL+"/chat/completions")
	require.NotNil(t, ms)
	assert.GreaterOrEqual(t, *ms, 0)
}

func TestMeasurePing_MeasuresEvenOnNon2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer server.Close()

	ms := MeasurePing(context.Background(), server.URL)
	require.NotNil(t, ms)
}

func TestMeasurePing_InvalidEndpointReturnsNil(t *testing.T) {
	ms := MeasurePing(context.Background(), "not-a-url")
	assert.Nil(t, ms)
}

func TestMeasurePing_UnreachableHostReturnsNil(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ms := MeasurePing(ctx, "https://127.0.0.1:1")
	assert.Nil(t, ms)
}

func TestOriginOf(t *testing.T) {
	origin, ok := originOf("https://api.openai.com/v1/chat/completions")
	require.True(t, ok)
	assert.Equal(t, "https://api.openai.com", origin)

	_, ok = originOf("not-a-url")
	assert.False(t, ok)
}
