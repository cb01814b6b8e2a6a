package probe

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/check-cx/monitor/internal/tlsutil"
)

// ClientCache reuses one vendor HTTP client per (baseURL, apiKey, headers)
// tuple across probes, so a refresh batch does not re-handshake TLS for
// every check. Read-mostly; mutation only on first-create via LoadOrStore,
// matching the teacher's sync.Map-cache idiom.
type ClientCache struct {
	clients sync.Map // key string -> *http.Client
}

// NewClientCache creates an empty client cache.
func NewClientCache() *ClientCache {
	return &ClientCache{}
}

// Get returns the cached client for the given tuple, creating one with the
// hardened transport and the given timeout if none exists yet.
func (c *ClientCache) Get(baseURL, apiKey string, headers map[string]string, timeout time.Duration) *http.Client {
	key := clientCacheKey(baseURL, apiKey, headers)
	if v, ok := c.clients.Load(key); ok {
		return v.(*http.Client)
	}
	client := tlsutil.SecureHTTPClient(timeout)
	actual, _ := c.clients.LoadOrStore(key, client)
	return actual.(*http.Client)
}

// clientCacheKey builds an order-independent stable key from the tuple,
// sorting header pairs so that equivalent header maps always collide.
func clientCacheKey(baseURL, apiKey string, headers map[string]string) string {
	pairs := make([]string, 0, len(headers))
	for k, v := range headers {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)

	h := sha256.New()
	h.Write([]byte(baseURL))
	h.Write([]byte{0})
	h.Write([]byte(apiKey))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(h.Sum(nil))
}
