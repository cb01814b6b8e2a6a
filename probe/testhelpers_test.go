package probe

import (
	"context"
	"encoding/json"
	"net/http"
)

// newTestContext returns a plain background context; test servers respond
// immediately so the dispatcher's real ProbeTimeout budget isn't needed here.
func newTestContext() context.Context {
	return context.Background()
}

func decodeJSONBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
