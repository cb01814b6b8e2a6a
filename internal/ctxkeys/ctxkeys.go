package ctxkeys

import "context"

// contextKey 用于在 context 中存储值的键类型
type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	scopeKey   contextKey = "scope_key"
)

// WithTraceID 设置 TraceID
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID 获取 TraceID
func TraceID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(traceIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithScope 设置当前快照刷新所属的 scope key，用于日志关联。
func WithScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}

// Scope 获取当前 scope key
func Scope(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(scopeKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
