package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// 📦 通用响应结构
// =============================================================================

// Response is the canonical JSON envelope returned by every HTTP endpoint.
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	RequestID string     `json:"requestId,omitempty"`
}

// ErrorInfo is the canonical error shape embedded in a failed Response.
type ErrorInfo struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

// ErrorKind is the error taxonomy surfaced by the HTTP layer. It names the
// category of failure, not a Go error type — probes, stores, and pollers
// each degrade internally and never let a raw error cross their boundary.
type ErrorKind string

const (
	ErrKindTimeout        ErrorKind = "timeout"
	ErrKindTransport      ErrorKind = "transport"
	ErrKindProtocol       ErrorKind = "protocol"
	ErrKindAuthentication ErrorKind = "authentication"
	ErrKindStorage        ErrorKind = "storage"
	ErrKindConfig         ErrorKind = "config"
	ErrKindInternal       ErrorKind = "internal"
	ErrKindNotFound       ErrorKind = "not_found"
)

// =============================================================================
// 🎯 响应辅助函数
// =============================================================================

// WriteJSON 写入 JSON 响应
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// 如果编码失败，响应头已写出，这里只能放弃
		return
	}
}

// WriteSuccess 写入成功响应
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: w.Header().Get("X-Request-ID"),
	})
}

// WriteError 写入错误响应
func WriteError(w http.ResponseWriter, kind ErrorKind, message string, logger *zap.Logger) {
	status := mapErrorKindToHTTPStatus(kind)

	if logger != nil {
		logger.Error("api error",
			zap.String("kind", string(kind)),
			zap.String("message", message),
			zap.Int("status", status),
		)
	}

	WriteJSON(w, status, Response{
		Success: false,
		Error: &ErrorInfo{
			Kind:       string(kind),
			Message:    message,
			HTTPStatus: status,
		},
		Timestamp: time.Now(),
	})
}

// =============================================================================
// 🔄 错误类别到 HTTP 状态码映射
// =============================================================================

func mapErrorKindToHTTPStatus(kind ErrorKind) int {
	switch kind {
	case ErrKindNotFound:
		return http.StatusNotFound
	case ErrKindConfig:
		return http.StatusBadRequest
	case ErrKindAuthentication:
		return http.StatusUnauthorized
	case ErrKindTimeout:
		return http.StatusGatewayTimeout
	case ErrKindTransport, ErrKindProtocol:
		return http.StatusBadGateway
	case ErrKindStorage, ErrKindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// =============================================================================
// 🛡️ 请求验证辅助函数
// =============================================================================

// DecodeJSONBody 解码 JSON 请求体
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) error {
	if r.Body == nil {
		WriteError(w, ErrKindConfig, "request body is empty", logger)
		return errEmptyBody
	}

	// Limit request body to 1 MB to prevent abuse.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields() // 严格模式：拒绝未知字段

	if err := decoder.Decode(dst); err != nil {
		WriteError(w, ErrKindConfig, "invalid JSON body: "+err.Error(), logger)
		return err
	}

	return nil
}

var errEmptyBody = jsonBodyError("request body is empty")

type jsonBodyError string

func (e jsonBodyError) Error() string { return string(e) }

// ValidateContentType 验证 Content-Type
// 使用 mime.ParseMediaType 进行宽松解析，正确处理大小写变体
// （如 "application/json; charset=UTF-8"）和额外参数。
func ValidateContentType(w http.ResponseWriter, r *http.Request, logger *zap.Logger) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		WriteError(w, ErrKindConfig, "Content-Type must be application/json", logger)
		return false
	}
	return true
}

// ValidateURL validates that s is a well-formed HTTP or HTTPS URL.
func ValidateURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidateEnum checks whether value is one of the allowed values.
func ValidateEnum(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// ValidateNonNegative checks that value is >= 0.
func ValidateNonNegative(value float64) bool {
	return value >= 0
}

// =============================================================================
// 📊 响应包装器（用于捕获状态码）
// =============================================================================

// ResponseWriter 包装 http.ResponseWriter 以捕获状态码
type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
	Written    bool
}

// NewResponseWriter 创建新的 ResponseWriter
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		StatusCode:     http.StatusOK,
	}
}

// WriteHeader 重写 WriteHeader 以捕获状态码
func (rw *ResponseWriter) WriteHeader(code int) {
	if !rw.Written {
		rw.StatusCode = code
		rw.Written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

// Write 重写 Write 以标记已写入
func (rw *ResponseWriter) Write(b []byte) (int, error) {
	if !rw.Written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
