package probe

import "fmt"

// classifyLatency turns a successful stream's elapsed time into the
// operational/degraded boundary and its user-facing message. 6000ms itself
// is still operational; the boundary is exclusive on the degraded side.
func classifyLatency(elapsedMs int) (HealthStatus, string, *int) {
	ms := elapsedMs
	if elapsedMs > DegradedThresholdMs {
		return StatusDegraded, fmt.Sprintf("响应成功但耗时 %d ms", elapsedMs), &ms
	}
	return StatusOperational, fmt.Sprintf("流式响应正常 (%d ms)", elapsedMs), &ms
}

const (
	msgTimeout      = "请求超时"
	msgMaintenance  = "配置处于维护模式"
	msgUnknownError = "未知错误"
)

func msgHTTPStatus(code int) string {
	return fmt.Sprintf("HTTP %d", code)
}
