package probe

import (
	"bufio"
	"io"
	"strings"
)

// waitForFirstSSEEvent reads lines from body until it finds a non-empty
// "data:" payload that isn't the "[DONE]" sentinel, or the stream ends.
// It never retries and never reads past the first real event — callers
// close the response body themselves once this returns.
func waitForFirstSSEEvent(body io.Reader) bool {
	reader := bufio.NewReader(body)
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)

		if line != "" {
			if strings.HasPrefix(line, "data:") {
				data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
				if data != "" && data != "[DONE]" {
					return true
				}
			}
		}

		if err != nil {
			return false
		}
	}
}

// waitForFirstJSONLine reads lines from body until it finds a non-empty
// line (Gemini's streaming format: one complete JSON object per line,
// not SSE-prefixed).
func waitForFirstJSONLine(body io.Reader) bool {
	reader := bufio.NewReader(body)
	for {
		line, err := reader.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			return true
		}
		if err != nil {
			return false
		}
	}
}
