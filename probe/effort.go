package probe

import (
	"regexp"
	"strings"
)

// reasoningEffortPattern matches a trailing "@effort" or "#effort" directive
// on a model name, e.g. "gpt-5.1-codex@high" or "o3-mini#minimal".
var reasoningEffortPattern = regexp.MustCompile(`(?i)^(.*)[@#](mini|minimal|low|medium|high)$`)

// reasoningModelPattern matches model names that imply reasoning_effort even
// without an explicit directive.
var reasoningModelPattern = regexp.MustCompile(`(?i)(codex|\bgpt-5\b|\bo[1-9]\b|deepseek-r1|qwq)`)

// splitReasoningEffort strips an inline effort directive from model, if
// present, and normalizes it ("mini" -> "minimal"). When no directive is
// present but the model name matches a known reasoning-model pattern, it
// infers "medium". Idempotent for non-matching inputs.
func splitReasoningEffort(model string) (stripped, effort string) {
	if m := reasoningEffortPattern.FindStringSubmatch(model); m != nil {
		stripped = m[1]
		effort = normalizeEffort(m[2])
		return stripped, effort
	}

	if reasoningModelPattern.MatchString(model) {
		return model, "medium"
	}

	return model, ""
}

func normalizeEffort(raw string) string {
	if strings.EqualFold(raw, "mini") {
		return "minimal"
	}
	return strings.ToLower(raw)
}
