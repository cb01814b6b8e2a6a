package probe

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestSplitReasoningEffort_ExplicitDirective(t *testing.T) {
	cases := []struct {
		model      string
		wantModel  string
		wantEffort string
	}{
		{"gpt-5.1-codex@high", "gpt-5.1-codex", "high"},
		{"o3-mini#minimal", "o3-mini", "minimal"},
		{"o3-mini#mini", "o3-mini", "minimal"},
		{"gpt-4o@MEDIUM", "gpt-4o", "medium"},
		{"gpt-4o#Low", "gpt-4o", "low"},
	}
	for _, c := range cases {
		t.Run(c.model, func(t *testing.T) {
			model, effort := splitReasoningEffort(c.model)
			assert.Equal(t, c.wantModel, model)
			assert.Equal(t, c.wantEffort, effort)
		})
	}
}

func TestSplitReasoningEffort_ImplicitInference(t *testing.T) {
	cases := []string{
		"gpt-5-codex",
		"gpt-5",
		"o1",
		"o3",
		"deepseek-r1",
		"qwq-32b",
	}
	for _, model := range cases {
		t.Run(model, func(t *testing.T) {
			stripped, effort := splitReasoningEffort(model)
			assert.Equal(t, model, stripped)
			assert.Equal(t, "medium", effort)
		})
	}
}

func TestSplitReasoningEffort_NoMatch(t *testing.T) {
	stripped, effort := splitReasoningEffort("gpt-4o")
	assert.Equal(t, "gpt-4o", stripped)
	assert.Equal(t, "", effort)
}

// TestProperty_SplitReasoningEffortIdempotent verifies that splitting the
// stripped model a second time strips nothing further (and, when the first
// split found no directive, finds none either), for any identifier gopter
// generates.
func TestProperty_SplitReasoningEffortIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("splitting a model with no directive twice is stable", prop.ForAll(
		func(model string) bool {
			stripped1, effort1 := splitReasoningEffort(model)
			stripped2, effort2 := splitReasoningEffort(stripped1)

			if effort1 == "" {
				return stripped2 == stripped1 && effort2 == effort1
			}
			// A directive was stripped; re-splitting the bare model name
			// must not find another directive to strip.
			return stripped2 == stripped1
		},
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
