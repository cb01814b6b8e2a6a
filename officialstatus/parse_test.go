package officialstatus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseStatusPage_NoneIndicatorIsOperational(t *testing.T) {
	payload := statusPagePayload{}
	payload.Status.Indicator = "none"

	result := parseStatusPage(payload, time.Now())
	assert.Equal(t, string(StatusOperational), result.Status)
	assert.Empty(t, result.AffectedComponents)
}

func TestParseStatusPage_MinorIsDegraded(t *testing.T) {
	payload := statusPagePayload{}
	payload.Status.Indicator = "minor"

	result := parseStatusPage(payload, time.Now())
	assert.Equal(t, string(StatusDegraded), result.Status)
}

func TestParseStatusPage_MajorAndCriticalAreDown(t *testing.T) {
	for _, indicator := range []string{"major", "critical"} {
		payload := statusPagePayload{}
		payload.Status.Indicator = indicator
		result := parseStatusPage(payload, time.Now())
		assert.Equal(t, string(StatusDown), result.Status, indicator)
	}
}

func TestParseStatusPage_ComponentOutageForcesDown(t *testing.T) {
	payload := statusPagePayload{}
	payload.Status.Indicator = "none"
	payload.Components = []struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}{
		{Name: "API", Status: "major_outage"},
	}

	result := parseStatusPage(payload, time.Now())
	assert.Equal(t, string(StatusDown), result.Status)
	assert.Equal(t, []string{"API"}, result.AffectedComponents)
}

func TestParseStatusPage_ComponentDegradedDoesNotDowngradeDown(t *testing.T) {
	payload := statusPagePayload{}
	payload.Status.Indicator = "none"
	payload.Components = []struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}{
		{Name: "Region A", Status: "partial_outage"},
		{Name: "Region B", Status: "degraded_performance"},
	}

	result := parseStatusPage(payload, time.Now())
	assert.Equal(t, string(StatusDown), result.Status)
	assert.ElementsMatch(t, []string{"Region A", "Region B"}, result.AffectedComponents)
}

func TestComponentMessage_ThreeOrFewerListed(t *testing.T) {
	assert.Equal(t, "", componentMessage(nil))
	assert.Equal(t, "A, B", componentMessage([]string{"A", "B"}))
}

func TestComponentMessage_MoreThanThreeTruncated(t *testing.T) {
	msg := componentMessage([]string{"A", "B", "C", "D", "E"})
	assert.Equal(t, "A, B, C 等 5 个组件 受影响", msg)
}
