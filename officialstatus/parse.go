package officialstatus

import (
	"fmt"
	"strings"
	"time"

	"github.com/check-cx/monitor/probe"
)

// statusPagePayload mirrors the summary.json shape Statuspage.io-hosted
// vendor pages publish (Anthropic's status page being the concrete example).
type statusPagePayload struct {
	Status struct {
		Indicator string `json:"indicator"`
	} `json:"status"`
	Components []struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	} `json:"components"`
}

// parseStatusPage turns a vendor payload into a cached result, applying the
// component-level override rules on top of the page-level indicator.
func parseStatusPage(payload statusPagePayload, now time.Time) probe.OfficialStatusResult {
	status := indicatorToStatus(payload.Status.Indicator)

	var affected []string
	for _, c := range payload.Components {
		s := strings.ToLower(c.Status)
		switch {
		case strings.Contains(s, "outage") || s == "major_outage":
			status = StatusDown
			affected = append(affected, c.Name)
		case strings.Contains(s, "degraded"):
			if status != StatusDown {
				status = StatusDegraded
			}
			affected = append(affected, c.Name)
		}
	}

	return probe.OfficialStatusResult{
		Status:             string(status),
		Message:            componentMessage(affected),
		CheckedAt:          now,
		AffectedComponents: affected,
	}
}

func indicatorToStatus(indicator string) Status {
	switch strings.ToLower(indicator) {
	case "none":
		return StatusOperational
	case "minor":
		return StatusDegraded
	case "major", "critical":
		return StatusDown
	default:
		return StatusUnknown
	}
}

// componentMessage lists affected components, truncating to a count summary
// beyond three, per the dashboard's display rule.
func componentMessage(affected []string) string {
	if len(affected) == 0 {
		return ""
	}
	if len(affected) > 3 {
		return fmt.Sprintf("%s, %s, %s 等 %d 个组件 受影响", affected[0], affected[1], affected[2], len(affected))
	}
	return strings.Join(affected, ", ")
}
