package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/check-cx/monitor/dashboard"
	"github.com/check-cx/monitor/snapshot"
)

// groupNotFoundBody is the exact 404 shape the group endpoint returns when
// no enabled config belongs to the requested group — a bare object, not the
// common Response envelope, since this is a public read-only JSON API.
type groupNotFoundBody struct {
	Error string `json:"error"`
}

// DashboardHandler serves the two read-only JSON endpoints: the full
// dashboard and a single group's view.
type DashboardHandler struct {
	aggregator *dashboard.Aggregator
	logger     *zap.Logger
}

// NewDashboardHandler creates a handler backed by aggregator.
func NewDashboardHandler(aggregator *dashboard.Aggregator, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{aggregator: aggregator, logger: logger}
}

// HandleDashboard serves GET /api/dashboard.
// @Summary Dashboard snapshot
// @Description Every enabled target's timeline, grouped and ordered
// @Tags dashboard
// @Produce json
// @Success 200 {object} dashboard.DashboardData
// @Router /api/dashboard [get]
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	data := h.aggregator.LoadDashboardData(r.Context(), snapshot.RefreshAlways)
	WriteJSON(w, http.StatusOK, data)
}

// HandleGroup serves GET /api/group/{groupName}.
// @Summary Group dashboard snapshot
// @Description One group's timeline view; __ungrouped__ selects configs with no group
// @Tags dashboard
// @Produce json
// @Success 200 {object} dashboard.GroupDashboardData
// @Failure 404 {object} groupNotFoundBody
// @Router /api/group/{groupName} [get]
func (h *DashboardHandler) HandleGroup(w http.ResponseWriter, r *http.Request) {
	groupName := r.PathValue("groupName")

	data := h.aggregator.LoadGroupDashboardData(r.Context(), groupName, snapshot.RefreshAlways)
	if data == nil {
		WriteJSON(w, http.StatusNotFound, groupNotFoundBody{Error: "分组不存在或没有配置"})
		return
	}
	WriteJSON(w, http.StatusOK, data)
}
