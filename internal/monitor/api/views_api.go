package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printyx/printyx-monitor/internal/monitor/model"
	"github.com/printyx/printyx-monitor/internal/monitor/service/breach"
)

// GetNotifications returns the filtered alert view for a notification surface.
// The profile query parameter picks a configured filter profile (bell, inline);
// page narrows the view to alerts tagged for that page.
func (api *Api) GetNotifications(c *gin.Context) {
	name := c.DefaultQuery("profile", "bell")
	spec := api.deps.Profiles.Spec(name)
	if page := c.Query("page"); page != "" {
		spec.PageKey = page
	}

	records := api.deps.Alerts.View(spec)
	_, seq, fetchedAt := api.deps.Alerts.Latest()

	c.JSON(http.StatusOK, gin.H{
		"profile":   name,
		"seq":       seq,
		"fetchedAt": fetchedAt,
		"count":     len(records),
		"alerts":    records,
	})
}

// GetRecentToasts reads the rolling toast log out of redis. Without redis the
// feature is simply absent, same as the rest of the cache layer.
func (api *Api) GetRecentToasts(c *gin.Context) {
	if api.deps.Redis == nil {
		c.JSON(http.StatusServiceUnavailable, errorBody("CACHE_UNAVAILABLE", "toast history requires redis"))
		return
	}
	raw, err := api.deps.Redis.LRange(c.Request.Context(), "monitor:toasts:recent", 0, -1).Result()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody("INTERNAL_ERROR", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(raw), "toasts": raw})
}

type breachTile struct {
	model.BreachMetric
	Badge string `json:"badge"`
}

// GetBreaches returns the current breach snapshot as tiles, or the explicit
// all-clear card when nothing is breaching.
func (api *Api) GetBreaches(c *gin.Context) {
	renderBreaches(c, api.deps.Breaches.Snapshot())
}

// RefreshBreaches forces an immediate poll and returns the resulting snapshot.
// It may race the scheduled poll; whichever response lands last wins.
func (api *Api) RefreshBreaches(c *gin.Context) {
	renderBreaches(c, api.deps.Breaches.Refresh(c.Request.Context()))
}

func renderBreaches(c *gin.Context, snap breach.Snapshot) {
	tiles := make([]breachTile, 0, len(snap.Active))
	for _, m := range snap.Active {
		tiles = append(tiles, breachTile{BreachMetric: m, Badge: m.Severity.BadgeVariant()})
	}
	c.JSON(http.StatusOK, gin.H{
		"allClear":  snap.AllClear,
		"fetchedAt": snap.FetchedAt,
		"tiles":     tiles,
	})
}

// GetMetricsSummary serves the last good KPI summary. Before the first
// successful poll there is nothing to show.
func (api *Api) GetMetricsSummary(c *gin.Context) {
	sum := api.deps.KPI.Latest()
	if sum == nil {
		c.JSON(http.StatusNotFound, errorBody("NO_SUMMARY", "no metrics summary fetched yet"))
		return
	}
	c.JSON(http.StatusOK, sum)
}
