// Package api exposes the monitor's aggregated views over HTTP: the
// notification bell and inline alert feeds, breach tiles, the KPI summary
// bar, and the validation gates.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/printyx/printyx-monitor/internal/monitor/profile"
	"github.com/printyx/printyx-monitor/internal/monitor/service/aggregate"
	"github.com/printyx/printyx-monitor/internal/monitor/service/breach"
	"github.com/printyx/printyx-monitor/internal/monitor/service/gate"
	"github.com/printyx/printyx-monitor/internal/monitor/service/kpi"
)

// Deps carries the long-lived components the handlers read from.
type Deps struct {
	Alerts   *aggregate.Store
	Profiles *profile.Config
	Breaches *breach.Monitor
	KPI      *kpi.Monitor
	Gates    *gate.Manager
	Redis    *redis.Client
}

type Api struct {
	deps Deps
}

func NewApi(router *gin.Engine, deps Deps) *Api {
	api := &Api{deps: deps}
	api.setupRouters(router)
	return api
}

func (api *Api) setupRouters(router *gin.Engine) {
	router.GET("/v1/notifications", api.GetNotifications)
	router.GET("/v1/toasts/recent", api.GetRecentToasts)

	router.GET("/v1/breaches", api.GetBreaches)
	router.POST("/v1/breaches/refresh", api.RefreshBreaches)

	router.GET("/v1/metrics/summary", api.GetMetricsSummary)

	router.GET("/v1/gates/:transitionType/:recordID", api.GetGate)
	router.POST("/v1/gates/:transitionType/:recordID/recheck", api.RecheckGate)
	router.POST("/v1/gates/:transitionType/:recordID/dismiss", api.DismissGate)

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, map[string]any{"ok": true}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func errorBody(code, message string) map[string]any {
	return map[string]any{"error": map[string]any{"code": code, "message": message}}
}
