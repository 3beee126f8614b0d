// Package kpi keeps the latest dashboard KPI summary warm for the summary bar.
package kpi

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/printyx/printyx-monitor/internal/monitor/metrics"
	"github.com/printyx/printyx-monitor/internal/monitor/model"
)

// Fetcher is the slice of the platform client the monitor needs.
type Fetcher interface {
	FetchMetricsSummary(ctx context.Context) (*model.MetricsSummary, error)
}

// Monitor polls the KPI endpoint and serves the last good summary. A failed
// poll keeps the prior summary; the summary bar shows stale data over no data.
type Monitor struct {
	client Fetcher

	mu   sync.RWMutex
	last *model.MetricsSummary
}

func NewMonitor(client Fetcher) *Monitor { return &Monitor{client: client} }

// Run polls until ctx is done. One poll fires immediately on startup.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	m.refresh(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.refresh(ctx)
		}
	}
}

func (m *Monitor) refresh(ctx context.Context) {
	sum, err := m.client.FetchMetricsSummary(ctx)
	if err != nil {
		metrics.PollTotal.WithLabelValues("kpi", "error").Inc()
		log.Warn().Err(err).Msg("kpi poll failed, keeping last summary")
		return
	}
	metrics.PollTotal.WithLabelValues("kpi", "ok").Inc()
	m.mu.Lock()
	m.last = sum
	m.mu.Unlock()
}

// Latest returns the last good summary, or nil when none has arrived yet.
func (m *Monitor) Latest() *model.MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}
