// Package breach polls the platform's SLA breach report and keeps the active
// breach set for dashboard tiles. Feed outages deliberately render as an
// affirmative "all clear", never as an error surface.
package breach

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/printyx/printyx-monitor/internal/monitor/metrics"
	"github.com/printyx/printyx-monitor/internal/monitor/model"
)

const latestSnapshotKey = "monitor:breaches:latest"

// Fetcher is the slice of the platform client the monitor needs.
type Fetcher interface {
	FetchBreaches(ctx context.Context) ([]model.BreachMetric, error)
}

// HistorySink persists observed breach rows for trend reporting. Best effort.
type HistorySink interface {
	RecordBreachSnapshot(ctx context.Context, rows []model.BreachMetric)
}

// Snapshot is the rendered breach state: either the active set in server
// order, or the explicit all-clear.
type Snapshot struct {
	AllClear  bool                 `json:"allClear"`
	Active    []model.BreachMetric `json:"active,omitempty"`
	FetchedAt time.Time            `json:"fetchedAt"`
}

// Monitor owns the breach poll loop and the latest snapshot.
type Monitor struct {
	client  Fetcher
	redis   *redis.Client
	history HistorySink

	mu   sync.RWMutex
	snap Snapshot
}

func NewMonitor(client Fetcher) *Monitor {
	return &Monitor{client: client, snap: Snapshot{AllClear: true}}
}

func (m *Monitor) WithRedis(rdb *redis.Client) *Monitor { m.redis = rdb; return m }
func (m *Monitor) WithHistory(h HistorySink) *Monitor   { m.history = h; return m }

// Run polls until ctx is done. One poll fires immediately on startup.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	m.Refresh(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Refresh(ctx)
		}
	}
}

// Refresh fetches breach metrics now and installs the result. Manual refreshes
// may race the automatic poll; whichever response lands last wins.
func (m *Monitor) Refresh(ctx context.Context) Snapshot {
	rows, err := m.client.FetchBreaches(ctx)
	if err != nil {
		// fail open as an affirmative state, not an error surface
		metrics.PollTotal.WithLabelValues("breaches", "error").Inc()
		log.Warn().Err(err).Msg("breach poll failed, rendering all clear")
		return m.install(Snapshot{AllClear: true, FetchedAt: time.Now().UTC()}, nil)
	}
	metrics.PollTotal.WithLabelValues("breaches", "ok").Inc()

	active := ActiveSet(rows)
	snap := Snapshot{
		AllClear:  len(active) == 0,
		Active:    active,
		FetchedAt: time.Now().UTC(),
	}
	return m.install(snap, active)
}

// Snapshot returns the latest rendered state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

func (m *Monitor) install(snap Snapshot, active []model.BreachMetric) Snapshot {
	m.mu.Lock()
	m.snap = snap
	m.mu.Unlock()

	m.writeThrough(snap)
	if m.history != nil && len(active) > 0 {
		m.history.RecordBreachSnapshot(context.Background(), active)
	}
	return snap
}

func (m *Monitor) writeThrough(snap Snapshot) {
	if m.redis == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := m.redis.Set(context.Background(), latestSnapshotKey, data, 0).Err(); err != nil {
		log.Debug().Err(err).Msg("write-through of breach snapshot failed")
	}
}

// ActiveSet keeps metrics with count > 0, preserving server order. Severity is
// styling-only and never reorders tiles.
func ActiveSet(rows []model.BreachMetric) []model.BreachMetric {
	out := make([]model.BreachMetric, 0, len(rows))
	for _, r := range rows {
		if r.Breaching() {
			out = append(out, r)
		}
	}
	return out
}
