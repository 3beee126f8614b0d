package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	pclient "github.com/printyx/printyx-monitor/internal/monitor/client"
	"github.com/printyx/printyx-monitor/internal/monitor/metrics"
	"github.com/printyx/printyx-monitor/internal/monitor/model"
)

const (
	latestBatchKey = "monitor:alerts:latest"
	toastMarkerTTL = time.Hour
)

// AlertFetcher is the slice of the platform client the scheduler needs.
type AlertFetcher interface {
	FetchAlerts(ctx context.Context) ([]model.AlertRecord, error)
}

// Deps wires the alert poll loop.
type Deps struct {
	Client   AlertFetcher
	Redis    *redis.Client
	Store    *Store
	ToastCh  chan<- Toast
	Interval time.Duration
}

// NewRedisClientFromConfig constructs a redis client from app config.
func NewRedisClientFromConfig(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// StartScheduler polls the alert feed on a fixed interval until ctx is done.
// Feed outages are non-fatal: a failed poll installs an empty batch and waits
// for the next tick, with no retry or backoff.
func StartScheduler(ctx context.Context, deps Deps) {
	if deps.Interval <= 0 {
		deps.Interval = 60 * time.Second
	}
	runOnce(ctx, &deps)
	t := time.NewTicker(deps.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			runOnce(ctx, &deps)
		}
	}
}

func runOnce(ctx context.Context, deps *Deps) {
	batch, err := deps.Client.FetchAlerts(ctx)
	if err != nil {
		// fail open: a monitoring-feed outage must never surface as a blocking error
		var fe *pclient.FetchError
		if errors.As(err, &fe) {
			log.Warn().Err(err).Msg("alert poll failed, treating as empty batch")
		} else {
			log.Error().Err(err).Msg("alert poll failed with unexpected error")
		}
		metrics.PollTotal.WithLabelValues("alerts", "error").Inc()
		batch = nil
	} else {
		metrics.PollTotal.WithLabelValues("alerts", "ok").Inc()
	}

	seq := deps.Store.Replace(batch)
	log.Debug().Uint64("batch_seq", seq).Int("records", len(batch)).Msg("alert batch installed")

	writeThroughLatest(ctx, deps.Redis, batch)

	if !NeedsToast(batch) {
		return
	}
	fp := BatchFingerprint(batch)
	if !tryMarkToast(ctx, deps.Redis, deps.Store, fp) {
		log.Debug().Str("fingerprint", fp).Msg("critical batch already toasted, skipping")
		return
	}
	toast := Toast{
		ID:        uuid.NewString(),
		BatchSeq:  seq,
		Records:   len(batch),
		Headline:  Headline(batch),
		CreatedAt: time.Now().UTC(),
	}
	if deps.ToastCh != nil {
		select {
		case deps.ToastCh <- toast:
			metrics.ToastTotal.Inc()
		default:
			// channel full, drop rather than block the poll loop
			log.Warn().Uint64("batch_seq", seq).Msg("toast channel full, dropping toast")
		}
	}
}

// writeThroughLatest caches the raw batch for other consumers. Best effort.
func writeThroughLatest(ctx context.Context, rdb *redis.Client, batch []model.AlertRecord) {
	if rdb == nil {
		return
	}
	data, err := json.Marshal(batch)
	if err != nil {
		return
	}
	if err := rdb.Set(ctx, latestBatchKey, data, 0).Err(); err != nil {
		log.Debug().Err(err).Msg("write-through of latest batch failed")
	}
}

// tryMarkToast claims the toast for this batch fingerprint. Redis SETNX gives
// cross-instance dedup; the local fingerprint covers redis being absent.
func tryMarkToast(ctx context.Context, rdb *redis.Client, store *Store, fp string) bool {
	if store.claimFingerprint(fp) {
		if rdb == nil {
			return true
		}
		ok, err := rdb.SetNX(ctx, "monitor:toast:batch:"+fp, 1, toastMarkerTTL).Result()
		if err != nil {
			// redis outage: fall back to the local claim
			return true
		}
		return ok
	}
	return false
}
