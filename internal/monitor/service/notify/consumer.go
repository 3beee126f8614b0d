// Package notify consumes critical toasts off the aggregator channel.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/printyx/printyx-monitor/internal/monitor/database"
	"github.com/printyx/printyx-monitor/internal/monitor/service/aggregate"
)

const (
	toastLogKey = "monitor:toasts:recent"
	toastLogCap = 50
)

// Consumer drains the toast channel: logs each toast, keeps a short recent
// list in redis for the notification bell, and records it for audit.
type Consumer struct {
	DB    *database.Database
	Redis *redis.Client
}

func NewConsumer(db *database.Database, rdb *redis.Client) *Consumer {
	return &Consumer{DB: db, Redis: rdb}
}

// Start consumes toasts until ctx is done.
func (c *Consumer) Start(ctx context.Context, ch <-chan aggregate.Toast) {
	if ch == nil {
		log.Warn().Msg("toast consumer started without channel; no-op")
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case toast := <-ch:
			c.handle(ctx, toast)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, toast aggregate.Toast) {
	log.Info().
		Str("toast_id", toast.ID).
		Uint64("batch_seq", toast.BatchSeq).
		Int("records", toast.Records).
		Str("headline", toast.Headline).
		Msg("critical toast")

	c.pushRecent(ctx, toast)

	if c.DB != nil {
		if err := c.DB.InsertToast(ctx, toast.ID, toast.Headline, toast.Records, toast.CreatedAt); err != nil {
			log.Warn().Err(err).Str("toast_id", toast.ID).Msg("toast audit insert failed")
		}
	}
}

// pushRecent keeps a capped list of recent toasts. Best effort.
func (c *Consumer) pushRecent(ctx context.Context, toast aggregate.Toast) {
	if c.Redis == nil {
		return
	}
	data, err := json.Marshal(toast)
	if err != nil {
		return
	}
	pipe := c.Redis.TxPipeline()
	pipe.LPush(ctx, toastLogKey, data)
	pipe.LTrim(ctx, toastLogKey, 0, toastLogCap-1)
	pipe.Expire(ctx, toastLogKey, 24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Debug().Err(err).Msg("recent toast push failed")
	}
}
