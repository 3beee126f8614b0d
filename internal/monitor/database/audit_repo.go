package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"

	"github.com/printyx/printyx-monitor/internal/monitor/model"
	"github.com/printyx/printyx-monitor/internal/monitor/service/gate"
)

// RecordCheck persists one resolved validation gate check. Implements
// gate.Auditor; failures are logged and swallowed so auditing can never block
// a workflow transition.
func (d *Database) RecordCheck(ctx context.Context, rec gate.CheckRecord) {
	if d == nil {
		return
	}
	const q = `INSERT INTO gate_check_logs (id, transition_type, record_id, valid, transport_error, error_count, elapsed_ms, checked_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`
	id := uuid.NewString()
	if _, err := d.ExecContext(ctx, q, id, rec.TransitionType, rec.RecordID, rec.Valid, rec.Transport, rec.ErrorCount, rec.Elapsed.Milliseconds()); err != nil {
		log.Warn().Err(err).Str("transition", rec.TransitionType).Msg("insert gate_check_logs failed")
	}
}

// RecordBreachSnapshot persists currently breaching rows for trend reporting.
// Implements breach.HistorySink.
func (d *Database) RecordBreachSnapshot(ctx context.Context, rows []model.BreachMetric) {
	if d == nil {
		return
	}
	const q = `INSERT INTO breach_snapshots (id, rule_type, title, count, severity, drill_through_url, observed_at)
               VALUES ($1, $2, $3, $4, $5, $6, NOW())`
	for _, r := range rows {
		if _, err := d.ExecContext(ctx, q, uuid.NewString(), r.Type, r.Title, r.Count, string(r.Severity), r.DrillThroughURL); err != nil {
			log.Warn().Err(err).Str("rule_type", r.Type).Msg("insert breach_snapshots failed")
			return
		}
	}
}

// InsertToast records an emitted critical toast.
func (d *Database) InsertToast(ctx context.Context, id, headline string, records int, createdAt time.Time) error {
	if d == nil {
		return nil
	}
	const q = `INSERT INTO toast_logs (id, headline, records, created_at)
               VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`
	_, err := d.ExecContext(ctx, q, id, headline, records, createdAt)
	return err
}

// PruneHistory deletes audit rows older than the retention window.
func (d *Database) PruneHistory(ctx context.Context, retention time.Duration) error {
	if d == nil {
		return nil
	}
	interval := durationToPgInterval(retention)
	for _, q := range []string{
		`DELETE FROM gate_check_logs WHERE checked_at < NOW() - $1::interval`,
		`DELETE FROM breach_snapshots WHERE observed_at < NOW() - $1::interval`,
		`DELETE FROM toast_logs WHERE created_at < NOW() - $1::interval`,
	} {
		if _, err := d.ExecContext(ctx, q, interval); err != nil {
			return err
		}
	}
	return nil
}

// durationToPgInterval converts a Go duration into a Postgres interval value.
// Whole days are carried in the Days field, the remainder in microseconds.
func durationToPgInterval(dur time.Duration) pgtype.Interval {
	days := int32(dur / (24 * time.Hour))
	rem := dur % (24 * time.Hour)
	return pgtype.Interval{
		Microseconds: rem.Microseconds(),
		Days:         days,
		Valid:        true,
	}
}
