// Package gate implements the workflow validation gate: a small explicit state
// machine that asks the platform validator whether a record may progress
// between workflow stages, and holds the result for UI consumption.
package gate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/printyx/printyx-monitor/internal/monitor/metrics"
	"github.com/printyx/printyx-monitor/internal/monitor/model"
)

// State is the gate's externally observable state. The machine is always in
// exactly one of these.
type State string

const (
	StateHidden   State = "hidden"
	StateChecking State = "checking"
	StatePassed   State = "passed"
	StateFailed   State = "failed"
)

// DefaultHideAfter is the success display window before passed auto-hides.
const DefaultHideAfter = 3 * time.Second

// SystemErrorMessage is the synthetic error raised when the validator itself
// is unreachable. The UI cannot tell it apart from a business failure; the
// log line can.
const SystemErrorMessage = "Validation system error"

// ErrNotFailed is returned when a re-check is requested outside the failed state.
var ErrNotFailed = errors.New("re-check is only available while failed")

// Validator resolves one validation request against the platform.
type Validator func(ctx context.Context, transitionType, recordID string) (*model.ValidationResult, error)

// Callbacks receive terminal check outcomes. Both are optional.
type Callbacks struct {
	OnPassed func(transitionType, recordID string)
	OnFailed func(transitionType, recordID string, errs []model.ValidationError)
}

// CheckRecord is the audit row written per resolved check.
type CheckRecord struct {
	TransitionType string
	RecordID       string
	Valid          bool
	Transport      bool
	ErrorCount     int
	Elapsed        time.Duration
}

// Auditor persists resolved checks. Implementations must be best-effort.
type Auditor interface {
	RecordCheck(ctx context.Context, rec CheckRecord)
}

// View is a read-only snapshot of the gate for rendering.
type View struct {
	State          State                   `json:"state"`
	Title          string                  `json:"title"`
	TransitionType string                  `json:"transitionType,omitempty"`
	RecordID       string                  `json:"recordId,omitempty"`
	Errors         []model.ValidationError `json:"errors,omitempty"`
	Dismissed      bool                    `json:"dismissed"`
}

// Gate gates one workflow surface. The subject (transitionType, recordID) may
// change over its lifetime; in-flight results for an older subject are
// discarded when they resolve, so the displayed state always reflects the most
// recently requested subject.
type Gate struct {
	validate  Validator
	cb        Callbacks
	auditor   Auditor
	titles    *Titles
	hideAfter time.Duration
	// baseCtx outlives any single caller; checks must not die with an HTTP request.
	baseCtx context.Context
	// afterFunc allows overriding for tests
	afterFunc func(time.Duration, func()) *time.Timer

	mu             sync.Mutex
	transitionType string
	recordID       string
	state          State
	errors         []model.ValidationError
	dismissed      bool
	seq            uint64
	hideTimer      *time.Timer
}

func New(ctx context.Context, validate Validator, hideAfter time.Duration) *Gate {
	if hideAfter <= 0 {
		hideAfter = DefaultHideAfter
	}
	return &Gate{
		validate:  validate,
		titles:    DefaultTitles(),
		hideAfter: hideAfter,
		baseCtx:   ctx,
		afterFunc: time.AfterFunc,
		state:     StateHidden,
	}
}

// WithCallbacks sets pass/fail callbacks.
func (g *Gate) WithCallbacks(cb Callbacks) *Gate { g.cb = cb; return g }

// WithAuditor sets the audit sink.
func (g *Gate) WithAuditor(a Auditor) *Gate { g.auditor = a; return g }

// WithTitles replaces the transition title table.
func (g *Gate) WithTitles(t *Titles) *Gate {
	if t != nil {
		g.titles = t
	}
	return g
}

// SetSubject points the gate at a record/transition pair and starts a check.
// An empty recordID disables the gate back to hidden. Re-invoking with the
// same subject is a no-op unless the gate is hidden.
func (g *Gate) SetSubject(transitionType, recordID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if recordID == "" || transitionType == "" {
		g.toHiddenLocked()
		return
	}
	if g.transitionType == transitionType && g.recordID == recordID && g.state != StateHidden {
		return
	}
	g.transitionType = transitionType
	g.recordID = recordID
	g.startCheckLocked()
}

// Disable forces the gate back to hidden and clears the subject.
func (g *Gate) Disable() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transitionType = ""
	g.recordID = ""
	g.toHiddenLocked()
}

// Recheck re-runs validation for the current subject. Only legal while failed.
// Previously displayed errors are cleared before the new result arrives.
func (g *Gate) Recheck() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateFailed {
		return ErrNotFailed
	}
	g.startCheckLocked()
	return nil
}

// Dismiss collapses the rendering without touching the machine's last result.
// A later subject change can still re-trigger checking.
func (g *Gate) Dismiss() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dismissed = true
}

// Snapshot returns the current view.
func (g *Gate) Snapshot() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	errs := make([]model.ValidationError, len(g.errors))
	copy(errs, g.errors)
	return View{
		State:          g.state,
		Title:          g.titles.For(g.transitionType),
		TransitionType: g.transitionType,
		RecordID:       g.recordID,
		Errors:         errs,
		Dismissed:      g.dismissed,
	}
}

// Subject returns the current (transitionType, recordID) pair.
func (g *Gate) Subject() (string, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.transitionType, g.recordID
}

func (g *Gate) toHiddenLocked() {
	g.state = StateHidden
	g.errors = nil
	g.dismissed = false
	g.stopHideTimerLocked()
	g.seq++ // orphan any in-flight request
}

func (g *Gate) startCheckLocked() {
	g.state = StateChecking
	g.errors = nil
	g.dismissed = false
	g.stopHideTimerLocked()
	g.seq++
	mySeq := g.seq
	tt, id := g.transitionType, g.recordID
	go g.runCheck(mySeq, tt, id)
}

func (g *Gate) runCheck(mySeq uint64, transitionType, recordID string) {
	start := time.Now()
	res, err := g.validate(g.baseCtx, transitionType, recordID)
	elapsed := time.Since(start)

	g.mu.Lock()
	if g.seq != mySeq {
		g.mu.Unlock()
		// stale response: a newer subject or re-check superseded this request
		metrics.StaleResponseTotal.Inc()
		log.Debug().Str("transition", transitionType).Str("record", recordID).Msg("discarding stale validation response")
		return
	}

	var rec CheckRecord
	switch {
	case err != nil:
		// transport failure renders like a business failure but is logged apart
		g.state = StateFailed
		g.errors = []model.ValidationError{{Field: "system", Message: SystemErrorMessage}}
		rec = CheckRecord{TransitionType: transitionType, RecordID: recordID, Transport: true, ErrorCount: 1, Elapsed: elapsed}
		metrics.GateCheckTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("transition", transitionType).Str("record", recordID).Msg("validation transport failure")
	case res.Valid:
		g.state = StatePassed
		rec = CheckRecord{TransitionType: transitionType, RecordID: recordID, Valid: true, Elapsed: elapsed}
		metrics.GateCheckTotal.WithLabelValues("passed").Inc()
		g.scheduleHideLocked(mySeq)
	default:
		g.state = StateFailed
		g.errors = res.Errors
		rec = CheckRecord{TransitionType: transitionType, RecordID: recordID, ErrorCount: len(res.Errors), Elapsed: elapsed}
		metrics.GateCheckTotal.WithLabelValues("failed").Inc()
	}
	errsCopy := make([]model.ValidationError, len(g.errors))
	copy(errsCopy, g.errors)
	passed := g.state == StatePassed
	g.mu.Unlock()

	if passed {
		if g.cb.OnPassed != nil {
			g.cb.OnPassed(transitionType, recordID)
		}
	} else if g.cb.OnFailed != nil {
		g.cb.OnFailed(transitionType, recordID, errsCopy)
	}
	if g.auditor != nil {
		g.auditor.RecordCheck(g.baseCtx, rec)
	}
}

// scheduleHideLocked arms the success display window. The timer only collapses
// the gate if no newer request superseded this result in the meantime.
func (g *Gate) scheduleHideLocked(mySeq uint64) {
	g.stopHideTimerLocked()
	g.hideTimer = g.afterFunc(g.hideAfter, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.seq == mySeq && g.state == StatePassed {
			g.state = StateHidden
			g.errors = nil
		}
	})
}

func (g *Gate) stopHideTimerLocked() {
	if g.hideTimer != nil {
		g.hideTimer.Stop()
		g.hideTimer = nil
	}
}
