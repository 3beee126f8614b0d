package gate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printyx/printyx-monitor/internal/monitor/model"
)

type valResp struct {
	res *model.ValidationResult
	err error
}

type valReq struct {
	transitionType string
	recordID       string
	reply          chan valResp
}

// blockingValidator hands each request to the test, which decides when and how
// it resolves. This makes in-flight ordering fully controllable.
type blockingValidator struct {
	reqs chan *valReq
}

func newBlockingValidator() *blockingValidator {
	return &blockingValidator{reqs: make(chan *valReq, 8)}
}

func (v *blockingValidator) validate(ctx context.Context, transitionType, recordID string) (*model.ValidationResult, error) {
	r := &valReq{transitionType: transitionType, recordID: recordID, reply: make(chan valResp, 1)}
	v.reqs <- r
	resp := <-r.reply
	return resp.res, resp.err
}

func (v *blockingValidator) next(t *testing.T) *valReq {
	t.Helper()
	select {
	case r := <-v.reqs:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no validation request arrived")
		return nil
	}
}

func waitForState(t *testing.T, g *Gate, want State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return g.Snapshot().State == want
	}, 2*time.Second, 5*time.Millisecond, "gate never reached %s", want)
}

func TestGatePassedFlowAutoHides(t *testing.T) {
	v := newBlockingValidator()
	g := New(context.Background(), v.validate, DefaultHideAfter)

	var hideFn func()
	g.afterFunc = func(d time.Duration, f func()) *time.Timer {
		assert.Equal(t, DefaultHideAfter, d)
		hideFn = f
		return time.NewTimer(time.Hour)
	}

	var passedMu sync.Mutex
	var passed []string
	g.WithCallbacks(Callbacks{OnPassed: func(tt, id string) {
		passedMu.Lock()
		passed = append(passed, tt+"/"+id)
		passedMu.Unlock()
	}})

	g.SetSubject("quote-to-proposal", "Q-100")
	assert.Equal(t, StateChecking, g.Snapshot().State)

	req := v.next(t)
	req.reply <- valResp{res: &model.ValidationResult{Valid: true}}

	waitForState(t, g, StatePassed)
	require.NotNil(t, hideFn, "passed must schedule the auto-hide window")

	passedMu.Lock()
	assert.Equal(t, []string{"quote-to-proposal/Q-100"}, passed)
	passedMu.Unlock()

	// success is transient: the window elapses with no user action
	hideFn()
	assert.Equal(t, StateHidden, g.Snapshot().State)
}

func TestGateFailedFlowKeepsErrorsUntilDismiss(t *testing.T) {
	v := newBlockingValidator()
	g := New(context.Background(), v.validate, DefaultHideAfter)

	hideScheduled := false
	g.afterFunc = func(d time.Duration, f func()) *time.Timer {
		hideScheduled = true
		return time.NewTimer(time.Hour)
	}

	g.SetSubject("quote-to-proposal", "Q-100")
	req := v.next(t)
	req.reply <- valResp{res: &model.ValidationResult{
		Valid:  false,
		Errors: []model.ValidationError{{Field: "total", Message: "Total must be positive"}},
	}}

	waitForState(t, g, StateFailed)
	view := g.Snapshot()
	require.Len(t, view.Errors, 1)
	assert.Equal(t, "total", view.Errors[0].Field)
	assert.False(t, hideScheduled, "failed must not auto-hide")

	g.Dismiss()
	view = g.Snapshot()
	assert.True(t, view.Dismissed)
	assert.Equal(t, StateFailed, view.State, "dismiss collapses rendering, not the machine")
}

func TestGateTransportFailureSyntheticError(t *testing.T) {
	v := newBlockingValidator()
	g := New(context.Background(), v.validate, DefaultHideAfter)

	g.SetSubject("proposal-to-contract", "P-7")
	req := v.next(t)
	req.reply <- valResp{err: errors.New("connection refused")}

	waitForState(t, g, StateFailed)
	view := g.Snapshot()
	require.Len(t, view.Errors, 1)
	assert.Equal(t, "system", view.Errors[0].Field)
	assert.Equal(t, SystemErrorMessage, view.Errors[0].Message)
}

func TestGateStaleResponseGuard(t *testing.T) {
	v := newBlockingValidator()
	g := New(context.Background(), v.validate, DefaultHideAfter)
	g.afterFunc = func(d time.Duration, f func()) *time.Timer { return time.NewTimer(time.Hour) }

	g.SetSubject("quote-to-proposal", "A")
	reqA := v.next(t)

	// subject changes while A's request is still in flight
	g.SetSubject("quote-to-proposal", "B")
	reqB := v.next(t)

	reqB.reply <- valResp{res: &model.ValidationResult{Valid: true}}
	waitForState(t, g, StatePassed)

	// A's late failure must not overwrite B's newer result
	reqA.reply <- valResp{res: &model.ValidationResult{
		Valid:  false,
		Errors: []model.ValidationError{{Field: "x", Message: "stale"}},
	}}
	time.Sleep(50 * time.Millisecond)
	view := g.Snapshot()
	assert.Equal(t, StatePassed, view.State, "displayed state must reflect the latest subject")
	assert.Empty(t, view.Errors)
	assert.Equal(t, "B", view.RecordID)
}

func TestGateRecheckOnlyWhileFailed(t *testing.T) {
	v := newBlockingValidator()
	g := New(context.Background(), v.validate, DefaultHideAfter)
	g.afterFunc = func(d time.Duration, f func()) *time.Timer { return time.NewTimer(time.Hour) }

	require.ErrorIs(t, g.Recheck(), ErrNotFailed, "hidden gate cannot re-check")

	g.SetSubject("service-completion", "T-1")
	require.ErrorIs(t, g.Recheck(), ErrNotFailed, "checking gate cannot re-check")

	req := v.next(t)
	req.reply <- valResp{res: &model.ValidationResult{
		Valid:  false,
		Errors: []model.ValidationError{{Field: "parts", Message: "Parts not reconciled"}},
	}}
	waitForState(t, g, StateFailed)

	// first re-check clears errors and returns to checking
	require.NoError(t, g.Recheck())
	view := g.Snapshot()
	assert.Equal(t, StateChecking, view.State)
	assert.Empty(t, view.Errors, "re-check must reset previously displayed errors")

	// a second quick re-check is rejected; exactly one request remains live
	require.ErrorIs(t, g.Recheck(), ErrNotFailed)

	req2 := v.next(t)
	req2.reply <- valResp{res: &model.ValidationResult{Valid: true}}
	waitForState(t, g, StatePassed)
}

func TestGateEmptySubjectHides(t *testing.T) {
	v := newBlockingValidator()
	g := New(context.Background(), v.validate, DefaultHideAfter)

	g.SetSubject("quote-to-proposal", "Q-1")
	req := v.next(t)

	g.SetSubject("quote-to-proposal", "")
	assert.Equal(t, StateHidden, g.Snapshot().State)

	// the orphaned in-flight result is discarded
	req.reply <- valResp{res: &model.ValidationResult{Valid: true}}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateHidden, g.Snapshot().State)
}

func TestTitlesFallback(t *testing.T) {
	titles := DefaultTitles()
	assert.Equal(t, "Quote Ready for Proposal", titles.For("quote-to-proposal"))
	assert.Equal(t, FallbackTitle, titles.For("made-up-transition"))

	titles.Merge(map[string]string{"made-up-transition": "Custom Check", "": "ignored"})
	assert.Equal(t, "Custom Check", titles.For("made-up-transition"))
}

func TestManagerReusesGatePerTransition(t *testing.T) {
	v := newBlockingValidator()
	m := NewManager(context.Background(), v.validate, DefaultHideAfter)

	g1 := m.Ensure("quote-to-proposal", "Q-1")
	req := v.next(t)
	req.reply <- valResp{res: &model.ValidationResult{Valid: true}}

	g2 := m.Ensure("quote-to-proposal", "Q-1")
	assert.Same(t, g1, g2)

	if _, ok := m.Lookup("proposal-to-contract"); ok {
		t.Fatal("lookup must not create gates")
	}
}
