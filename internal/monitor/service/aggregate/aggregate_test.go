package aggregate

import (
	"testing"

	"github.com/printyx/printyx-monitor/internal/monitor/model"
)

func rec(id, category string, sev model.Severity, kind model.AlertKind, page string) model.AlertRecord {
	return model.AlertRecord{ID: id, Category: category, Severity: sev, Kind: kind, Page: page}
}

func TestAggregateNoFiltersKeepsFetchOrder(t *testing.T) {
	batch := []model.AlertRecord{
		rec("1", "system", model.SeverityCritical, model.KindError, ""),
		rec("2", "business", model.SeverityLow, model.KindInfo, ""),
		rec("3", "security", model.SeverityNone, model.KindWarning, ""),
	}
	out := Aggregate(batch, FilterSpec{})
	if len(out) != 3 {
		t.Fatalf("expected all records, got %d", len(out))
	}
	for i := range out {
		if out[i].ID != batch[i].ID {
			t.Fatalf("fetch order not preserved at %d: %s", i, out[i].ID)
		}
	}
}

func TestAggregateCategoryFilter(t *testing.T) {
	batch := []model.AlertRecord{
		rec("1", "system", model.SeverityNone, model.KindInfo, ""),
		rec("2", "business", model.SeverityNone, model.KindInfo, ""),
	}
	out := Aggregate(batch, FilterSpec{Categories: []string{"system"}})
	if len(out) != 1 || out[0].ID != "1" {
		t.Fatalf("category filter wrong: %#v", out)
	}
}

func TestAggregateSeverityFilterDropsUnscoped(t *testing.T) {
	batch := []model.AlertRecord{
		rec("1", "system", model.SeverityNone, model.KindError, ""),
		rec("2", "system", model.SeverityHigh, model.KindInfo, ""),
		rec("3", "system", model.SeverityLow, model.KindInfo, ""),
	}
	out := Aggregate(batch, FilterSpec{Severities: []model.Severity{model.SeverityHigh, model.SeverityCritical}})
	if len(out) != 1 || out[0].ID != "2" {
		t.Fatalf("severity filter wrong: %#v", out)
	}
	// a record with no severity is always excluded under an active severity
	// filter, regardless of kind
	for _, o := range out {
		if o.Severity == model.SeverityNone {
			t.Fatalf("unscoped record leaked through severity filter")
		}
	}
}

func TestAggregatePageScope(t *testing.T) {
	batch := []model.AlertRecord{
		rec("1", "system", model.SeverityNone, model.KindInfo, "dashboard"),
		rec("2", "system", model.SeverityNone, model.KindInfo, "billing"),
		rec("3", "system", model.SeverityNone, model.KindInfo, ""),
	}
	out := Aggregate(batch, FilterSpec{PageKey: "dashboard"})
	if len(out) != 1 || out[0].ID != "1" {
		t.Fatalf("page filter wrong: %#v", out)
	}
}

func TestAggregateLimitTruncatesInOrder(t *testing.T) {
	batch := []model.AlertRecord{
		rec("1", "a", model.SeverityLow, model.KindInfo, ""),
		rec("2", "a", model.SeverityCritical, model.KindError, ""),
		rec("3", "a", model.SeverityHigh, model.KindInfo, ""),
		rec("4", "a", model.SeverityMedium, model.KindInfo, ""),
	}
	out := Aggregate(batch, FilterSpec{Limit: DefaultInlineLimit})
	if len(out) != 3 {
		t.Fatalf("limit not applied: %d", len(out))
	}
	// truncation keeps the first records in fetch order, no urgency resort
	if out[0].ID != "1" || out[2].ID != "3" {
		t.Fatalf("limit truncation reordered records: %#v", out)
	}
}

func TestAggregateOutputIsSubset(t *testing.T) {
	batch := []model.AlertRecord{
		rec("1", "system", model.SeverityHigh, model.KindWarning, "dashboard"),
		rec("2", "billing", model.SeverityNone, model.KindInfo, ""),
		rec("3", "system", model.SeverityCritical, model.KindError, "dashboard"),
	}
	spec := FilterSpec{Categories: []string{"system"}, Severities: []model.Severity{model.SeverityCritical}, PageKey: "dashboard", Limit: 10}
	out := Aggregate(batch, spec)
	if len(out) != 1 || out[0].ID != "3" {
		t.Fatalf("combined predicates wrong: %#v", out)
	}
	if len(out) > spec.Limit {
		t.Fatalf("length exceeds limit")
	}
}

func TestAggregateEmptyMeansRenderNothing(t *testing.T) {
	out := Aggregate(nil, FilterSpec{Limit: 3})
	if out == nil || len(out) != 0 {
		t.Fatalf("empty batch should yield an empty, non-nil slice: %#v", out)
	}
}

func TestNeedsToast(t *testing.T) {
	if NeedsToast([]model.AlertRecord{rec("1", "a", model.SeverityLow, model.KindInfo, "")}) {
		t.Fatalf("benign batch should not toast")
	}
	if !NeedsToast([]model.AlertRecord{rec("1", "a", model.SeverityNone, model.KindError, "")}) {
		t.Fatalf("error-kind record must toast")
	}
	if !NeedsToast([]model.AlertRecord{rec("1", "a", model.SeverityCritical, model.KindInfo, "")}) {
		t.Fatalf("critical severity must toast")
	}
}

func TestBatchFingerprintStableAndContentSensitive(t *testing.T) {
	a := []model.AlertRecord{rec("1", "a", model.SeverityCritical, model.KindError, "")}
	b := []model.AlertRecord{rec("1", "a", model.SeverityCritical, model.KindError, "")}
	c := []model.AlertRecord{rec("2", "a", model.SeverityCritical, model.KindError, "")}
	if BatchFingerprint(a) != BatchFingerprint(b) {
		t.Fatalf("identical critical content must fingerprint equally")
	}
	if BatchFingerprint(a) == BatchFingerprint(c) {
		t.Fatalf("different critical content must fingerprint differently")
	}
	// benign records do not contribute to the fingerprint
	d := append([]model.AlertRecord{rec("9", "b", model.SeverityLow, model.KindInfo, "")}, a...)
	if BatchFingerprint(d) != BatchFingerprint(a) {
		t.Fatalf("benign records must not change the fingerprint")
	}
}

func TestStoreReplaceAndView(t *testing.T) {
	s := NewStore()
	seq1 := s.Replace([]model.AlertRecord{rec("1", "system", model.SeverityLow, model.KindInfo, "")})
	seq2 := s.Replace([]model.AlertRecord{rec("2", "system", model.SeverityLow, model.KindInfo, "")})
	if seq2 != seq1+1 {
		t.Fatalf("sequence must increase per batch")
	}
	// later poll replaces the prior batch wholesale, last-fetched wins
	batch, seq, _ := s.Latest()
	if seq != seq2 || len(batch) != 1 || batch[0].ID != "2" {
		t.Fatalf("latest batch wrong: %#v", batch)
	}
	view := s.View(FilterSpec{Categories: []string{"system"}})
	if len(view) != 1 || view[0].ID != "2" {
		t.Fatalf("view wrong: %#v", view)
	}
}

func TestClaimFingerprintOncePerNovelBatch(t *testing.T) {
	s := NewStore()
	if !s.claimFingerprint("fp1") {
		t.Fatalf("first claim must succeed")
	}
	if s.claimFingerprint("fp1") {
		t.Fatalf("unchanged batch content must not re-toast")
	}
	if !s.claimFingerprint("fp2") {
		t.Fatalf("novel batch content must toast again")
	}
}
