package aggregate

import (
	"github.com/printyx/printyx-monitor/internal/monitor/model"
)

const (
	// DefaultInlineLimit bounds inline page alert lists.
	DefaultInlineLimit = 3
	// BellDisplayCap bounds the notification bell view.
	BellDisplayCap = 10
)

// FilterSpec declares which records from a batch are in scope for one surface.
type FilterSpec struct {
	// Categories keeps records whose category matches any entry; empty keeps all.
	Categories []string `yaml:"categories"`
	// Severities keeps records whose severity matches any entry. A record with
	// no severity is dropped whenever this filter is active.
	Severities []model.Severity `yaml:"severities"`
	// PageKey restricts records to one UI surface; empty keeps all.
	PageKey string `yaml:"page"`
	// Limit truncates the output in original fetch order. Zero means unlimited.
	Limit int `yaml:"limit"`
}

// Aggregate applies the filter spec to a fetched batch. Output preserves fetch
// order and is never resorted by urgency. An empty result means "render
// nothing"; the affirmative all-clear state belongs to the breach monitor.
func Aggregate(alerts []model.AlertRecord, spec FilterSpec) []model.AlertRecord {
	out := make([]model.AlertRecord, 0, len(alerts))
	for _, a := range alerts {
		if !matchCategory(a, spec.Categories) {
			continue
		}
		if !matchSeverity(a, spec.Severities) {
			continue
		}
		if spec.PageKey != "" && a.Page != spec.PageKey {
			continue
		}
		out = append(out, a)
		if spec.Limit > 0 && len(out) >= spec.Limit {
			break
		}
	}
	return out
}

func matchCategory(a model.AlertRecord, categories []string) bool {
	if len(categories) == 0 {
		return true
	}
	for _, c := range categories {
		if a.Category == c {
			return true
		}
	}
	return false
}

func matchSeverity(a model.AlertRecord, severities []model.Severity) bool {
	if len(severities) == 0 {
		return true
	}
	if a.Severity == model.SeverityNone {
		return false
	}
	for _, s := range severities {
		if a.Severity == s {
			return true
		}
	}
	return false
}
