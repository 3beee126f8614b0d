package model

import (
	"encoding/json"
	"time"
)

// BreachMetric is one row per monitored SLA rule as reported by the platform.
// A metric with Count == 0 is not breaching and never enters the active set.
type BreachMetric struct {
	Type            string    `json:"type"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Count           int       `json:"count"`
	Severity        Severity  `json:"severity"`
	DrillThroughURL string    `json:"drillThroughUrl"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// Breaching reports whether the metric belongs in the active-breach set.
func (b BreachMetric) Breaching() bool { return b.Count > 0 }

type rawBreach struct {
	Type            string          `json:"type"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Count           int             `json:"count"`
	Severity        string          `json:"severity"`
	DrillThroughURL string          `json:"drillThroughUrl"`
	LastUpdated     json.RawMessage `json:"lastUpdated"`
}

func (b *BreachMetric) UnmarshalJSON(data []byte) error {
	var r rawBreach
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	b.Type = r.Type
	b.Title = r.Title
	b.Description = r.Description
	b.Count = r.Count
	b.Severity = normalizeSeverity(r.Severity)
	b.DrillThroughURL = r.DrillThroughURL
	if ts := parseFlexibleTime(r.LastUpdated); ts != nil {
		b.LastUpdated = *ts
	}
	return nil
}

// MetricsSummary is the dashboard KPI scalar object. Upstream keys are not
// fixed, so only numeric values are kept.
type MetricsSummary struct {
	Values    map[string]float64 `json:"values"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

func (m *MetricsSummary) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Values = make(map[string]float64, len(raw))
	for k, v := range raw {
		if f, ok := v.(float64); ok {
			m.Values[k] = f
		}
	}
	return nil
}
