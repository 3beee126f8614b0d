package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// AlertKind classifies an alert for display and urgency ranking.
type AlertKind string

const (
	KindInfo    AlertKind = "info"
	KindWarning AlertKind = "warning"
	KindError   AlertKind = "error"
	KindSuccess AlertKind = "success"
)

// Severity scopes an alert or breach. The zero value means "unscoped".
type Severity string

const (
	SeverityNone     Severity = ""
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities for styling decisions: critical > high > medium > low > unknown.
// Display order is never derived from Rank; upstream order is preserved.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// BadgeVariant resolves the presentation variant for a severity. Unknown values
// fall back to the neutral variant instead of failing.
func (s Severity) BadgeVariant() string {
	switch s {
	case SeverityCritical:
		return "destructive"
	case SeverityHigh:
		return "warning"
	case SeverityMedium:
		return "secondary"
	case SeverityLow:
		return "outline"
	default:
		return "default"
	}
}

// BadgeVariant resolves the presentation variant for an alert kind.
func (k AlertKind) BadgeVariant() string {
	switch k {
	case KindError:
		return "destructive"
	case KindWarning:
		return "warning"
	case KindSuccess:
		return "success"
	case KindInfo:
		return "default"
	default:
		return "default"
	}
}

// AlertRecord is the canonical shape every alert source normalizes to.
// ID is unique within a single fetch batch only; a later poll may reuse an ID
// with different content and the later batch wins wholesale.
type AlertRecord struct {
	ID        string     `json:"id"`
	Kind      AlertKind  `json:"kind"`
	Category  string     `json:"category"`
	Severity  Severity   `json:"severity,omitempty"`
	Message   string     `json:"message"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	Page      string     `json:"page,omitempty"`
}

// Critical reports whether the record must raise a critical toast.
func (a AlertRecord) Critical() bool {
	return a.Severity == SeverityCritical || a.Kind == KindError
}

// rawAlert tolerates the upstream feed's heterogeneous shapes: numeric or
// string ids, kind under "kind" or "type", createdAt as RFC3339 or unix seconds.
type rawAlert struct {
	ID        json.RawMessage `json:"id"`
	Kind      string          `json:"kind"`
	Type      string          `json:"type"`
	Category  string          `json:"category"`
	Severity  string          `json:"severity"`
	Message   string          `json:"message"`
	CreatedAt json.RawMessage `json:"createdAt"`
	Page      string          `json:"page"`
}

// UnmarshalJSON normalizes an upstream alert into the canonical record.
// Message newlines are preserved as-is.
func (a *AlertRecord) UnmarshalJSON(data []byte) error {
	var r rawAlert
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	a.ID = flexibleString(r.ID)
	kind := r.Kind
	if kind == "" {
		kind = r.Type
	}
	a.Kind = normalizeKind(kind)
	a.Category = strings.TrimSpace(r.Category)
	a.Severity = normalizeSeverity(r.Severity)
	a.Message = r.Message
	a.CreatedAt = parseFlexibleTime(r.CreatedAt)
	a.Page = strings.TrimSpace(r.Page)
	return nil
}

func normalizeKind(s string) AlertKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "information":
		return KindInfo
	case "warning", "warn":
		return KindWarning
	case "error", "err", "failure":
		return KindError
	case "success", "ok":
		return KindSuccess
	default:
		return KindInfo
	}
}

func normalizeSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow
	case "medium":
		return SeverityMedium
	case "high":
		return SeverityHigh
	case "critical":
		return SeverityCritical
	default:
		return SeverityNone
	}
}

// parseFlexibleTime accepts RFC3339 strings, unix seconds as number or string,
// or nothing at all. Timestamps are display-only, so failures map to nil.
func parseFlexibleTime(raw json.RawMessage) *time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return &ts
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			ts := time.Unix(int64(f), 0).UTC()
			return &ts
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		ts := time.Unix(int64(f), 0).UTC()
		return &ts
	}
	return nil
}

func flexibleString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatInt(int64(f), 10)
	}
	return ""
}
