package gate

// FallbackTitle is used for transition types the table does not know.
const FallbackTitle = "Validation Check"

// Titles maps workflow transition types to human-readable banner titles.
type Titles struct {
	byType map[string]string
}

// DefaultTitles covers the built-in Printyx workflow transitions.
func DefaultTitles() *Titles {
	return &Titles{byType: map[string]string{
		"quote-to-proposal":    "Quote Ready for Proposal",
		"proposal-to-contract": "Proposal Ready for Contract",
		"po-to-warehouse":      "Purchase Order Ready for Warehouse",
		"service-completion":   "Service Ticket Completion Check",
	}}
}

// Merge overlays overrides onto the table, adding or replacing entries.
func (t *Titles) Merge(overrides map[string]string) {
	for k, v := range overrides {
		if k == "" || v == "" {
			continue
		}
		t.byType[k] = v
	}
}

// For resolves a title; unknown transition types fall back to a generic one.
func (t *Titles) For(transitionType string) string {
	if t == nil {
		return FallbackTitle
	}
	if title, ok := t.byType[transitionType]; ok {
		return title
	}
	return FallbackTitle
}
