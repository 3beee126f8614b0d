package model

// ValidationError is one remediation item reported by the workflow validator.
type ValidationError struct {
	Field      string `json:"field"`
	Message    string `json:"message"`
	Action     string `json:"action,omitempty"`
	ActionLink string `json:"actionLink,omitempty"`
}

// ValidationResult is the outcome of one validation request. It is ephemeral:
// held only by the gate that requested it and replaced on the next check.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}
