package errors

import (
	"encoding/json"
	"errors"
)

// schemaV1 identifies the JSON shape produced by Report.ToJSON.
const schemaV1 = "circuitelab.error/v1"

// Location pinpoints the Module, Instance, and port a Report concerns.
// Any field may be empty when not applicable to the error.
type Location struct {
	Module   string `json:"module,omitempty"`
	Instance string `json:"instance,omitempty"`
	Port     string `json:"port,omitempty"`
}

// Report is the canonical structured error type for the elaborator.
// All error builders return *Report, which can be wrapped as a ReportError.
type Report struct {
	Schema  string         `json:"schema"`         // Always schemaV1
	Code    string         `json:"code"`           // Error code (ELAB101, ELAB201, etc.)
	Phase   string         `json:"phase"`          // Owning pass: "generator_expansion", "bundle_flattening", etc.
	Message string         `json:"message"`        // Human-readable message
	At      Location       `json:"at"`             // Offending module/instance/port
	Data    map[string]any `json:"data,omitempty"` // Additional structured data
}

// ReportError wraps a Report as an error so structured reports survive
// errors.As unwrapping through ordinary Go error handling.
type ReportError struct {
	Rep *Report
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown elaboration error"
	}
	msg := e.Rep.Code + ": " + e.Rep.Message
	if e.Rep.At.Module != "" {
		msg += " (module " + e.Rep.At.Module + ")"
	}
	return msg
}

// AsReport attempts to extract a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as an error. Call sites should
// `return errors.WrapReport(report)` to preserve structure.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON converts a Report to deterministic JSON: struct fields appear in
// declaration order and Data's map keys are sorted.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error

	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// New builds a Report for the given code/phase/message and attaches a
// Location. Unknown codes are still reported, never silently dropped.
func New(code, phase, message string, at Location) *Report {
	return &Report{
		Schema:  schemaV1,
		Code:    code,
		Phase:   phase,
		Message: message,
		At:      at,
		Data:    map[string]any{},
	}
}

// Wrap is a convenience combining New and WrapReport.
func Wrap(code, phase, message string, at Location) error {
	return WrapReport(New(code, phase, message, at))
}
