package errors

import "encoding/json"

// SafeEncodeError encodes any error as deterministic JSON, never panics.
// If err already carries a *Report (via AsReport), that Report is encoded
// directly; otherwise a generic Report is synthesized so callers always get
// a schema-conformant payload regardless of where the error originated.
func SafeEncodeError(err error, phase string) []byte {
	if err == nil {
		return nil
	}

	rep, ok := AsReport(err)
	if !ok {
		rep = &Report{
			Schema:  schemaV1,
			Code:    "ELAB000",
			Phase:   phase,
			Message: err.Error(),
			Data:    map[string]any{},
		}
	}

	data, encErr := json.MarshalIndent(rep, "", "  ")
	if encErr != nil {
		fallback := &Report{
			Schema:  schemaV1,
			Code:    "ELAB000",
			Phase:   phase,
			Message: "encoding failed",
			Data:    map[string]any{"original_error": encErr.Error()},
		}
		data, _ = json.MarshalIndent(fallback, "", "  ")
	}
	return data
}
