package errors

import "testing"

func TestErrorCodeTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		phase    string
		category string
	}{
		{"ELAB001", ELAB001, "shared", "naming"},
		{"ELAB002", ELAB002, "shared", "type"},
		{"ELAB101", ELAB101, "generator_expansion", "type"},
		{"ELAB201", ELAB201, "implicit_bundle_nets", "shorting"},
		{"ELAB302", ELAB302, "bundle_flattening", "invariant"},
		{"ELAB401", ELAB401, "implicit_scalar_nets", "shorting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, exists := GetErrorInfo(tt.code)
			if !exists {
				t.Fatalf("error code %s not found in registry", tt.code)
			}
			if info.Code != tt.code {
				t.Errorf("code mismatch: got %s, want %s", info.Code, tt.code)
			}
			if info.Phase != tt.phase {
				t.Errorf("phase mismatch for %s: got %s, want %s", tt.code, info.Phase, tt.phase)
			}
			if info.Category != tt.category {
				t.Errorf("category mismatch for %s: got %s, want %s", tt.code, info.Category, tt.category)
			}
		})
	}
}

func TestErrorTypeCheckers(t *testing.T) {
	if !IsShortingError(ELAB201) {
		t.Errorf("IsShortingError(%s) = false, want true", ELAB201)
	}
	if IsShortingError(ELAB001) {
		t.Errorf("IsShortingError(%s) = true, want false", ELAB001)
	}
	if !IsInvariantError(ELAB302) {
		t.Errorf("IsInvariantError(%s) = false, want true", ELAB302)
	}
}

func TestAllErrorCodesInRegistry(t *testing.T) {
	allCodes := []string{
		ELAB001, ELAB002, ELAB003, ELAB004, ELAB005, ELAB006,
		ELAB101, ELAB102,
		ELAB201, ELAB202,
		ELAB301, ELAB302,
		ELAB401, ELAB402,
	}

	for _, code := range allCodes {
		t.Run(code, func(t *testing.T) {
			if _, exists := GetErrorInfo(code); !exists {
				t.Errorf("error code %s is defined but not in registry", code)
			}
		})
	}

	if len(ErrorRegistry) < len(allCodes) {
		t.Errorf("registry has %d codes, expected at least %d", len(ErrorRegistry), len(allCodes))
	}
}

func TestErrorInfoConsistency(t *testing.T) {
	validPhases := map[string]bool{
		"shared": true, "generator_expansion": true, "implicit_bundle_nets": true,
		"bundle_flattening": true, "implicit_scalar_nets": true,
	}

	for code, info := range ErrorRegistry {
		if info.Code != code {
			t.Errorf("code mismatch in registry: key=%s, info.Code=%s", code, info.Code)
		}
		if len(code) != 7 {
			t.Errorf("invalid code format: %s", code)
		}
		if !validPhases[info.Phase] {
			t.Errorf("invalid phase for %s: %s", code, info.Phase)
		}
		if info.Description == "" {
			t.Errorf("empty description for %s", code)
		}
	}
}
