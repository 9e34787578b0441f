// Package errors provides centralized, structured error reporting for the
// circuit elaborator. All error codes follow a consistent taxonomy so a
// downstream tool can classify failures without parsing message text.
package errors

// Error code constants organized by owning elaboration pass.
const (
	// ============================================================================
	// Shared / visitor-framework errors (ELAB0##)
	// ============================================================================

	// ELAB001 indicates flatname could not produce a unique name under maxlen
	ELAB001 = "ELAB001"

	// ELAB002 indicates an elaboration top-level value is not a Module or GeneratorCall
	ELAB002 = "ELAB002"

	// ELAB003 indicates an Instance target is an unrecognized variant
	ELAB003 = "ELAB003"

	// ELAB004 indicates elaborate_all descended into a non-candidate, non-container leaf
	ELAB004 = "ELAB004"

	// ELAB005 indicates a Module reached during elaboration has no name
	ELAB005 = "ELAB005"

	// ELAB006 indicates a port of an Instance's target Module has no entry in the connection map
	ELAB006 = "ELAB006"

	// ============================================================================
	// GeneratorExpansion errors (ELAB1##)
	// ============================================================================

	// ELAB101 indicates a generator function returned a non-Module value (after unwinding chains)
	ELAB101 = "ELAB101"

	// ELAB102 indicates an Instance has no target (its Target is nil)
	ELAB102 = "ELAB102"

	// ============================================================================
	// ImplicitBundleNets errors (ELAB2##)
	// ============================================================================

	// ELAB201 indicates a connected component of interface PortRefs shorts two distinct InterfaceInstances
	ELAB201 = "ELAB201"

	// ELAB202 indicates a PortRef names a port absent from its instance's resolved target
	ELAB202 = "ELAB202"

	// ============================================================================
	// BundleFlattening errors (ELAB3##)
	// ============================================================================

	// ELAB301 indicates BundleFlattening found a PortRef into a bundle field it could not resolve
	ELAB301 = "ELAB301"

	// ELAB302 indicates an internal invariant broke: ImplicitScalarNets saw a Module that still has InterfaceInstances
	ELAB302 = "ELAB302"

	// ============================================================================
	// ImplicitScalarNets errors (ELAB4##)
	// ============================================================================

	// ELAB401 indicates a connected component of scalar PortRefs shorts two distinct declared Signals
	ELAB401 = "ELAB401"

	// ELAB402 indicates a PortRef names a scalar port absent from its instance's resolved target
	ELAB402 = "ELAB402"
)

// ErrorInfo provides structured information about an error code.
type ErrorInfo struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// ErrorRegistry maps error codes to their information.
var ErrorRegistry = map[string]ErrorInfo{
	ELAB001: {ELAB001, "shared", "naming", "Name exhaustion"},
	ELAB002: {ELAB002, "shared", "type", "Invalid elaboration top"},
	ELAB003: {ELAB003, "shared", "type", "Unrecognized instance target"},
	ELAB004: {ELAB004, "shared", "type", "Invalid elaborate_all leaf"},
	ELAB005: {ELAB005, "shared", "structure", "Anonymous module"},
	ELAB006: {ELAB006, "shared", "structure", "Unconnected instance port"},

	ELAB101: {ELAB101, "generator_expansion", "type", "Generator returned non-Module"},
	ELAB102: {ELAB102, "generator_expansion", "structure", "Undefined instance target"},

	ELAB201: {ELAB201, "implicit_bundle_nets", "shorting", "Shorted interface instances"},
	ELAB202: {ELAB202, "implicit_bundle_nets", "reference", "Undefined interface port reference"},

	ELAB301: {ELAB301, "bundle_flattening", "reference", "Unresolved bundle port reference"},
	ELAB302: {ELAB302, "bundle_flattening", "invariant", "Interface instances remain"},

	ELAB401: {ELAB401, "implicit_scalar_nets", "shorting", "Shorted scalar signals"},
	ELAB402: {ELAB402, "implicit_scalar_nets", "reference", "Undefined scalar port reference"},
}

// GetErrorInfo returns information about an error code.
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, exists := ErrorRegistry[code]
	return info, exists
}

// IsShortingError reports whether code names a shorting condition.
func IsShortingError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Category == "shorting"
}

// IsInvariantError reports whether code names an internal invariant violation.
func IsInvariantError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Category == "invariant"
}
