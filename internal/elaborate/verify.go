package elaborate

import (
	"fmt"

	"github.com/hdl21/elaborate/internal/errors"
	"github.com/hdl21/elaborate/internal/ir"
)

// verifier walks an already-elaborated Module hierarchy checking the
// post-elaboration invariants: no interface instances remain, connections
// resolve into the enclosing namespace, names are unique and bounded,
// internal signals are directionless, and every target port is connected.
// It is a small checker, holding only a visited-module set, with one method
// per concern: existence
// checking, not full consistency checking.
type verifier struct {
	visited map[*ir.Module]bool
}

// VerifyInvariants checks m (and every Module reachable from it) against
// the post-elaboration invariants. It is not part of DefaultPasses;
// callers invoke it explicitly to assert the pipeline's output is
// well-formed.
func VerifyInvariants(m *ir.Module) error {
	v := &verifier{visited: make(map[*ir.Module]bool)}
	return v.checkModule(m)
}

func (v *verifier) checkModule(m *ir.Module) error {
	if v.visited[m] {
		return nil
	}
	v.visited[m] = true

	if err := v.checkNoInterfaceInstances(m); err != nil {
		return err
	}
	if err := v.checkConnectionsResolved(m); err != nil {
		return err
	}
	if err := v.checkNameUniqueness(m); err != nil {
		return err
	}
	if err := v.checkPortVisibilityDirection(m); err != nil {
		return err
	}
	if err := v.checkPortCoverage(m); err != nil {
		return err
	}

	for _, inst := range m.Instances.Values() {
		if child, ok := inst.Target.(*ir.Module); ok {
			if err := v.checkModule(child); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkNoInterfaceInstances enforces invariant 1: no InterfaceInstance
// remains anywhere in the reachable hierarchy.
func (v *verifier) checkNoInterfaceInstances(m *ir.Module) error {
	if m.Interfaces.Len() > 0 {
		return errors.Wrap(errors.ELAB302, "bundle_flattening",
			fmt.Sprintf("module %q still contains %d interface instance(s)", m.Name, m.Interfaces.Len()),
			errors.Location{Module: m.Name})
	}
	return nil
}

// checkConnectionsResolved enforces invariant 2: every Instance
// connection is a Signal belonging to the enclosing Module's namespace.
func (v *verifier) checkConnectionsResolved(m *ir.Module) error {
	for _, inst := range m.Instances.Values() {
		for _, port := range inst.Conns.Keys() {
			conn, _ := inst.Conns.Get(port)
			sig, ok := conn.(*ir.Signal)
			if !ok {
				return errors.Wrap(errors.ELAB202, "shared",
					fmt.Sprintf("connection %s.%s is not a resolved Signal (got %T)", inst.Name, port, conn),
					errors.Location{Module: m.Name, Instance: inst.Name, Port: port})
			}
			if !m.Namespace[sig.Name] {
				return errors.Wrap(errors.ELAB202, "shared",
					fmt.Sprintf("signal %q connected at %s.%s is not in module %q's namespace",
						sig.Name, inst.Name, port, m.Name),
					errors.Location{Module: m.Name, Instance: inst.Name, Port: port})
			}
		}
	}
	return nil
}

// checkNameUniqueness enforces invariant 3: every Signal name is unique
// within its Module (guaranteed by Module.reserve at construction time,
// re-checked here defensively) and does not exceed maxNameLen.
func (v *verifier) checkNameUniqueness(m *ir.Module) error {
	seen := make(map[string]bool)
	for _, sig := range m.AllSignals() {
		if len(sig.Name) > maxNameLen {
			return errors.Wrap(errors.ELAB001, "shared",
				fmt.Sprintf("signal name %q exceeds %d characters", sig.Name, maxNameLen),
				errors.Location{Module: m.Name})
		}
		if seen[sig.Name] {
			return errors.Wrap(errors.ELAB001, "shared",
				fmt.Sprintf("duplicate signal name %q in module %q", sig.Name, m.Name),
				errors.Location{Module: m.Name})
		}
		seen[sig.Name] = true
	}
	return nil
}

// checkPortCoverage enforces connection existence: every port of an
// Instance's target Module appears as a key in the instance's
// connection map. Existence only; value consistency (width, direction) is
// a later consumer's concern.
func (v *verifier) checkPortCoverage(m *ir.Module) error {
	for _, inst := range m.Instances.Values() {
		target, ok := inst.Target.(*ir.Module)
		if !ok {
			continue
		}
		for _, port := range target.Ports.Keys() {
			if !inst.Conns.Has(port) {
				return errors.Wrap(errors.ELAB006, "shared",
					fmt.Sprintf("port %q of module %q is unconnected on instance %q", port, target.Name, inst.Name),
					errors.Location{Module: m.Name, Instance: inst.Name, Port: port})
			}
		}
	}
	return nil
}

// checkPortVisibilityDirection partially verifies invariant 6: every
// INTERNAL signal carries direction NONE. Full role-versus-direction
// correctness is established at the moment BundleFlattening assigns
// direction and is not re-derivable from the output alone without
// re-walking bundle provenance.
func (v *verifier) checkPortVisibilityDirection(m *ir.Module) error {
	for _, sig := range m.AllSignals() {
		if sig.Vis == ir.INTERNAL && sig.Direction != ir.NONE {
			return errors.Wrap(errors.ELAB302, "bundle_flattening",
				fmt.Sprintf("internal signal %q in module %q has non-NONE direction %s",
					sig.Name, m.Name, sig.Direction),
				errors.Location{Module: m.Name, Port: sig.Name})
		}
	}
	return nil
}
