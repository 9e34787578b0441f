// Package elaborate implements the four-pass hierarchical transform that
// turns a constructed circuit IR into a normalized form: generator calls
// replaced by concrete modules, implicit nets materialized, and
// hierarchical interface instances flattened to scalar signals.
package elaborate

import (
	"fmt"

	"github.com/hdl21/elaborate/internal/errors"
	"github.com/hdl21/elaborate/internal/ir"
)

// moduleHandler is implemented by a pass that needs to do work when the
// visitor reaches a *ir.Module instance target.
type moduleHandler interface {
	visitModule(m *ir.Module) (*ir.Module, error)
}

// generatorHandler is implemented by a pass that needs to do work when the
// visitor reaches a *ir.GeneratorCall instance target.
type generatorHandler interface {
	visitGeneratorCall(gc *ir.GeneratorCall) (ir.InstanceTarget, error)
}

// elaborateTarget is the single dispatch point over ir.InstanceTarget's
// four variants. PrimitiveCall and ExternalModuleCall are
// passed through unchanged by every pass; *ir.Module and *ir.GeneratorCall
// are routed to the pass's handler methods when it implements them.
func elaborateTarget(pass any, target ir.InstanceTarget) (ir.InstanceTarget, error) {
	switch t := target.(type) {
	case *ir.Module:
		h, ok := pass.(moduleHandler)
		if !ok {
			return t, nil
		}
		out, err := h.visitModule(t)
		if err != nil {
			return nil, fmt.Errorf("elaborating module %q: %w", t.Name, err)
		}
		return out, nil

	case *ir.GeneratorCall:
		h, ok := pass.(generatorHandler)
		if !ok {
			return t, nil
		}
		out, err := h.visitGeneratorCall(t)
		if err != nil {
			return nil, fmt.Errorf("elaborating generator call %q: %w", t.Gen.Name, err)
		}
		return out, nil

	case *ir.PrimitiveCall:
		return t, nil

	case *ir.ExternalModuleCall:
		return t, nil

	default:
		return nil, errors.Wrap(errors.ELAB003, "shared",
			fmt.Sprintf("unrecognized instance target %T", target), errors.Location{})
	}
}
