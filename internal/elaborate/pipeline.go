package elaborate

import (
	"fmt"

	"github.com/hdl21/elaborate/internal/errors"
	"github.com/hdl21/elaborate/internal/ir"
)

// Pass is one stage of the elaboration pipeline. Each pass owns its own
// per-invocation memoization state, dropped when the pass completes, so a
// Pass value must not be reused across elaborations of a different IR
// graph.
type Pass interface {
	Name() string
	Elaborate(top ir.InstanceTarget) (*ir.Module, error)
}

// DefaultPasses returns a fresh instance of the four-pass pipeline in its
// fixed order: GeneratorExpansion, ImplicitBundleNets,
// BundleFlattening, ImplicitScalarNets. Later passes assume invariants
// established by earlier ones, so callers that supply a subset or
// reorder them take on responsibility for those invariants themselves.
func DefaultPasses(ctx *ir.Context) []Pass {
	return []Pass{
		NewGeneratorExpansion(ctx),
		NewImplicitBundleNets(),
		NewBundleFlattening(),
		NewImplicitScalarNets(),
	}
}

// Elaborate runs passes in order over top, threading each pass's output
// Module into the next as its new top. top must be a *ir.Module or
// *ir.GeneratorCall. A nil passes slice runs DefaultPasses(ctx).
func Elaborate(top ir.InstanceTarget, ctx *ir.Context, passes []Pass) (*ir.Module, error) {
	switch top.(type) {
	case *ir.Module, *ir.GeneratorCall:
	default:
		return nil, errors.Wrap(errors.ELAB002, "shared",
			"elaboration top is not a Module or GeneratorCall", errors.Location{})
	}
	if passes == nil {
		passes = DefaultPasses(ctx)
	}

	var current ir.InstanceTarget = top
	var m *ir.Module
	for _, pass := range passes {
		out, err := pass.Elaborate(current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pass.Name(), err)
		}
		m = out
		current = out
	}
	if m == nil {
		return nil, errors.Wrap(errors.ELAB002, "shared", "no passes were run", errors.Location{})
	}
	return m, nil
}

// isElaborationRoot reports whether v is a value ElaborateAll hands
// directly to Elaborate, as opposed to a container it descends into.
func isElaborationRoot(v any) bool {
	switch v.(type) {
	case *ir.Module, *ir.GeneratorCall:
		return true
	default:
		return false
	}
}

// ElaborateAll flattens a possibly nested container of elaboration
// candidates and elaborates each one independently, using a fresh set of
// passes (and therefore fresh per-pass memoization) for every candidate.
// tops may be a single *ir.Module /
// *ir.GeneratorCall, a []any of further candidates, or a map[string]any
// whose values may themselves be candidates or containers. A nil passes
// func runs DefaultPasses(ctx) for each candidate.
func ElaborateAll(tops any, ctx *ir.Context, passes func() []Pass) ([]*ir.Module, error) {
	if passes == nil {
		passes = func() []Pass { return DefaultPasses(ctx) }
	}
	var out []*ir.Module
	err := collectElaborate(tops, ctx, passes, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func collectElaborate(v any, ctx *ir.Context, passes func() []Pass, out *[]*ir.Module) error {
	if isElaborationRoot(v) {
		m, err := Elaborate(v.(ir.InstanceTarget), ctx, passes())
		if err != nil {
			return err
		}
		*out = append(*out, m)
		return nil
	}

	switch c := v.(type) {
	case []any:
		for _, item := range c {
			if err := collectElaborate(item, ctx, passes, out); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		for _, item := range c {
			if err := collectElaborate(item, ctx, passes, out); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Wrap(errors.ELAB004, "shared",
			fmt.Sprintf("elaborate_all descended into a non-candidate, non-container leaf of type %T", v),
			errors.Location{})
	}
}
