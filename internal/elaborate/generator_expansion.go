package elaborate

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/hashstructure"

	"github.com/hdl21/elaborate/internal/errors"
	"github.com/hdl21/elaborate/internal/ir"
)

// genCacheKey buckets GeneratorCalls by generator identity and argument
// hash. Distinct *ir.Generator values are never equal (identity), so the
// generator pointer is part of the key; the hash narrows candidates
// within a generator before the exact reflect.DeepEqual check runs.
type genCacheKey struct {
	gen  *ir.Generator
	hash uint64
}

type genCacheEntry struct {
	arg    any
	result *ir.Module
}

// GeneratorExpansion is pass 1 of the pipeline: it invokes
// parameterized generator functions, memoizes results by (generator,
// argument) value equality, and replaces every GeneratorCall reachable
// from top with the concrete Module it resolves to.
type GeneratorExpansion struct {
	ctx *ir.Context

	modules map[*ir.Module]*ir.Module
	gens    map[genCacheKey][]genCacheEntry
}

// NewGeneratorExpansion constructs a GeneratorExpansion pass that threads
// ctx to generators declaring ir.Generator.UsesContext.
func NewGeneratorExpansion(ctx *ir.Context) *GeneratorExpansion {
	return &GeneratorExpansion{
		ctx:     ctx,
		modules: make(map[*ir.Module]*ir.Module),
		gens:    make(map[genCacheKey][]genCacheEntry),
	}
}

// Name returns the pass name used in error Phase fields and pass lists.
func (p *GeneratorExpansion) Name() string { return "generator_expansion" }

// Elaborate runs GeneratorExpansion over top, which must resolve
// (possibly through a chain of GeneratorCalls) to a Module.
func (p *GeneratorExpansion) Elaborate(top ir.InstanceTarget) (*ir.Module, error) {
	resolved, err := elaborateTarget(p, top)
	if err != nil {
		return nil, err
	}
	m, ok := resolved.(*ir.Module)
	if !ok {
		return nil, errors.Wrap(errors.ELAB002, "shared",
			"elaboration top is not a Module or GeneratorCall", errors.Location{})
	}
	return m, nil
}

// visitModule recurses depth-first into m's Instances, driving each
// Instance's Target through GeneratorExpansion. Memoized by
// module pointer identity so a Module shared by multiple Instances is
// processed once.
func (p *GeneratorExpansion) visitModule(m *ir.Module) (*ir.Module, error) {
	if cached, ok := p.modules[m]; ok {
		return cached, nil
	}
	if m.Name == "" {
		return nil, errors.Wrap(errors.ELAB005, p.Name(),
			"anonymous module cannot be elaborated (did you forget to name it?)",
			errors.Location{})
	}
	p.modules[m] = m

	for _, inst := range m.Instances.Values() {
		if inst.Target == nil {
			return nil, errors.Wrap(errors.ELAB102, p.Name(),
				fmt.Sprintf("instance %q has no target", inst.Name),
				errors.Location{Module: m.Name, Instance: inst.Name})
		}
		resolved, err := elaborateTarget(p, inst.Target)
		if err != nil {
			return nil, err
		}
		inst.Target = resolved
		if resolvedModule, ok := resolved.(*ir.Module); ok {
			inst.Resolved = resolvedModule
		}
		inst.Elaborated = true
	}
	return m, nil
}

// visitGeneratorCall resolves gc to a concrete Module, memoizing by
// (gc.Gen, gc.Arg) so equal arguments yield an identity-equal result.
func (p *GeneratorExpansion) visitGeneratorCall(gc *ir.GeneratorCall) (ir.InstanceTarget, error) {
	hash, err := hashstructure.Hash(gc.Arg, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ELAB101, p.Name(),
			"could not hash generator argument: "+err.Error(), errors.Location{})
	}
	key := genCacheKey{gen: gc.Gen, hash: hash}
	for _, entry := range p.gens[key] {
		if reflect.DeepEqual(entry.arg, gc.Arg) {
			gc.Result = entry.result
			return entry.result, nil
		}
	}

	mod, err := p.invoke(gc)
	if err != nil {
		return nil, err
	}

	processed, err := p.visitModule(mod)
	if err != nil {
		return nil, err
	}

	p.gens[key] = append(p.gens[key], genCacheEntry{arg: gc.Arg, result: processed})
	gc.Result = processed
	return processed, nil
}

// invoke calls gc.Gen.Func, unwinding any chain of returned
// GeneratorCalls, and names the resulting Module.
func (p *GeneratorExpansion) invoke(gc *ir.GeneratorCall) (*ir.Module, error) {
	var ctx *ir.Context
	if gc.Gen.UsesContext {
		ctx = p.ctx
	}

	result, err := gc.Gen.Func(gc.Arg, ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ELAB101, p.Name(),
			"generator "+gc.Gen.Name+" returned an error: "+err.Error(), errors.Location{})
	}

	mod, err := p.unwind(gc.Gen, result)
	if err != nil {
		return nil, err
	}

	if mod.Name == "" {
		mod.Name = gc.Gen.Name
	}
	suffix, err := uniqueName(gc.Arg)
	if err != nil {
		return nil, err
	}
	mod.Name = mod.Name + "(" + suffix + ")"
	return mod, nil
}

// unwind follows a chain of GeneratorCalls returned by a generator
// function until it bottoms out at a Module. Any other result type is a
// fatal type error. A GeneratorCall encountered mid-chain is routed
// through visitGeneratorCall rather than invoke directly, so it is
// checked against (and written into) the same (Gen, Arg) memoization
// table as any GeneratorCall reached independently elsewhere; every link
// of the chain shares one cache, not only the outermost call.
func (p *GeneratorExpansion) unwind(gen *ir.Generator, result any) (*ir.Module, error) {
	switch v := result.(type) {
	case *ir.Module:
		return v, nil
	case *ir.GeneratorCall:
		next, err := p.visitGeneratorCall(v)
		if err != nil {
			return nil, err
		}
		mod, ok := next.(*ir.Module)
		if !ok {
			return nil, errors.Wrap(errors.ELAB101, p.Name(),
				"generator "+gen.Name+" must ultimately return a Module", errors.Location{})
		}
		return mod, nil
	default:
		return nil, errors.Wrap(errors.ELAB101, p.Name(),
			"generator "+gen.Name+" must ultimately return a Module", errors.Location{})
	}
}
