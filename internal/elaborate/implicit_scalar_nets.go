package elaborate

import (
	"fmt"

	"github.com/hdl21/elaborate/internal/errors"
	"github.com/hdl21/elaborate/internal/ir"
)

// ImplicitScalarNets is pass 4 of the pipeline. It repeats the same
// connected-component pattern as ImplicitBundleNets but for scalar Signal
// ports left unresolved after BundleFlattening.
type ImplicitScalarNets struct {
	modules map[*ir.Module]*ir.Module
}

// NewImplicitScalarNets constructs an ImplicitScalarNets pass.
func NewImplicitScalarNets() *ImplicitScalarNets {
	return &ImplicitScalarNets{modules: make(map[*ir.Module]*ir.Module)}
}

// Name returns the pass name used in error Phase fields.
func (p *ImplicitScalarNets) Name() string { return "implicit_scalar_nets" }

// Elaborate runs ImplicitScalarNets over top, which must have already
// gone through BundleFlattening. A Module that still contains
// InterfaceInstances is reported as ELAB302.
func (p *ImplicitScalarNets) Elaborate(top ir.InstanceTarget) (*ir.Module, error) {
	m, ok := top.(*ir.Module)
	if !ok {
		return nil, errors.Wrap(errors.ELAB002, "shared",
			"elaboration top is not a Module or GeneratorCall", errors.Location{})
	}
	return p.visitModule(m)
}

// scalarPortOf reports whether inst's target declares port as a scalar
// boundary signal, returning the Signal definition used to seed
// implicit-net clones. All three target variants carrying port
// definitions are checked: PrimitiveCall and ExternalModuleCall are leaf
// instance targets whose Ports map exists precisely to seed clones like
// this one.
func scalarPortOf(inst *ir.Instance, port string) (*ir.Signal, bool) {
	switch t := inst.Target.(type) {
	case *ir.Module:
		return t.Ports.Get(port)
	case *ir.PrimitiveCall:
		return t.Ports.Get(port)
	case *ir.ExternalModuleCall:
		return t.Ports.Get(port)
	default:
		return nil, false
	}
}

func (p *ImplicitScalarNets) visitModule(m *ir.Module) (*ir.Module, error) {
	if cached, ok := p.modules[m]; ok {
		return cached, nil
	}
	p.modules[m] = m

	if m.Interfaces.Len() > 0 {
		return nil, errors.Wrap(errors.ELAB302, "bundle_flattening",
			"module still contains InterfaceInstances entering ImplicitScalarNets",
			errors.Location{Module: m.Name})
	}

	for _, inst := range m.Instances.Values() {
		if child, ok := inst.Target.(*ir.Module); ok {
			if _, err := p.visitModule(child); err != nil {
				return nil, err
			}
		}
	}

	if err := p.materializeScalarNets(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *ImplicitScalarNets) materializeScalarNets(m *ir.Module) error {
	adj := newAdjacency()

	for _, inst := range m.Instances.Values() {
		for _, port := range inst.Conns.Keys() {
			conn, _ := inst.Conns.Get(port)
			pr, ok := conn.(*ir.PortRef)
			if !ok || pr.Inst == nil {
				continue
			}
			if _, ok := scalarPortOf(inst, port); !ok {
				continue
			}
			adj.addEdge(portKey{Inst: inst.Name, Port: port}, portKey{Inst: pr.Inst.Name, Port: pr.PortName})
		}
	}

	for _, comp := range adj.components() {
		if err := p.resolveComponent(m, comp); err != nil {
			return err
		}
	}
	return nil
}

func (p *ImplicitScalarNets) resolveComponent(m *ir.Module, comp *orderedSet) error {
	items := comp.Items()

	distinct := make(map[*ir.Signal][]portKey)
	for _, pk := range items {
		inst, ok := m.Instances.Get(pk.Inst)
		if !ok {
			continue
		}
		conn, ok := inst.Conns.Get(pk.Port)
		if !ok {
			continue
		}
		if sig, ok := conn.(*ir.Signal); ok {
			distinct[sig] = append(distinct[sig], pk)
		}
	}

	if len(distinct) > 1 {
		var all []portKey
		for _, keys := range distinct {
			all = append(all, keys...)
		}
		return errors.Wrap(errors.ELAB401, p.Name(),
			fmt.Sprintf("shorted scalar signals across %v", all), errors.Location{Module: m.Name})
	}

	var target *ir.Signal
	for sig := range distinct {
		target = sig
	}
	if target == nil {
		last := items[len(items)-1]
		lastInst, ok := m.Instances.Get(last.Inst)
		if !ok {
			return errors.Wrap(errors.ELAB402, p.Name(),
				fmt.Sprintf("undefined instance %q in component", last.Inst), errors.Location{Module: m.Name})
		}
		template, ok := scalarPortOf(lastInst, last.Port)
		if !ok {
			return errors.Wrap(errors.ELAB402, p.Name(),
				fmt.Sprintf("undefined scalar port reference %s.%s", last.Inst, last.Port),
				errors.Location{Module: m.Name, Instance: last.Inst, Port: last.Port})
		}
		clone := template.Clone()
		clone.Vis = ir.INTERNAL
		clone.Direction = ir.NONE

		segments := make([]string, 0, len(items))
		for _, pk := range items {
			segments = append(segments, pk.Inst+"_"+pk.Port)
		}
		name, err := flatname(segments, m.Namespace, maxNameLen)
		if err != nil {
			return err
		}
		clone.Name = name
		if err := m.AddSignal(clone); err != nil {
			return err
		}
		target = clone
	}

	for _, pk := range items {
		inst, ok := m.Instances.Get(pk.Inst)
		if !ok {
			continue
		}
		inst.Connect(pk.Port, target)
	}
	return nil
}
