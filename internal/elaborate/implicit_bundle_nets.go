package elaborate

import (
	"fmt"

	"github.com/hdl21/elaborate/internal/errors"
	"github.com/hdl21/elaborate/internal/ir"
)

// ImplicitBundleNets is pass 2 of the pipeline: it discovers unnamed
// interface-valued nets implied by port-to-port PortRef connections and
// materializes them as explicit InterfaceInstances.
type ImplicitBundleNets struct {
	modules map[*ir.Module]*ir.Module
}

// NewImplicitBundleNets constructs an ImplicitBundleNets pass.
func NewImplicitBundleNets() *ImplicitBundleNets {
	return &ImplicitBundleNets{modules: make(map[*ir.Module]*ir.Module)}
}

// Name returns the pass name used in error Phase fields.
func (p *ImplicitBundleNets) Name() string { return "implicit_bundle_nets" }

// Elaborate runs ImplicitBundleNets over top, which must already be a
// Module (GeneratorExpansion having run first).
func (p *ImplicitBundleNets) Elaborate(top ir.InstanceTarget) (*ir.Module, error) {
	m, ok := top.(*ir.Module)
	if !ok {
		return nil, errors.Wrap(errors.ELAB002, "shared",
			"elaboration top is not a Module or GeneratorCall", errors.Location{})
	}
	return p.visitModule(m)
}

func (p *ImplicitBundleNets) visitModule(m *ir.Module) (*ir.Module, error) {
	if cached, ok := p.modules[m]; ok {
		return cached, nil
	}
	p.modules[m] = m

	// Step 1: depth-first elaborate child instances first.
	for _, inst := range m.Instances.Values() {
		if child, ok := inst.Target.(*ir.Module); ok {
			if _, err := p.visitModule(child); err != nil {
				return nil, err
			}
		}
	}

	if err := p.materializeBundleNets(m); err != nil {
		return nil, err
	}
	return m, nil
}

// interfacePortOf reports whether inst's target declares port as an
// interface-typed boundary member, returning the InterfaceInstance
// template declared for it. PrimitiveCall and ExternalModuleCall carry
// only scalar port definitions, so they never resolve one.
func interfacePortOf(inst *ir.Instance, port string) (*ir.InterfaceInstance, bool) {
	switch t := inst.Target.(type) {
	case *ir.Module:
		return t.Interfaces.Get(port)
	case *ir.PrimitiveCall, *ir.ExternalModuleCall:
		return nil, false
	default:
		return nil, false
	}
}

// materializeBundleNets builds the adjacency map over interface-typed
// PortRefs in m, computes connected components, and for each one either
// reuses the sole pre-existing InterfaceInstance it touches or clones and
// names a fresh one.
func (p *ImplicitBundleNets) materializeBundleNets(m *ir.Module) error {
	adj := newAdjacency()

	for _, inst := range m.Instances.Values() {
		for _, port := range inst.Conns.Keys() {
			conn, _ := inst.Conns.Get(port)
			pr, ok := conn.(*ir.PortRef)
			if !ok || pr.Inst == nil {
				continue
			}
			if _, ok := interfacePortOf(inst, port); !ok {
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

func (p *ImplicitBundleNets) resolveComponent(m *ir.Module, comp *orderedSet) error {
	items := comp.Items()

	distinct := make(map[*ir.InterfaceInstance][]portKey)
	for _, pk := range items {
		inst, ok := m.Instances.Get(pk.Inst)
		if !ok {
			continue
		}
		conn, ok := inst.Conns.Get(pk.Port)
		if !ok {
			continue
		}
		if ii, ok := conn.(*ir.InterfaceInstance); ok {
			distinct[ii] = append(distinct[ii], pk)
		}
	}

	if len(distinct) > 1 {
		var all []portKey
		for _, keys := range distinct {
			all = append(all, keys...)
		}
		return errors.Wrap(errors.ELAB201, p.Name(),
			fmt.Sprintf("shorted interface instances across %v", all), errors.Location{Module: m.Name})
	}

	var target *ir.InterfaceInstance
	for ii := range distinct {
		target = ii
	}
	if target == nil {
		last := items[len(items)-1]
		lastInst, ok := m.Instances.Get(last.Inst)
		if !ok {
			return errors.Wrap(errors.ELAB202, p.Name(),
				fmt.Sprintf("undefined instance %q in component", last.Inst), errors.Location{Module: m.Name})
		}
		template, ok := interfacePortOf(lastInst, last.Port)
		if !ok {
			return errors.Wrap(errors.ELAB202, p.Name(),
				fmt.Sprintf("undefined interface port reference %s.%s", last.Inst, last.Port),
				errors.Location{Module: m.Name, Instance: last.Inst, Port: last.Port})
		}
		clone := template.Clone()
		segments := make([]string, 0, len(items))
		for _, pk := range items {
			segments = append(segments, pk.Inst+"_"+pk.Port)
		}
		name, err := flatname(segments, m.Namespace, maxNameLen)
		if err != nil {
			return err
		}
		clone.Name = name
		if err := m.AddInterface(clone); err != nil {
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
