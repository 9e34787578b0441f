package elaborate

import (
	"fmt"

	"github.com/hdl21/elaborate/internal/errors"
	"github.com/hdl21/elaborate/internal/ir"
)

// flatLeaf is one scalar signal produced by flattening an InterfaceInstance,
// keyed by Path: the underscore-joined chain of field names leading to it
// ("p" for a direct signal, "inner_s" for one reached through a nested
// field). Path is stable across instantiations of the same Interface type,
// so parent and child flattenings of the same bundle type can be matched
// leaf-for-leaf even though the rendered Signal names differ per module.
type flatLeaf struct {
	Path   string
	Signal *ir.Signal
	Src    string
	Dest   string
}

// FlatBundle is the result of flattening one InterfaceInstance: every
// scalar signal it expands to, plus an index by Path for resolving
// PortRefs and for matching a parent's leaves against a child module's.
type FlatBundle struct {
	InstName string
	SrcType  *ir.Interface
	Leaves   []*flatLeaf
	ByPath   map[string]*flatLeaf
}

// flattenInterfaceInstance recursively expands ii into scalar leaves.
// Nested fields are flattened by recursing on a synthetic
// InterfaceInstance of the field's Interface type, inheriting ii's Role
// so direction derivation still sees the correct source/sink side at
// every nesting level.
//
// Per-leaf names are left as plain underscore-joined paths here; the only
// place the collision-avoiding flatname() wrap is applied is the
// module-level rewrite in visitModule, against the real module namespace.
// Wrapping at every recursion level would double the underscores.
func flattenInterfaceInstance(ii *ir.InterfaceInstance) (*FlatBundle, error) {
	fb := &FlatBundle{InstName: ii.Name, SrcType: ii.Of, ByPath: make(map[string]*flatLeaf)}

	for _, isig := range ii.Of.Signals.Values() {
		sig := ir.NewSignal(isig.Name, isig.Width, ir.INTERNAL, ir.NONE)
		leaf := &flatLeaf{Path: isig.Name, Signal: sig, Src: isig.Src, Dest: isig.Dest}
		fb.Leaves = append(fb.Leaves, leaf)
		fb.ByPath[leaf.Path] = leaf
	}

	for _, field := range ii.Of.Fields.Values() {
		nestedInst := ir.NewInterfaceInstance(field.Name, field.Of, false, ii.Role)
		nested, err := flattenInterfaceInstance(nestedInst)
		if err != nil {
			return nil, err
		}
		for _, nleaf := range nested.Leaves {
			leaf := &flatLeaf{
				Path:   field.Name + "_" + nleaf.Path,
				Signal: nleaf.Signal,
				Src:    nleaf.Src,
				Dest:   nleaf.Dest,
			}
			fb.Leaves = append(fb.Leaves, leaf)
			fb.ByPath[leaf.Path] = leaf
		}
	}

	return fb, nil
}

// BundleFlattening is pass 3 of the pipeline: it rewrites every
// module so no InterfaceInstance remains, replacing each with its
// flattened scalar signals and rewiring all connections accordingly.
type BundleFlattening struct {
	modules map[*ir.Module]map[string]*FlatBundle
}

// NewBundleFlattening constructs a BundleFlattening pass.
func NewBundleFlattening() *BundleFlattening {
	return &BundleFlattening{modules: make(map[*ir.Module]map[string]*FlatBundle)}
}

// Name returns the pass name used in error Phase fields.
func (p *BundleFlattening) Name() string { return "bundle_flattening" }

// Elaborate runs BundleFlattening over top, which must already have all
// GeneratorCalls resolved.
func (p *BundleFlattening) Elaborate(top ir.InstanceTarget) (*ir.Module, error) {
	m, ok := top.(*ir.Module)
	if !ok {
		return nil, errors.Wrap(errors.ELAB002, "shared",
			"elaboration top is not a Module or GeneratorCall", errors.Location{})
	}
	if _, err := p.visitModule(m); err != nil {
		return nil, err
	}
	return m, nil
}

// visitModule elaborates children first, then flattens every
// InterfaceInstance directly declared on m, returning m's bundle-name to
// FlatBundle replacement table so a parent module can resolve its own
// instance rewrites. Memoized by module pointer identity.
func (p *BundleFlattening) visitModule(m *ir.Module) (map[string]*FlatBundle, error) {
	if cached, ok := p.modules[m]; ok {
		return cached, nil
	}

	childTables := make(map[*ir.Module]map[string]*FlatBundle)
	for _, inst := range m.Instances.Values() {
		if child, ok := inst.Target.(*ir.Module); ok {
			t, err := p.visitModule(child)
			if err != nil {
				return nil, err
			}
			childTables[child] = t
		}
	}

	table := make(map[string]*FlatBundle)
	bundles := m.Interfaces.Values() // snapshot: declaration order, stable across the mutation below

	for _, ii := range bundles {
		m.RemoveInterface(ii.Name)

		flat, err := flattenInterfaceInstance(ii)
		if err != nil {
			return nil, err
		}

		if err := p.addFlattenedSignals(m, ii, flat); err != nil {
			return nil, err
		}
		table[ii.Name] = flat

		if err := p.rewriteChildConnections(m, ii, flat, childTables); err != nil {
			return nil, err
		}
		if err := p.rewritePortRefConnections(m, ii, flat); err != nil {
			return nil, err
		}
	}

	p.modules[m] = table
	return table, nil
}

// addFlattenedSignals names and adds each leaf of flat as a Signal on m,
// deriving visibility and direction from ii's port/role.
func (p *BundleFlattening) addFlattenedSignals(m *ir.Module, ii *ir.InterfaceInstance, flat *FlatBundle) error {
	for _, leaf := range flat.Leaves {
		sig := leaf.Signal
		if ii.Port {
			sig.Vis = ir.PORT
			switch {
			case ii.Role != nil && leaf.Src != "" && *ii.Role == leaf.Src:
				sig.Direction = ir.OUT
			case ii.Role != nil && leaf.Dest != "" && *ii.Role == leaf.Dest:
				sig.Direction = ir.IN
			default:
				sig.Direction = ir.NONE
			}
		} else {
			sig.Vis = ir.INTERNAL
			sig.Direction = ir.NONE
		}

		name, err := flatname([]string{ii.Name, leaf.Path}, m.Namespace, maxNameLen)
		if err != nil {
			return err
		}
		sig.Name = name

		if ii.Port {
			if err := m.AddPort(sig); err != nil {
				return err
			}
		} else {
			if err := m.AddSignal(sig); err != nil {
				return err
			}
		}
	}
	return nil
}

// rewriteChildConnections replaces every Instance connection whose value
// is ii with one connection per leaf, wired to the matching flattened
// signal on both sides: ii's own flattened signal in m, and the child
// instance's corresponding flattened port signal, matched by Path through
// the child's own replacement table.
func (p *BundleFlattening) rewriteChildConnections(
	m *ir.Module, ii *ir.InterfaceInstance, flat *FlatBundle, childTables map[*ir.Module]map[string]*FlatBundle,
) error {
	for _, inst := range m.Instances.Values() {
		for _, port := range inst.Conns.Keys() {
			conn, _ := inst.Conns.Get(port)
			connII, ok := conn.(*ir.InterfaceInstance)
			if !ok || connII != ii {
				continue
			}

			childMod, ok := inst.Target.(*ir.Module)
			if !ok {
				continue
			}
			childTable := childTables[childMod]
			childFlat, ok := childTable[port]
			if !ok {
				return errors.Wrap(errors.ELAB301, p.Name(),
					fmt.Sprintf("no flattening record for %s.%s", inst.Name, port),
					errors.Location{Module: m.Name, Instance: inst.Name, Port: port})
			}

			inst.Conns.Delete(port)
			for _, leaf := range flat.Leaves {
				childLeaf, ok := childFlat.ByPath[leaf.Path]
				if !ok {
					continue // the child's bundle has no leaf at this path; no connection is made for it
				}
				inst.Connect(childLeaf.Signal.Name, leaf.Signal)
			}
		}
	}
	return nil
}

// rewritePortRefConnections replaces every connection whose value is a
// PortRef into ii with the flattened signal it names. PortRefs into a
// nested field of ii (Path not present at the top level) are not yet
// handled and fail with ELAB301.
func (p *BundleFlattening) rewritePortRefConnections(m *ir.Module, ii *ir.InterfaceInstance, flat *FlatBundle) error {
	for _, inst := range m.Instances.Values() {
		for _, port := range inst.Conns.Keys() {
			conn, _ := inst.Conns.Get(port)
			pr, ok := conn.(*ir.PortRef)
			if !ok || pr.BundleOwner() != ii {
				continue
			}
			leaf, ok := flat.ByPath[pr.PortName]
			if !ok {
				return errors.Wrap(errors.ELAB301, p.Name(),
					fmt.Sprintf("unresolved bundle port reference %s.%s", ii.Name, pr.PortName),
					errors.Location{Module: m.Name, Instance: inst.Name, Port: port})
			}
			inst.Connect(port, leaf.Signal)
		}
	}
	return nil
}
