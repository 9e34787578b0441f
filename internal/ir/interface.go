package ir

// InterfaceSignal is a scalar signal declared inside an Interface (bundle)
// type definition. Src and Dest optionally name the two roles of a
// source/sink interface; a flattened port's Direction is derived by
// comparing an InterfaceInstance's Role against these tags.
type InterfaceSignal struct {
	Name  string
	Width int
	Src   string // role name for which this signal is an output; empty if unset
	Dest  string // role name for which this signal is an input; empty if unset
}

// Clone returns a copy of sig that can be renamed or mutated without
// touching the Interface type definition it came from.
func (sig *InterfaceSignal) Clone() *InterfaceSignal {
	clone := *sig
	return &clone
}

// InterfaceField names a nested Interface contained within another
// Interface's definition.
type InterfaceField struct {
	Name string
	Of   *Interface
}

// Interface is a named bundle type: an ordered collection of scalar
// signals plus optionally-nested interface fields.
type Interface struct {
	id      ID
	Name    string
	Signals *OrderedMap[string, *InterfaceSignal]
	Fields  *OrderedMap[string, *InterfaceField]
}

// NewInterface constructs an empty, named Interface type.
func NewInterface(name string) *Interface {
	return &Interface{
		id:      NewID(),
		Name:    name,
		Signals: NewOrderedMap[string, *InterfaceSignal](),
		Fields:  NewOrderedMap[string, *InterfaceField](),
	}
}

// ID returns the Interface type's stable identity.
func (i *Interface) ID() ID { return i.id }

// AddSignal declares a scalar signal on the interface type.
func (i *Interface) AddSignal(sig *InterfaceSignal) {
	i.Signals.Set(sig.Name, sig)
}

// AddField declares a nested interface field.
func (i *Interface) AddField(name string, of *Interface) {
	i.Fields.Set(name, &InterfaceField{Name: name, Of: of})
}

// InterfaceInstance is a use of an Interface type inside a Module: a
// bundle-valued net, port, or internal wiring group that BundleFlattening
// eventually replaces with scalar Signals.
type InterfaceInstance struct {
	id       ID
	Name     string // local name within the enclosing Module
	Of       *Interface
	Port     bool
	Role     *string // which role (source/sink) this instance plays, if any
	PortRefs *OrderedMap[string, *PortRef]
}

// NewInterfaceInstance constructs an InterfaceInstance of interface type of.
func NewInterfaceInstance(name string, of *Interface, port bool, role *string) *InterfaceInstance {
	return &InterfaceInstance{
		id:       NewID(),
		Name:     name,
		Of:       of,
		Port:     port,
		Role:     role,
		PortRefs: NewOrderedMap[string, *PortRef](),
	}
}

// ID returns the InterfaceInstance's stable identity.
func (ii *InterfaceInstance) ID() ID { return ii.id }

// PortRefFor returns (creating if necessary) the PortRef handed out for
// field/signal name on this instance: before elaboration, referencing
// `bundle.s` yields a PortRef rather than a concrete Signal.
func (ii *InterfaceInstance) PortRefFor(name string) *PortRef {
	if pr, ok := ii.PortRefs.Get(name); ok {
		return pr
	}
	pr := &PortRef{id: NewID(), Owner: ii, PortName: name}
	ii.PortRefs.Set(name, pr)
	return pr
}

// Clone returns a shallow copy with a fresh identity and a fresh, empty
// PortRefs map; used when ImplicitBundleNets materializes a new
// InterfaceInstance from an existing instance's port definition. The
// clone is never a port and carries no role.
func (ii *InterfaceInstance) Clone() *InterfaceInstance {
	clone := &InterfaceInstance{
		id:       NewID(),
		Name:     ii.Name,
		Of:       ii.Of,
		Port:     false,
		Role:     nil,
		PortRefs: NewOrderedMap[string, *PortRef](),
	}
	return clone
}

func (ii *InterfaceInstance) conn() {}
