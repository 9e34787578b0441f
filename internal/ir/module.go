package ir

import "fmt"

// Module is the central IR type: a named collection of ports, internal
// signals, bundle (interface) instances, and sub-instances, wired together
// by each Instance's Conns map. A pass processes a Module once; a Module
// already in that pass's memoization set is not processed again. Passes that need to change
// a Module's members do so via the Add* methods below, which keep
// Namespace consistent.
type Module struct {
	id   ID
	Name string

	Ports      *OrderedMap[string, *Signal]
	Signals    *OrderedMap[string, *Signal]
	Interfaces *OrderedMap[string, *InterfaceInstance]
	Instances  *OrderedMap[string, *Instance]

	// Namespace is the set of every member name ever assigned in this
	// Module (ports, signals, interfaces, instances share one namespace),
	// used for collision avoidance when mangled names are minted.
	Namespace map[string]bool
}

// NewModule constructs an empty Module named name.
func NewModule(name string) *Module {
	return &Module{
		id:         NewID(),
		Name:       name,
		Ports:      NewOrderedMap[string, *Signal](),
		Signals:    NewOrderedMap[string, *Signal](),
		Interfaces: NewOrderedMap[string, *InterfaceInstance](),
		Instances:  NewOrderedMap[string, *Instance](),
		Namespace:  make(map[string]bool),
	}
}

// ID returns the Module's stable identity.
func (m *Module) ID() ID { return m.id }

func (m *Module) instanceTarget() {}

// reserve claims name in the Module's shared namespace, returning an error
// if it is already taken. Member names are unique across all member
// collections, not just within one.
func (m *Module) reserve(name string) error {
	if m.Namespace[name] {
		return fmt.Errorf("module %s: name %q already in use", m.Name, name)
	}
	m.Namespace[name] = true
	return nil
}

// AddPort declares sig as a boundary signal, setting its Visibility to PORT.
func (m *Module) AddPort(sig *Signal) error {
	if err := m.reserve(sig.Name); err != nil {
		return err
	}
	sig.Vis = PORT
	m.Ports.Set(sig.Name, sig)
	return nil
}

// AddSignal declares sig as an internal signal.
func (m *Module) AddSignal(sig *Signal) error {
	if err := m.reserve(sig.Name); err != nil {
		return err
	}
	sig.Vis = INTERNAL
	m.Signals.Set(sig.Name, sig)
	return nil
}

// AddInterface declares ii as a bundle instance (port or internal,
// depending on ii.Port).
func (m *Module) AddInterface(ii *InterfaceInstance) error {
	if err := m.reserve(ii.Name); err != nil {
		return err
	}
	m.Interfaces.Set(ii.Name, ii)
	return nil
}

// AddInstance declares inst as a sub-instance of this Module.
func (m *Module) AddInstance(inst *Instance) error {
	if err := m.reserve(inst.Name); err != nil {
		return err
	}
	m.Instances.Set(inst.Name, inst)
	return nil
}

// RemoveInterface drops a now-flattened bundle instance from both the
// Interfaces collection and the namespace. The freed name is not reused:
// flattening always mints fresh mangled names for the replacement signals.
func (m *Module) RemoveInterface(name string) {
	m.Interfaces.Delete(name)
	delete(m.Namespace, name)
}

// AllSignals returns every scalar Signal directly owned by this Module,
// ports first, then internal signals, in declaration order.
func (m *Module) AllSignals() []*Signal {
	out := make([]*Signal, 0, m.Ports.Len()+m.Signals.Len())
	out = append(out, m.Ports.Values()...)
	out = append(out, m.Signals.Values()...)
	return out
}
