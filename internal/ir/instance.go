package ir

// PortRefOwner is implemented by anything a PortRef can navigate through:
// an Instance (`inst.port`) or an InterfaceInstance (`bundle.signal`,
// handed out before the bundle is flattened).
type PortRefOwner interface {
	portRefOwner()
}

// PortRef is a symbolic `owner.port` reference used as a connection value
// before the referent is known to exist as a concrete Signal or
// InterfaceInstance. It is a weak navigation token, not an owning edge:
// it never keeps its Owner alive on its own account, and the
// elaborator treats it purely as something to resolve and discard.
type PortRef struct {
	id       ID
	Inst     *Instance // non-nil when Owner is an Instance; nil for bundle-field refs
	Owner    PortRefOwner
	PortName string
}

// ID returns the PortRef's stable identity.
func (pr *PortRef) ID() ID { return pr.id }

func (pr *PortRef) conn() {}

// NewPortRef mints a PortRef navigating to PortName on inst.
func NewPortRef(inst *Instance, portName string) *PortRef {
	return &PortRef{id: NewID(), Inst: inst, Owner: inst, PortName: portName}
}

// BundleOwner returns the InterfaceInstance this PortRef was minted
// against via InterfaceInstance.PortRefFor, or nil if it was minted
// against a plain Instance. Used by BundleFlattening to find which
// bundle's flattened signals a given PortRef resolves into.
func (pr *PortRef) BundleOwner() *InterfaceInstance {
	ii, _ := pr.Owner.(*InterfaceInstance)
	return ii
}

// Conn is the set of value types that may appear in an Instance's
// connection map. Before elaboration completes, a connection may be a
// Signal, an InterfaceInstance, or a PortRef; after elaboration, only
// Signal remains.
type Conn interface {
	conn()
}

// InstanceTarget is the closed set of things an Instance can be "of": a
// concrete Module, a primitive call, an external module call, or a pending
// generator call. This is the only place these four variants are
// enumerated outside the visitor dispatch in internal/elaborate.
type InstanceTarget interface {
	instanceTarget()
}

// Instance is a use of a Module (or primitive/external/generator) inside a
// Module.
type Instance struct {
	id         ID
	Name       string
	Target     InstanceTarget
	Conns      *OrderedMap[string, Conn]
	Resolved   *Module // set once Target resolves to a concrete Module (post GeneratorExpansion)
	Elaborated bool
}

// NewInstance constructs an Instance named name, of target.
func NewInstance(name string, target InstanceTarget) *Instance {
	return &Instance{
		id:     NewID(),
		Name:   name,
		Target: target,
		Conns:  NewOrderedMap[string, Conn](),
	}
}

// ID returns the Instance's stable identity.
func (inst *Instance) ID() ID { return inst.id }

func (inst *Instance) portRefOwner() {}

// Connect records a connection from one of this Instance's ports to conn.
func (inst *Instance) Connect(port string, conn Conn) {
	inst.Conns.Set(port, conn)
}

// PortRef mints a symbolic reference to one of this instance's ports, for
// use as another instance's connection value: the `x.p` in `y.q = x.p`.
func (inst *Instance) PortRef(port string) *PortRef {
	return NewPortRef(inst, port)
}

func (ii *InterfaceInstance) portRefOwner() {}

// Generator describes a parameterized Module-producing function.
type Generator struct {
	Name        string
	Func        func(arg any, ctx *Context) (any, error)
	UsesContext bool
}

// GeneratorCall is a pending invocation of a Generator with a specific
// argument. Distinct GeneratorCalls with equal (Generator, Arg) resolve to
// the same Module identity once elaborated.
type GeneratorCall struct {
	id     ID
	Gen    *Generator
	Arg    any
	Result *Module // populated once GeneratorExpansion resolves this call
}

// NewGeneratorCall constructs a pending call to gen with argument arg.
func NewGeneratorCall(gen *Generator, arg any) *GeneratorCall {
	return &GeneratorCall{id: NewID(), Gen: gen, Arg: arg}
}

// ID returns the GeneratorCall's stable identity.
func (gc *GeneratorCall) ID() ID { return gc.id }

func (gc *GeneratorCall) instanceTarget() {}

// PrimitiveCall is an opaque leaf reference to a process-design-kit
// primitive. The elaborator never expands it; it is returned unchanged by
// every pass.
type PrimitiveCall struct {
	id    ID
	Name  string
	Ports *OrderedMap[string, *Signal] // port definitions, used to seed implicit-net clones
}

// NewPrimitiveCall constructs a PrimitiveCall named name with an empty
// Ports map; callers add port definitions to Ports afterwards.
func NewPrimitiveCall(name string) *PrimitiveCall {
	return &PrimitiveCall{id: NewID(), Name: name, Ports: NewOrderedMap[string, *Signal]()}
}

// ID returns the PrimitiveCall's stable identity.
func (pc *PrimitiveCall) ID() ID { return pc.id }

func (pc *PrimitiveCall) instanceTarget() {}

// ExternalModuleCall is an opaque leaf reference to a module defined
// outside this IR (e.g. a foundry-supplied black box). Passed through
// unchanged by every pass, like PrimitiveCall.
type ExternalModuleCall struct {
	id    ID
	Name  string
	Ports *OrderedMap[string, *Signal]
}

// NewExternalModuleCall constructs an ExternalModuleCall named name.
func NewExternalModuleCall(name string) *ExternalModuleCall {
	return &ExternalModuleCall{id: NewID(), Name: name, Ports: NewOrderedMap[string, *Signal]()}
}

// ID returns the ExternalModuleCall's stable identity.
func (ec *ExternalModuleCall) ID() ID { return ec.id }

func (ec *ExternalModuleCall) instanceTarget() {}
