package elaborate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hdl21/elaborate/internal/ir"
)

func TestImplicitBundleNetsMaterializesInterfaceInstance(t *testing.T) {
	bus := ir.NewInterface("Bus")
	bus.AddSignal(&ir.InterfaceSignal{Name: "s", Width: 1})

	X := ir.NewModule("X")
	require.NoError(t, X.AddInterface(ir.NewInterfaceInstance("p", bus, true, nil)))
	Y := ir.NewModule("Y")
	require.NoError(t, Y.AddInterface(ir.NewInterfaceInstance("q", bus, true, nil)))

	P := ir.NewModule("P")
	xInst := ir.NewInstance("x", X)
	yInst := ir.NewInstance("y", Y)
	require.NoError(t, P.AddInstance(xInst))
	require.NoError(t, P.AddInstance(yInst))

	xInst.Connect("p", yInst.PortRef("q"))
	yInst.Connect("q", xInst.PortRef("p"))

	pass := NewImplicitBundleNets()
	out, err := pass.Elaborate(P)
	require.NoError(t, err)

	ii, ok := out.Interfaces.Get("_x_p_y_q_")
	require.True(t, ok)
	require.Same(t, bus, ii.Of)
	require.False(t, ii.Port)
	require.Nil(t, ii.Role)

	xConn, _ := xInst.Conns.Get("p")
	yConn, _ := yInst.Conns.Get("q")
	require.Same(t, ii, xConn)
	require.Same(t, ii, yConn)
}

func TestImplicitBundleNetsDetectsShorting(t *testing.T) {
	bus := ir.NewInterface("Bus")
	bus.AddSignal(&ir.InterfaceSignal{Name: "s", Width: 1})

	m := ir.NewModule("P")
	xTarget := ir.NewModule("X")
	require.NoError(t, xTarget.AddInterface(ir.NewInterfaceInstance("p", bus, true, nil)))
	yTarget := ir.NewModule("Y")
	require.NoError(t, yTarget.AddInterface(ir.NewInterfaceInstance("q", bus, true, nil)))

	xInst := ir.NewInstance("x", xTarget)
	yInst := ir.NewInstance("y", yTarget)
	require.NoError(t, m.AddInstance(xInst))
	require.NoError(t, m.AddInstance(yInst))

	ii1 := ir.NewInterfaceInstance("b1", bus, false, nil)
	ii2 := ir.NewInterfaceInstance("b2", bus, false, nil)
	require.NoError(t, m.AddInterface(ii1))
	require.NoError(t, m.AddInterface(ii2))
	xInst.Connect("p", ii1)
	yInst.Connect("q", ii2)

	comp := newOrderedSet()
	comp.Add(portKey{Inst: "x", Port: "p"})
	comp.Add(portKey{Inst: "y", Port: "q"})

	pass := NewImplicitBundleNets()
	err := pass.resolveComponent(m, comp)
	require.Error(t, err)
}

func TestImplicitBundleNetsReusesSoleExistingInstance(t *testing.T) {
	bus := ir.NewInterface("Bus")
	bus.AddSignal(&ir.InterfaceSignal{Name: "s", Width: 1})

	m := ir.NewModule("P")
	xTarget := ir.NewModule("X")
	require.NoError(t, xTarget.AddInterface(ir.NewInterfaceInstance("p", bus, true, nil)))
	yTarget := ir.NewModule("Y")
	require.NoError(t, yTarget.AddInterface(ir.NewInterfaceInstance("q", bus, true, nil)))

	xInst := ir.NewInstance("x", xTarget)
	yInst := ir.NewInstance("y", yTarget)
	require.NoError(t, m.AddInstance(xInst))
	require.NoError(t, m.AddInstance(yInst))

	shared := ir.NewInterfaceInstance("shared", bus, false, nil)
	require.NoError(t, m.AddInterface(shared))
	xInst.Connect("p", shared)
	yInst.Connect("q", xInst.PortRef("p"))

	pass := NewImplicitBundleNets()
	out, err := pass.Elaborate(m)
	require.NoError(t, err)

	require.Equal(t, 1, out.Interfaces.Len())
	yConn, _ := yInst.Conns.Get("q")
	require.Same(t, shared, yConn)
}
