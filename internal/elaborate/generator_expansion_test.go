package elaborate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hdl21/elaborate/internal/errors"
	"github.com/hdl21/elaborate/internal/ir"
)

func makeGenAB() *ir.Generator {
	return &ir.Generator{
		Name: "g",
		Func: func(arg any, ctx *ir.Context) (any, error) {
			mod := ir.NewModule("")
			_ = mod.AddPort(ir.NewSignal("a", 1, ir.INTERNAL, ir.NONE))
			_ = mod.AddPort(ir.NewSignal("b", 1, ir.INTERNAL, ir.NONE))
			return mod, nil
		},
	}
}

func TestGeneratorExpansionMemoizesByArgument(t *testing.T) {
	gen := makeGenAB()
	parent := ir.NewModule("P")

	call1 := ir.NewGeneratorCall(gen, 3)
	call2 := ir.NewGeneratorCall(gen, 3)
	call3 := ir.NewGeneratorCall(gen, 4)

	i1 := ir.NewInstance("i1", call1)
	i2 := ir.NewInstance("i2", call2)
	i3 := ir.NewInstance("i3", call3)
	require.NoError(t, parent.AddInstance(i1))
	require.NoError(t, parent.AddInstance(i2))
	require.NoError(t, parent.AddInstance(i3))

	pass := NewGeneratorExpansion(ir.NewContext())
	out, err := pass.Elaborate(parent)
	require.NoError(t, err)
	require.Same(t, parent, out)

	require.Same(t, i1.Resolved, i2.Resolved, "equal arguments must resolve to the same Module identity")
	require.NotSame(t, i1.Resolved, i3.Resolved)

	suffix3, err := uniqueName(3)
	require.NoError(t, err)
	suffix4, err := uniqueName(4)
	require.NoError(t, err)

	require.Equal(t, "g("+suffix3+")", i1.Resolved.Name)
	require.Equal(t, "g("+suffix4+")", i3.Resolved.Name)
}

func TestGeneratorExpansionUnwindsChain(t *testing.T) {
	leaf := &ir.Generator{
		Name: "leaf",
		Func: func(arg any, ctx *ir.Context) (any, error) {
			return ir.NewModule(""), nil
		},
	}
	chained := &ir.Generator{
		Name: "chained",
		Func: func(arg any, ctx *ir.Context) (any, error) {
			return ir.NewGeneratorCall(leaf, arg), nil
		},
	}

	parent := ir.NewModule("P")
	inst := ir.NewInstance("i", ir.NewGeneratorCall(chained, 1))
	require.NoError(t, parent.AddInstance(inst))

	pass := NewGeneratorExpansion(ir.NewContext())
	_, err := pass.Elaborate(parent)
	require.NoError(t, err)
	require.NotNil(t, inst.Resolved)
}

func TestGeneratorExpansionMemoizesMidChainCall(t *testing.T) {
	leaf := &ir.Generator{
		Name: "leaf",
		Func: func(arg any, ctx *ir.Context) (any, error) {
			return ir.NewModule(""), nil
		},
	}
	chained := &ir.Generator{
		Name: "chained",
		Func: func(arg any, ctx *ir.Context) (any, error) {
			return ir.NewGeneratorCall(leaf, arg), nil
		},
	}

	parent := ir.NewModule("P")
	viaChain := ir.NewInstance("viaChain", ir.NewGeneratorCall(chained, 1))
	viaLeaf := ir.NewInstance("viaLeaf", ir.NewGeneratorCall(leaf, 1))
	require.NoError(t, parent.AddInstance(viaChain))
	require.NoError(t, parent.AddInstance(viaLeaf))

	pass := NewGeneratorExpansion(ir.NewContext())
	_, err := pass.Elaborate(parent)
	require.NoError(t, err)

	require.Same(t, viaChain.Resolved, viaLeaf.Resolved,
		"a GeneratorCall reached mid-chain must memoize under its own (Gen, Arg) key, "+
			"so an independent direct call with the same (Gen, Arg) resolves to the same Module")
}

func TestGeneratorExpansionRejectsAnonymousModule(t *testing.T) {
	parent := ir.NewModule("")

	pass := NewGeneratorExpansion(ir.NewContext())
	_, err := pass.Elaborate(parent)
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	require.Equal(t, errors.ELAB005, rep.Code)
}

func TestGeneratorExpansionRejectsNilInstanceTarget(t *testing.T) {
	parent := ir.NewModule("P")
	require.NoError(t, parent.AddInstance(ir.NewInstance("i", nil)))

	pass := NewGeneratorExpansion(ir.NewContext())
	_, err := pass.Elaborate(parent)
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	require.Equal(t, errors.ELAB102, rep.Code)
}

func TestGeneratorExpansionRejectsNonModuleReturn(t *testing.T) {
	bad := &ir.Generator{
		Name: "bad",
		Func: func(arg any, ctx *ir.Context) (any, error) {
			return 42, nil
		},
	}
	parent := ir.NewModule("P")
	inst := ir.NewInstance("i", ir.NewGeneratorCall(bad, 1))
	require.NoError(t, parent.AddInstance(inst))

	pass := NewGeneratorExpansion(ir.NewContext())
	_, err := pass.Elaborate(parent)
	require.Error(t, err)
}

func TestGeneratorExpansionPassesContextWhenDeclared(t *testing.T) {
	var seen *ir.Context
	gen := &ir.Generator{
		Name:        "ctxgen",
		UsesContext: true,
		Func: func(arg any, ctx *ir.Context) (any, error) {
			seen = ctx
			return ir.NewModule(""), nil
		},
	}
	parent := ir.NewModule("P")
	inst := ir.NewInstance("i", ir.NewGeneratorCall(gen, 1))
	require.NoError(t, parent.AddInstance(inst))

	ctx := ir.NewContext()
	pass := NewGeneratorExpansion(ctx)
	_, err := pass.Elaborate(parent)
	require.NoError(t, err)
	require.Same(t, ctx, seen)
}
