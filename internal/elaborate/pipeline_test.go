package elaborate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hdl21/elaborate/internal/ir"
)

func TestElaborateTrivialPassthrough(t *testing.T) {
	m := ir.NewModule("M")
	require.NoError(t, m.AddPort(ir.NewSignal("vss", 1, ir.INTERNAL, ir.NONE)))

	ctx := ir.NewContext()
	out, err := Elaborate(m, ctx, DefaultPasses(ctx))
	require.NoError(t, err)
	require.Same(t, m, out)
	require.Equal(t, 0, out.Signals.Len())
	require.Len(t, out.Namespace, 1)
}

func TestElaborateRejectsNonModuleTop(t *testing.T) {
	ctx := ir.NewContext()
	_, err := Elaborate(ir.NewPrimitiveCall("res"), ctx, DefaultPasses(ctx))
	require.Error(t, err)
}

func TestElaborateAllFlattensNestedContainers(t *testing.T) {
	m1 := ir.NewModule("A")
	m2 := ir.NewModule("B")

	tops := []any{
		m1,
		map[string]any{"nested": []any{m2}},
	}

	ctx := ir.NewContext()
	out, err := ElaborateAll(tops, ctx, func() []Pass { return DefaultPasses(ctx) })
	require.NoError(t, err)
	require.Len(t, out, 2)
}

func TestElaborateAllRejectsNonCandidateLeaf(t *testing.T) {
	ctx := ir.NewContext()
	_, err := ElaborateAll(42, ctx, func() []Pass { return DefaultPasses(ctx) })
	require.Error(t, err)
}
