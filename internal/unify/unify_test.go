package unify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vulpine-lang/vulpityc/internal/diag"
	"github.com/vulpine-lang/vulpityc/internal/kind"
	"github.com/vulpine-lang/vulpityc/internal/tenv"
	"github.com/vulpine-lang/vulpityc/internal/types"
)

func newCtx() (*tenv.Context, *diag.CollectingSink) {
	sink := diag.NewCollectingSink()
	return tenv.New(sink), sink
}

func TestUnifyGroundEqual(t *testing.T) {
	ctx, sink := newCtx()
	env := types.NewEnv()
	Unify(ctx, env, types.VType{}, types.VType{})
	require.False(t, sink.HasErrors())
}

func TestUnifyGroundMismatch(t *testing.T) {
	ctx, sink := newCtx()
	env := types.NewEnv()
	Unify(ctx, env, types.VType{}, types.VConstraint{})
	require.True(t, sink.HasErrors())
	require.Equal(t, diag.TypeMismatch, sink.Diagnostics[0].Code)
}

func TestUnifyFillsEmptyHole(t *testing.T) {
	ctx, sink := newCtx()
	env := types.NewEnv()
	hole := types.VHole{Cell: types.NewEmptyHole("t", kind.Type{}, env.Level)}

	Unify(ctx, env, hole, types.VType{})

	require.False(t, sink.HasErrors())
	require.Equal(t, types.VType{}, types.Deref(hole))
}

func TestUnifyArrow(t *testing.T) {
	ctx, sink := newCtx()
	env := types.NewEnv()
	a := types.VArrow{Dom: types.VType{}, Eff: types.VEmptyRow{}, Cod: types.VType{}}
	b := types.VArrow{Dom: types.VType{}, Eff: types.VEmptyRow{}, Cod: types.VType{}}
	Unify(ctx, env, a, b)
	require.False(t, sink.HasErrors())
}

func TestUnifyArrowMismatchedCodomain(t *testing.T) {
	ctx, sink := newCtx()
	env := types.NewEnv()
	a := types.VArrow{Dom: types.VType{}, Eff: types.VEmptyRow{}, Cod: types.VType{}}
	b := types.VArrow{Dom: types.VType{}, Eff: types.VEmptyRow{}, Cod: types.VConstraint{}}
	Unify(ctx, env, a, b)
	require.True(t, sink.HasErrors())
}

func TestOccursCheckRejectsSelfReference(t *testing.T) {
	ctx, sink := newCtx()
	env := types.NewEnv()
	cell := types.NewEmptyHole("t", kind.Type{}, env.Level)
	hole := types.VHole{Cell: cell}

	Unify(ctx, env, hole, types.VArrow{Dom: hole, Eff: types.VEmptyRow{}, Cod: types.VType{}})

	require.True(t, sink.HasErrors())
	require.Equal(t, diag.InfiniteType, sink.Diagnostics[0].Code)
	_, stillEmpty := cell.State.(types.HoleEmpty)
	require.True(t, stillEmpty)
}

func TestEscapeCheckRejectsLaterBoundVariable(t *testing.T) {
	ctx, sink := newCtx()
	env := types.NewEnv()
	cell := types.NewEmptyHole("t", kind.Type{}, env.Level)
	hole := types.VHole{Cell: cell}

	// A Bound at a level created strictly after the hole must not escape
	// into it.
	Unify(ctx, env, hole, types.VBound{Level: env.Level + 5})

	require.True(t, sink.HasErrors())
	require.Equal(t, diag.EscapingScope, sink.Diagnostics[0].Code)
}

func TestUnifyRecordRowsOutOfOrder(t *testing.T) {
	ctx, sink := newCtx()
	env := types.NewEnv()

	left := types.VExtend{Label: "x", Typ: types.VType{}, Tail: types.VExtend{
		Label: "y", Typ: types.VConstraint{}, Tail: types.VEmptyRow{},
	}}
	right := types.VExtend{Label: "y", Typ: types.VConstraint{}, Tail: types.VExtend{
		Label: "x", Typ: types.VType{}, Tail: types.VEmptyRow{},
	}}

	Unify(ctx, env, left, right)
	require.False(t, sink.HasErrors())
}

func TestUnifyRowSplitsOpenTail(t *testing.T) {
	ctx, sink := newCtx()
	env := types.NewEnv()

	tailHole := ctx.Lacks(env)
	left := types.VExtend{Label: "x", Typ: types.VType{}, Tail: tailHole}
	right := types.VExtend{Label: "x", Typ: types.VType{}, Tail: types.VEmptyRow{}}

	Unify(ctx, env, left, right)

	require.False(t, sink.HasErrors())
	require.Equal(t, types.VEmptyRow{}, types.Deref(tailHole))
}

func TestUnifyForallAlphaEquivalent(t *testing.T) {
	ctx, sink := newCtx()
	env := types.NewEnv()

	a := types.Eval(types.Forall{Name: "a", Kind: kind.Type{}, Body: types.Bound{Index: 0}}, env)
	b := types.Eval(types.Forall{Name: "b", Kind: kind.Type{}, Body: types.Bound{Index: 0}}, env)

	Unify(ctx, env, a, b)
	require.False(t, sink.HasErrors())
}
