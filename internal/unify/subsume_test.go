package unify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vulpine-lang/vulpityc/internal/kind"
	"github.com/vulpine-lang/vulpityc/internal/types"
)

// idForall is `forall a. a -> a`.
func idForall(env types.Env) types.Virtual {
	return types.Eval(types.Forall{Name: "a", Kind: kind.Type{}, Body: types.Arrow{
		Dom: types.Bound{Index: 0}, Eff: types.EmptyRow{}, Cod: types.Bound{Index: 0},
	}}, env)
}

func TestSubsumesPolymorphicBelowMonomorphicUse(t *testing.T) {
	ctx, sink := newCtx()
	env := types.NewEnv()

	lhs := idForall(env)
	rhs := types.VArrow{Dom: types.VType{}, Eff: types.VEmptyRow{}, Cod: types.VType{}}

	Subsumes(ctx, env, lhs, rhs)
	require.False(t, sink.HasErrors())
}

func TestSubsumesMonomorphicDoesNotSubsumePolymorphic(t *testing.T) {
	ctx, sink := newCtx()
	env := types.NewEnv()

	lhs := types.VArrow{Dom: types.VType{}, Eff: types.VEmptyRow{}, Cod: types.VType{}}
	rhs := idForall(env)

	Subsumes(ctx, env, lhs, rhs)
	require.True(t, sink.HasErrors())
}

func TestSubsumesRankTwoArgument(t *testing.T) {
	ctx, sink := newCtx()
	env := types.NewEnv()

	// apply : (forall a. a -> a) -> Constraint -> Constraint
	rank2 := types.VArrow{Dom: idForall(env), Eff: types.VEmptyRow{}, Cod: types.VConstraint{}}
	mono := types.VArrow{
		Dom: types.VArrow{Dom: types.VConstraint{}, Eff: types.VEmptyRow{}, Cod: types.VConstraint{}},
		Eff: types.VEmptyRow{}, Cod: types.VConstraint{},
	}

	// rank2 does NOT subsume mono: mono's argument is only good for one
	// concrete instantiation, not every instantiation rank2 demands.
	Subsumes(ctx, env, rank2, mono)
	require.True(t, sink.HasErrors())
}

func TestSubsumesHoleAcceptsForall(t *testing.T) {
	ctx, sink := newCtx()
	env := types.NewEnv()

	hole := ctx.Hole(env, kind.Type{})
	Subsumes(ctx, env, hole, idForall(env))
	require.False(t, sink.HasErrors())
}

func TestSubsumesSameTypeIsReflexive(t *testing.T) {
	ctx, sink := newCtx()
	env := types.NewEnv()
	f := idForall(env)
	Subsumes(ctx, env, f, f)
	require.False(t, sink.HasErrors())
}
