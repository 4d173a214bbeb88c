package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vulpine-lang/vulpityc/internal/kind"
)

func TestEvalQuoteRoundTripGround(t *testing.T) {
	env := NewEnv()
	r := Arrow{Dom: TypeT{}, Eff: EmptyRow{}, Cod: TypeT{}}

	v := Eval(r, env)
	got := Quote(v, env.Level)

	require.True(t, cmp.Equal(r, got), cmp.Diff(r, got))
}

func TestEvalQuoteRoundTripForall(t *testing.T) {
	env := NewEnv()
	// forall a. a -> a
	r := Forall{Name: "a", Kind: kind.Type{}, Body: Arrow{
		Dom: Bound{Index: 0},
		Eff: EmptyRow{},
		Cod: Bound{Index: 0},
	}}

	v := Eval(r, env)
	got := Quote(v, env.Level)

	require.True(t, cmp.Equal(r, got), cmp.Diff(r, got))
}

func TestQuoteSkolemizesForallBody(t *testing.T) {
	env := NewEnv()
	r := Forall{Name: "a", Kind: kind.Type{}, Body: Bound{Index: 0}}
	v := Eval(r, env).(VForall)

	body := ApplyClosure(v.Body, VBound{Level: env.Level})
	require.Equal(t, VBound{Level: env.Level}, body)
}

func TestDerefForcesFilledChain(t *testing.T) {
	inner := NewEmptyHole("a", kind.Type{}, 0)
	outer := NewEmptyHole("b", kind.Type{}, 0)
	outer.Fill(VHole{Cell: inner})
	inner.Fill(VType{})

	got := Deref(VHole{Cell: outer})
	require.Equal(t, VType{}, got)

	// Path compression: outer's cell now points directly at the solved value.
	filled, ok := outer.State.(HoleFilled)
	require.True(t, ok)
	require.Equal(t, VType{}, filled.Value)
}

func TestDerefUnsolvedHoleIsIdentity(t *testing.T) {
	h := NewEmptyHole("a", kind.Type{}, 0)
	v := VHole{Cell: h}
	require.Equal(t, v, Deref(v))
}

func TestApplyVirtualBuildsSpine(t *testing.T) {
	f := VVariable{Name: QualifiedName{Module: "M", Name: "Pair"}}
	spined := ApplyVirtual(ApplyVirtual(f, VType{}), VConstraint{})

	app, ok := spined.(VApplication)
	require.True(t, ok)
	require.Equal(t, f, app.Head)
	require.Equal(t, []Virtual{VType{}, VConstraint{}}, app.Args)
}

func TestToIndexToLevelRoundTrip(t *testing.T) {
	base := Level(2)
	current := Level(5)
	idx := ToIndex(base, current)
	require.Equal(t, base, ToLevel(current, idx))
}

func TestHoleRowLacks(t *testing.T) {
	h := NewRowHole("row", 0)
	require.False(t, h.LacksLabel("x"))
	h.AddLack("x")
	require.True(t, h.LacksLabel("x"))
	require.False(t, h.LacksLabel("y"))
}
