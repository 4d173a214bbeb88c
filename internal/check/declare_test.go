package check

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vulpine-lang/vulpityc/internal/ast"
	"github.com/vulpine-lang/vulpityc/internal/diag"
	"github.com/vulpine-lang/vulpityc/internal/tenv"
	"github.com/vulpine-lang/vulpityc/internal/types"
)

func runMod(t *testing.T, decls ...ast.Decl) (*tenv.Context, *diag.CollectingSink) {
	t.Helper()
	sink := diag.NewCollectingSink()
	ctx := tenv.New(sink)
	mod := &ast.Module{Path: "m", Decls: decls}
	Run(ctx, mod)
	return ctx, sink
}

func lookupScheme(t *testing.T, ctx *tenv.Context, name string) types.Real {
	t.Helper()
	entry, ok := ctx.Modules.LookupVariable(types.QualifiedName{Module: "m", Name: name})
	require.True(t, ok, "variable %s not declared", name)
	return entry.Scheme
}

// scenario 1: `let id x = x` => forall a. a -> a, no diagnostics.
func TestDeclareLetIdentity(t *testing.T) {
	ctx, sink := runMod(t, ast.LetDecl{
		Name:   "id",
		Params: []ast.Pattern{ast.VarPattern{Name: "x"}},
		Body:   ast.Var{Name: "x"},
	})
	require.False(t, sink.HasErrors())

	scheme := lookupScheme(t, ctx, "id")
	forall, ok := scheme.(types.Forall)
	require.True(t, ok, "expected a Forall, got %s", types.Print(scheme))
	arrow, ok := forall.Body.(types.Arrow)
	require.True(t, ok)
	require.Equal(t, types.Bound{Index: 0}, arrow.Dom)
	require.Equal(t, types.Bound{Index: 0}, arrow.Cod)
}

// scenario 2: `let const x y = x` => forall a b. a -> b -> a.
func TestDeclareLetConst(t *testing.T) {
	ctx, sink := runMod(t, ast.LetDecl{
		Name: "const",
		Params: []ast.Pattern{
			ast.VarPattern{Name: "x"},
			ast.VarPattern{Name: "y"},
		},
		Body: ast.Var{Name: "x"},
	})
	require.False(t, sink.HasErrors())

	scheme := lookupScheme(t, ctx, "const")
	outer, ok := scheme.(types.Forall)
	require.True(t, ok)
	inner, ok := outer.Body.(types.Forall)
	require.True(t, ok)
	arrow, ok := inner.Body.(types.Arrow)
	require.True(t, ok)
	inner2, ok := arrow.Cod.(types.Arrow)
	require.True(t, ok)
	// x's binder is outermost, so the returned value's index is 1.
	require.Equal(t, types.Bound{Index: 1}, arrow.Dom)
	require.Equal(t, types.Bound{Index: 1}, inner2.Cod)
}

// scenario 3 (apply half): `let apply f x = f x` generalizes, on its
// own, to forall a b. (a -> b) -> a -> b.
func TestDeclareLetApplyIsPolymorphic(t *testing.T) {
	ctx, sink := runMod(t, ast.LetDecl{
		Name: "apply",
		Params: []ast.Pattern{
			ast.VarPattern{Name: "f"},
			ast.VarPattern{Name: "x"},
		},
		Body: ast.App{Func: ast.Var{Name: "f"}, Args: []ast.Expr{ast.Var{Name: "x"}}},
	})
	require.False(t, sink.HasErrors())

	scheme := lookupScheme(t, ctx, "apply")
	outer, ok := scheme.(types.Forall)
	require.True(t, ok, "expected a Forall, got %s", types.Print(scheme))
	inner, ok := outer.Body.(types.Forall)
	require.True(t, ok)
	arrow, ok := inner.Body.(types.Arrow)
	require.True(t, ok)
	fArrow, ok := arrow.Dom.(types.Arrow)
	require.True(t, ok, "expected apply's first param to be an arrow, got %s", types.Print(arrow.Dom))
	xArrow, ok := arrow.Cod.(types.Arrow)
	require.True(t, ok)
	require.Equal(t, fArrow.Dom, xArrow.Dom)
	require.Equal(t, fArrow.Cod, xArrow.Cod)
}

// scenario 3 (n half): `let one = 1 ; let n = one` => n : Int, using
// a sibling let declared earlier in the same module.
func TestDeclareLetReferencesPriorLet(t *testing.T) {
	ctx, sink := runMod(t,
		ast.LetDecl{Name: "one", Body: ast.Lit{Kind: ast.LitInt, Value: 1}},
		ast.LetDecl{Name: "n", Body: ast.Func{Name: ast.Qualified{Module: "m", Name: "one"}}},
	)
	require.False(t, sink.HasErrors())

	nScheme := lookupScheme(t, ctx, "n")
	variable, ok := nScheme.(types.Variable)
	require.True(t, ok, "expected n : Int, got %s", types.Print(nScheme))
	require.Equal(t, types.IntName, variable.Name)
}

// scenario 4: `let bad = (\f. (f 1, f "s")) (\x. x)` must fail to
// type-check: the monomorphic lambda argument cannot be applied to
// both Int and String without rank-2 polymorphism.
func TestDeclareLetRankTwoWithoutAnnotationFails(t *testing.T) {
	badDecl := ast.LetDecl{
		Name: "bad",
		Body: ast.App{
			Func: ast.Lambda{
				Param: ast.VarPattern{Name: "f"},
				Body: ast.TupleExpr{Elems: []ast.Expr{
					ast.App{Func: ast.Var{Name: "f"}, Args: []ast.Expr{ast.Lit{Kind: ast.LitInt, Value: 1}}},
					ast.App{Func: ast.Var{Name: "f"}, Args: []ast.Expr{ast.Lit{Kind: ast.LitString, Value: "s"}}},
				}},
			},
			Args: []ast.Expr{ast.Lambda{Param: ast.VarPattern{Name: "x"}, Body: ast.Var{Name: "x"}}},
		},
	}

	_, sink := runMod(t, badDecl)
	require.True(t, sink.HasErrors())
}

// scenario 5: `type List = Nil | Cons () List` with a match covering
// only `Cons` must report NonExhaustive, witnessing the missing `Nil`.
func TestDeclareLetNonExhaustiveMatch(t *testing.T) {
	listDecl := ast.TypeDecl{
		Name: "List",
		Def:  ast.DefEnum,
		Constructors: []ast.ConstructorDecl{
			{Name: "Nil"},
			{Name: "Cons", Args: []ast.TypeExpr{
				ast.TypeTuple{},
				ast.TypeCtor{Name: ast.Qualified{Module: "m", Name: "List"}},
			}},
		},
	}
	lstExternal := ast.ExternalDecl{
		Name: "lst",
		Type: ast.TypeCtor{Name: ast.Qualified{Module: "m", Name: "List"}},
	}
	headDecl := ast.LetDecl{
		Name: "head",
		Body: ast.When{
			Scrutinees: []ast.Expr{ast.Func{Name: ast.Qualified{Module: "m", Name: "lst"}}},
			Arms: []ast.WhenArm{{
				Patterns: []ast.Pattern{ast.CtorPattern{
					Name: ast.Qualified{Module: "m", Name: "Cons"},
					Args: []ast.Pattern{ast.VarPattern{Name: "h"}, ast.VarPattern{Name: "t"}},
				}},
				Body: ast.Var{Name: "h"},
			}},
		},
	}

	_, sink := runMod(t, listDecl, lstExternal, headDecl)
	require.True(t, sink.HasErrors())

	found := false
	for _, d := range sink.Diagnostics {
		if d.Code == diag.NonExhaustive {
			found = true
		}
	}
	require.True(t, found, "expected a NonExhaustive diagnostic, got %+v", sink.Diagnostics)
}

// scenario 6: `type Point = { x: Int, y: Int }; { x = 1 }` must report
// MissingField for the omitted `y`.
func TestDeclareLetMissingRecordField(t *testing.T) {
	pointDecl := ast.TypeDecl{
		Name: "Point",
		Def:  ast.DefRecord,
		Fields: []ast.FieldDecl{
			{Name: "x", Type: ast.TypeCtor{Name: ast.Qualified{Module: "prim", Name: "Int"}}},
			{Name: "y", Type: ast.TypeCtor{Name: ast.Qualified{Module: "prim", Name: "Int"}}},
		},
	}
	pDecl := ast.LetDecl{
		Name: "p",
		Body: ast.RecordExpr{
			Type: ast.Qualified{Module: "m", Name: "Point"},
			Fields: []ast.FieldInit{
				{Name: "x", Value: ast.Lit{Kind: ast.LitInt, Value: 1}},
			},
		},
	}

	_, sink := runMod(t, pointDecl, pDecl)
	require.True(t, sink.HasErrors())

	found := false
	for _, d := range sink.Diagnostics {
		if d.Code == diag.MissingField {
			found = true
		}
	}
	require.True(t, found, "expected a MissingField diagnostic, got %+v", sink.Diagnostics)
}
