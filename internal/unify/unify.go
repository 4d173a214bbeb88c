// Package unify implements equality (unify) and higher-rank subtyping
// (subsumes) over Virtual types, grounded on vulpi-typer/src/unify.rs.
package unify

import (
	"github.com/vulpine-lang/vulpityc/internal/diag"
	"github.com/vulpine-lang/vulpityc/internal/kind"
	"github.com/vulpine-lang/vulpityc/internal/tenv"
	"github.com/vulpine-lang/vulpityc/internal/types"
)

// Unify equates two Virtual types, filling holes as needed. Errors are
// reported to ctx's sink; the caller need not branch on success since
// Error types never cascade (spec.md 7).
func Unify(ctx *tenv.Context, env types.Env, a, b types.Virtual) {
	a = types.Deref(a)
	b = types.Deref(b)

	if types.IsVError(a) || types.IsVError(b) {
		return
	}

	switch x := a.(type) {
	case types.VHole:
		if y, ok := b.(types.VHole); ok && x.Cell == y.Cell {
			return
		}
		unifyHole(ctx, env, x.Cell, b)
		return
	}
	if y, ok := b.(types.VHole); ok {
		unifyHole(ctx, env, y.Cell, a)
		return
	}

	switch x := a.(type) {
	case types.VTuple:
		y, ok := b.(types.VTuple)
		if !ok || len(x.Elems) != len(y.Elems) {
			mismatch(ctx, env, a, b)
			return
		}
		for i := range x.Elems {
			Unify(ctx, env, x.Elems[i], y.Elems[i])
		}
	case types.VApplication:
		y, ok := b.(types.VApplication)
		if !ok || len(x.Args) != len(y.Args) {
			mismatch(ctx, env, a, b)
			return
		}
		Unify(ctx, env, x.Head, y.Head)
		for i := range x.Args {
			Unify(ctx, env, x.Args[i], y.Args[i])
		}
	case types.VQualified:
		y, ok := b.(types.VQualified)
		if !ok {
			mismatch(ctx, env, a, b)
			return
		}
		Unify(ctx, env, x.Ctx, y.Ctx)
		Unify(ctx, env, x.Typ, y.Typ)
	case types.VArrow:
		y, ok := b.(types.VArrow)
		if !ok {
			mismatch(ctx, env, a, b)
			return
		}
		Unify(ctx, env, x.Dom, y.Dom)
		Unify(ctx, env, x.Eff, y.Eff)
		Unify(ctx, env, x.Cod, y.Cod)
	case types.VBound:
		y, ok := b.(types.VBound)
		if !ok || x.Level != y.Level {
			mismatch(ctx, env, a, b)
		}
	case types.VVariable:
		y, ok := b.(types.VVariable)
		if !ok || x.Name != y.Name {
			mismatch(ctx, env, a, b)
		}
	case types.VType:
		if _, ok := b.(types.VType); !ok {
			mismatch(ctx, env, a, b)
		}
	case types.VConstraint:
		if _, ok := b.(types.VConstraint); !ok {
			mismatch(ctx, env, a, b)
		}
	case types.VExtend, types.VEmptyRow:
		unifyRow(ctx, env, a, b)
	case types.VForall:
		y, ok := b.(types.VForall)
		if !ok {
			mismatch(ctx, env, a, b)
			return
		}
		skolem := types.VBound{Level: env.Level}
		extended := env.Add("", skolem, x.Kind)
		Unify(ctx, extended, types.ApplyClosure(x.Body, skolem), types.ApplyClosure(y.Body, skolem))
	default:
		mismatch(ctx, env, a, b)
	}
}

// unifyRow unifies two row types (record or effect rows): it repeatedly
// pulls a label out of the left row and demands the right row has the
// same label (allocating a fresh tail hole on the right if it is
// shorter), recursing on the remaining tails.
func unifyRow(ctx *tenv.Context, env types.Env, a, b types.Virtual) {
	switch x := a.(type) {
	case types.VEmptyRow:
		if _, ok := b.(types.VEmptyRow); !ok {
			mismatch(ctx, env, a, b)
		}
	case types.VExtend:
		rest, typ, ok := rowRemove(ctx, env, b, x.Label)
		if !ok {
			mismatch(ctx, env, a, b)
			return
		}
		Unify(ctx, env, x.Typ, typ)
		Unify(ctx, env, x.Tail, rest)
	default:
		mismatch(ctx, env, a, b)
	}
}

// rowRemove removes label from row r, returning the remaining row and
// the removed label's payload type. If r's tail is an unsolved hole,
// it is split into `label: fresh | fresh-tail` and filled.
func rowRemove(ctx *tenv.Context, env types.Env, r types.Virtual, label string) (rest, typ types.Virtual, ok bool) {
	r = types.Deref(r)
	switch x := r.(type) {
	case types.VExtend:
		if x.Label == label {
			return x.Tail, x.Typ, true
		}
		innerRest, innerTyp, innerOk := rowRemove(ctx, env, x.Tail, label)
		if !innerOk {
			return nil, nil, false
		}
		return types.VExtend{Label: x.Label, Typ: x.Typ, Tail: innerRest}, innerTyp, true
	case types.VEmptyRow:
		return nil, nil, false
	case types.VHole:
		if x.Cell.LacksLabel(label) {
			return nil, nil, false
		}
		payload := ctx.Hole(env, kind.Type{})
		tail := ctx.Lacks(env)
		x.Cell.Fill(types.VExtend{Label: label, Typ: payload, Tail: tail})
		return tail, payload, true
	default:
		return nil, nil, false
	}
}

// unifyHole inspects cell: if Filled, recurse; if Empty, run the
// occurs/escape check then fill.
func unifyHole(ctx *tenv.Context, env types.Env, cell *types.HoleCell, t types.Virtual) {
	switch st := cell.State.(type) {
	case types.HoleFilled:
		Unify(ctx, env, st.Value, t)
	case types.HoleEmpty:
		if occurs(ctx, env, st.Level, cell, t) {
			return
		}
		cell.Fill(t)
	case types.HoleRow:
		if occurs(ctx, env, st.Level, cell, t) {
			return
		}
		cell.Fill(t)
	}
}

// occurs rejects t mentioning cell itself (infinite type) or any
// Bound(l) with l >= scope (the hole would escape its scope). Reports
// a diagnostic and returns true if the check fails.
func occurs(ctx *tenv.Context, env types.Env, scope types.Level, cell *types.HoleCell, t types.Virtual) bool {
	t = types.Deref(t)
	switch x := t.(type) {
	case types.VHole:
		if x.Cell == cell {
			ctx.Report(env, diag.New(diag.InfiniteType, "type would contain itself"))
			return true
		}
		return false
	case types.VBound:
		if x.Level >= scope {
			ctx.Report(env, diag.New(diag.EscapingScope, "type references a variable bound after this hole's scope"))
			return true
		}
		return false
	case types.VArrow:
		return occurs(ctx, env, scope, cell, x.Dom) ||
			occurs(ctx, env, scope, cell, x.Eff) ||
			occurs(ctx, env, scope, cell, x.Cod)
	case types.VTuple:
		for _, e := range x.Elems {
			if occurs(ctx, env, scope, cell, e) {
				return true
			}
		}
		return false
	case types.VApplication:
		if occurs(ctx, env, scope, cell, x.Head) {
			return true
		}
		for _, a := range x.Args {
			if occurs(ctx, env, scope, cell, a) {
				return true
			}
		}
		return false
	case types.VQualified:
		return occurs(ctx, env, scope, cell, x.Ctx) || occurs(ctx, env, scope, cell, x.Typ)
	case types.VExtend:
		return occurs(ctx, env, scope, cell, x.Typ) || occurs(ctx, env, scope, cell, x.Tail)
	case types.VForall:
		skolem := types.VBound{Level: env.Level}
		extended := env.Add("", skolem, x.Kind)
		return occurs(ctx, extended, scope, cell, types.ApplyClosure(x.Body, skolem))
	default:
		return false
	}
}

func mismatch(ctx *tenv.Context, env types.Env, a, b types.Virtual) {
	d := diag.New(diag.TypeMismatch, "type mismatch").
		WithMeta("lhs", types.Print(types.Quote(a, env.Level))).
		WithMeta("rhs", types.Print(types.Quote(b, env.Level)))
	ctx.Report(env, d)
}
