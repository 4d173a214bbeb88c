package unify

import (
	"github.com/vulpine-lang/vulpityc/internal/diag"
	"github.com/vulpine-lang/vulpityc/internal/tenv"
	"github.com/vulpine-lang/vulpityc/internal/types"
)

// Subsumes checks lhs ⊑ rhs: lhs is at least as polymorphic as rhs.
// Errors are reported once, at the outermost call, with both sides
// quoted at the outer call's level so diagnostics show user-visible
// types rather than an inner skolemized fragment (spec.md 4.3).
func Subsumes(ctx *tenv.Context, env types.Env, lhs, rhs types.Virtual) {
	outerLevel := env.Level
	if !subsumesGo(ctx, env, lhs, rhs) {
		d := diag.New(diag.TypeMismatch, "type is not polymorphic enough").
			WithMeta("lhs", types.Print(types.Quote(lhs, outerLevel))).
			WithMeta("rhs", types.Print(types.Quote(rhs, outerLevel)))
		ctx.Report(env, d)
	}
}

// subsumesGo returns false on failure instead of reporting directly,
// so the outer Subsumes call is the only one that ever emits a
// diagnostic — nested recursive calls during skolemization or hole
// splitting must not each report their own TypeMismatch.
func subsumesGo(ctx *tenv.Context, env types.Env, lhs, rhs types.Virtual) bool {
	lhs = types.Deref(lhs)
	rhs = types.Deref(rhs)

	if types.IsVError(lhs) || types.IsVError(rhs) {
		return true
	}

	if h, ok := lhs.(types.VHole); ok {
		return subHoleType(ctx, env, h.Cell, rhs)
	}
	if h, ok := rhs.(types.VHole); ok {
		return subTypeHole(ctx, env, lhs, h.Cell)
	}

	if lArrow, ok := lhs.(types.VArrow); ok {
		rArrow, ok := rhs.(types.VArrow)
		if !ok {
			return unifyOk(ctx, env, lhs, rhs)
		}
		return subsumesGo(ctx, env, rArrow.Dom, lArrow.Dom) &&
			subsumesGo(ctx, env, lArrow.Cod, rArrow.Cod)
	}

	if rForall, ok := rhs.(types.VForall); ok {
		skolem := types.VBound{Level: env.Level}
		extended := env.Add(rForall.Name, skolem, rForall.Kind)
		return subsumesGo(ctx, extended, lhs, types.ApplyClosure(rForall.Body, skolem))
	}

	if _, ok := lhs.(types.VForall); ok {
		inst := ctx.Instantiate(env, lhs)
		return subsumesGo(ctx, env, inst, rhs)
	}

	return unifyOk(ctx, env, lhs, rhs)
}

// subHoleType handles lhs being an unsolved hole. If rhs is a Forall,
// skolemize it and recurse (the hole must accept any instantiation).
// If rhs is an Arrow, split the hole into fresh dom/cod holes at the
// hole's kind, fill it with that arrow, and recurse contravariantly.
func subHoleType(ctx *tenv.Context, env types.Env, cell *types.HoleCell, rhs types.Virtual) bool {
	if filled, ok := cell.State.(types.HoleFilled); ok {
		return subsumesGo(ctx, env, filled.Value, rhs)
	}
	switch r := rhs.(type) {
	case types.VForall:
		skolem := types.VBound{Level: env.Level}
		extended := env.Add(r.Name, skolem, r.Kind)
		return subHoleType(ctx, extended, cell, types.ApplyClosure(r.Body, skolem))
	case types.VArrow:
		dom := ctx.Hole(env, cell.Kind())
		eff := ctx.Lacks(env)
		cod := ctx.Hole(env, cell.Kind())
		cell.Fill(types.VArrow{Dom: dom, Eff: eff, Cod: cod})
		return subsumesGo(ctx, env, r.Dom, dom) && subsumesGo(ctx, env, cod, r.Cod)
	default:
		return unifyOk(ctx, env, types.VHole{Cell: cell}, rhs)
	}
}

// subTypeHole is the mirror of subHoleType: lhs is concrete, rhs is an
// unsolved hole.
func subTypeHole(ctx *tenv.Context, env types.Env, lhs types.Virtual, cell *types.HoleCell) bool {
	if filled, ok := cell.State.(types.HoleFilled); ok {
		return subsumesGo(ctx, env, lhs, filled.Value)
	}
	switch l := lhs.(type) {
	case types.VForall:
		inst := ctx.Instantiate(env, lhs)
		return subTypeHole(ctx, env, inst, cell)
	case types.VArrow:
		dom := ctx.Hole(env, cell.Kind())
		eff := ctx.Lacks(env)
		cod := ctx.Hole(env, cell.Kind())
		cell.Fill(types.VArrow{Dom: dom, Eff: eff, Cod: cod})
		return subsumesGo(ctx, env, dom, l.Dom) && subsumesGo(ctx, env, l.Cod, cod)
	default:
		return unifyOk(ctx, env, lhs, types.VHole{Cell: cell})
	}
}

// unifyOk runs Unify against a scratch sink so a failure deep inside a
// subsumption probe never surfaces its own diagnostic — only the
// outermost Subsumes call reports. Reports success/failure as a bool.
func unifyOk(ctx *tenv.Context, env types.Env, a, b types.Virtual) bool {
	scratch := diag.NewCollectingSink()
	probe := &tenv.Context{Sink: scratch, Modules: ctx.Modules, RunID: ctx.RunID}
	Unify(probe, env, a, b)
	return !scratch.HasErrors()
}
