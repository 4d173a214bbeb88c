package check

import (
	"github.com/vulpine-lang/vulpityc/internal/ast"
	"github.com/vulpine-lang/vulpityc/internal/kind"
	"github.com/vulpine-lang/vulpityc/internal/tenv"
	"github.com/vulpine-lang/vulpityc/internal/typedast"
	"github.com/vulpine-lang/vulpityc/internal/types"
)

func node(e ast.Expr, t types.Real) typedast.Base {
	return typedast.Base{Pos: e.Position(), Type: t}
}

func toTypesPos(p ast.Pos) types.Pos {
	return types.Pos{File: p.File, Line: p.Line, Column: p.Column}
}

func toRegistryName(q ast.Qualified) types.QualifiedName {
	return types.QualifiedName{Module: q.Module, Name: q.Name}
}

func patternLeadName(p typedast.Pattern) string {
	switch pp := p.(type) {
	case typedast.VarPattern:
		return pp.Name
	default:
		return "_"
	}
}

// evalTypeExpr evaluates a surface TypeExpr annotation into a Virtual
// type under env, allocating one fresh hole per distinct type-variable
// name in the annotation; names are not looked up in env (lightweight
// monotype elaboration,
// enough for the annotations spec.md's `annot`/`external` rules need).
func evalTypeExpr(ctx *tenv.Context, env types.Env, t ast.TypeExpr) types.Virtual {
	vars := map[string]types.Virtual{}
	return evalTypeExprWith(ctx, env, t, vars)
}

func evalTypeExprWith(ctx *tenv.Context, env types.Env, t ast.TypeExpr, vars map[string]types.Virtual) types.Virtual {
	switch te := t.(type) {
	case ast.TypeVar:
		if v, ok := vars[te.Name]; ok {
			return v
		}
		v := ctx.Hole(env, kind.Type{})
		vars[te.Name] = v
		return v
	case ast.TypeCtor:
		return types.VVariable{Name: toRegistryName(te.Name)}
	case ast.TypeApp:
		f := evalTypeExprWith(ctx, env, te.Func, vars)
		a := evalTypeExprWith(ctx, env, te.Arg, vars)
		return types.ApplyVirtual(f, a)
	case ast.TypeArrow:
		dom := evalTypeExprWith(ctx, env, te.Dom, vars)
		cod := evalTypeExprWith(ctx, env, te.Cod, vars)
		eff := buildEffectRow(ctx, env, te.Eff)
		return types.VArrow{Dom: dom, Eff: eff, Cod: cod}
	case ast.TypeForall:
		// A surface Forall annotation is elaborated by binding each
		// named binder to a fresh skolem-like bound variable: we build
		// the Real Forall directly via quote/eval roundtrip so nested
		// binder indices come out right.
		return evalForallExpr(ctx, env, te, vars)
	case ast.TypeTuple:
		elems := make([]types.Virtual, len(te.Elems))
		for i, el := range te.Elems {
			elems[i] = evalTypeExprWith(ctx, env, el, vars)
		}
		return types.VTuple{Elems: elems}
	case ast.TypeRecordRow:
		var tail types.Virtual
		if te.Tail == "" {
			tail = types.VEmptyRow{}
		} else if v, ok := vars[te.Tail]; ok {
			tail = v
		} else {
			tail = ctx.Lacks(env)
			vars[te.Tail] = tail
		}
		row := tail
		for i := len(te.Fields) - 1; i >= 0; i-- {
			f := te.Fields[i]
			row = types.VExtend{Label: f.Name, Typ: evalTypeExprWith(ctx, env, f.Type, vars), Tail: row}
		}
		return row
	default:
		return types.ErrorVirtual()
	}
}

func buildEffectRow(ctx *tenv.Context, env types.Env, labels []string) types.Virtual {
	tail := ctx.Lacks(env)
	row := tail
	for i := len(labels) - 1; i >= 0; i-- {
		row = types.VExtend{Label: labels[i], Typ: types.VEffect{}, Tail: row}
	}
	return row
}

// evalForallExpr elaborates an explicit surface `forall a b. T`
// annotation. Each binder becomes a nested Real Forall around the
// evaluated body; the body is elaborated in an env extended with an
// abstract bound variable per binder so TypeVar lookups inside resolve
// to Bound references rather than fresh holes.
func evalForallExpr(ctx *tenv.Context, env types.Env, te ast.TypeForall, vars map[string]types.Virtual) types.Virtual {
	extended := env
	for _, b := range te.Binders {
		skolem := types.VBound{Level: extended.Level}
		extended = extended.Add(b, skolem, kind.Type{})
		vars[b] = skolem
	}
	body := evalTypeExprWith(ctx, extended, te.Body, vars)
	real := types.Quote(body, extended.Level)
	for i := len(te.Binders) - 1; i >= 0; i-- {
		real = types.Forall{Name: te.Binders[i], Kind: kind.Type{}, Body: real}
	}
	return types.Eval(real, env)
}
