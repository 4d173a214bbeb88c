// Package check implements the bidirectional checker: infer/check over
// expressions and patterns, and the two-pass declare/define driver
// (spec.md 4.5-4.8), grounded on vulpi-typer/src/infer/expr.rs and
// vulpi-typer/src/declare.rs (shape only — see DESIGN.md).
package check

import (
	"github.com/vulpine-lang/vulpityc/internal/ast"
	"github.com/vulpine-lang/vulpityc/internal/coverage"
	"github.com/vulpine-lang/vulpityc/internal/diag"
	"github.com/vulpine-lang/vulpityc/internal/kind"
	"github.com/vulpine-lang/vulpityc/internal/tenv"
	"github.com/vulpine-lang/vulpityc/internal/typedast"
	"github.com/vulpine-lang/vulpityc/internal/types"
	"github.com/vulpine-lang/vulpityc/internal/unify"
)

func litGroundName(k ast.LitKind) types.QualifiedName {
	switch k {
	case ast.LitInt:
		return types.IntName
	case ast.LitFloat:
		return types.FloatName
	case ast.LitString:
		return types.StringName
	case ast.LitChar:
		return types.CharName
	default:
		return types.UnitName
	}
}

// Infer computes a Virtual type for e and returns the elaborated node.
func Infer(ctx *tenv.Context, env types.Env, e ast.Expr) (types.Virtual, typedast.Node) {
	env = env.SetSpan(toTypesPos(e.Position()))

	switch expr := e.(type) {
	case ast.Var:
		typ, ok := env.Lookup(expr.Name)
		if !ok {
			typ = types.ErrorVirtual()
		}
		return typ, typedast.Var{Base: node(e, types.Quote(typ, env.Level)), Name: expr.Name}

	case ast.Ctor:
		entry, ok := ctx.Modules.LookupConstructor(toRegistryName(expr.Name))
		if !ok {
			ctx.Report(env, diag.New(diag.NotFoundField, "unknown constructor "+expr.Name.String()))
			return types.ErrorVirtual(), typedast.ErrorNode{Base: node(e, types.ErrorReal())}
		}
		typ := types.Eval(entry.Scheme, env)
		return typ, typedast.Ctor{Base: node(e, entry.Scheme), Name: expr.Name, Arity: entry.Arity}

	case ast.Func:
		entry, ok := ctx.Modules.LookupVariable(toRegistryName(expr.Name))
		if !ok {
			ctx.Report(env, diag.New(diag.NotFoundField, "unknown function "+expr.Name.String()))
			return types.ErrorVirtual(), typedast.ErrorNode{Base: node(e, types.ErrorReal())}
		}
		typ := types.Eval(entry.Scheme, env)
		return typ, typedast.Func{Base: node(e, entry.Scheme), Name: expr.Name}

	case ast.Lit:
		name := litGroundName(expr.Kind)
		typ := types.VVariable{Name: name}
		return typ, typedast.Lit{Base: node(e, types.Quote(typ, env.Level)), Kind: expr.Kind, Value: expr.Value}

	case ast.App:
		return inferApp(ctx, env, expr, e)

	case ast.TupleExpr:
		elemTypes := make([]types.Virtual, len(expr.Elems))
		elemNodes := make([]typedast.Node, len(expr.Elems))
		for i, sub := range expr.Elems {
			t, n := Infer(ctx, env, sub)
			elemTypes[i] = t
			elemNodes[i] = n
		}
		typ := types.VTuple{Elems: elemTypes}
		return typ, typedast.Tuple{Base: node(e, types.Quote(typ, env.Level)), Elems: elemNodes}

	case ast.Lambda:
		patTyp, binds, patElab := InferPattern(ctx, env, expr.Param)
		bodyEnv := env
		for name, t := range binds {
			bodyEnv = bodyEnv.AddVar(name, t)
		}
		bodyTyp, bodyElab := Infer(ctx, bodyEnv, expr.Body)
		eff := ctx.Lacks(env)
		typ := types.VArrow{Dom: patTyp, Eff: eff, Cod: bodyTyp}
		name := patternLeadName(patElab)
		return typ, typedast.Lambda{
			Base: node(e, types.Quote(typ, env.Level)), ParamName: name,
			ParamType: types.Quote(patTyp, env.Level), Body: bodyElab,
		}

	case ast.Let:
		valTyp, valElab := Infer(ctx, env, expr.Value)
		patTyp, binds, patElab := InferPattern(ctx, env, expr.Pattern)
		unify.Subsumes(ctx, env, patTyp, valTyp)
		bodyEnv := env
		for name, t := range binds {
			bodyEnv = bodyEnv.AddVar(name, t)
		}
		bodyTyp, bodyElab := Infer(ctx, bodyEnv, expr.Body)
		return bodyTyp, typedast.Let{
			Base: node(e, types.Quote(bodyTyp, env.Level)),
			Pattern: patElab, Value: valElab, Body: bodyElab,
		}

	case ast.Annot:
		typ := evalTypeExpr(ctx, env, expr.Type)
		inferred, elab := Infer(ctx, env, expr.Expr)
		unify.Subsumes(ctx, env, inferred, typ)
		return typ, typedast.Annot{Base: node(e, types.Quote(typ, env.Level)), Expr: elab}

	case ast.When:
		return inferWhen(ctx, env, expr, e)

	case ast.Do:
		return inferDo(ctx, env, expr, e)

	case ast.RecordExpr:
		return inferRecordExpr(ctx, env, expr, e)

	case ast.RecordUpdate:
		return inferRecordUpdate(ctx, env, expr, e)

	case ast.Project:
		return inferProject(ctx, env, expr, e)

	case ast.ErrorExpr:
		return types.ErrorVirtual(), typedast.ErrorNode{Base: node(e, types.ErrorReal())}

	default:
		ctx.Report(env, diag.New(diag.TypeMismatch, "unrecognized expression form"))
		return types.ErrorVirtual(), typedast.ErrorNode{Base: node(e, types.ErrorReal())}
	}
}

// Check verifies e against expected, defaulting to infer-then-subsume.
func Check(ctx *tenv.Context, env types.Env, e ast.Expr, expected types.Virtual) typedast.Node {
	inferred, elab := Infer(ctx, env, e)
	unify.Subsumes(ctx, env, inferred, expected)
	return elab
}

// inferApp implements spec.md 4.5's `app` rule: infer f, then for each
// argument reduce the running type to an arrow via as_function
// (instantiating intervening Foralls, inventing a fresh arrow under an
// unresolved Hole), check the argument against dom, thread cod.
func inferApp(ctx *tenv.Context, env types.Env, expr ast.App, e ast.Expr) (types.Virtual, typedast.Node) {
	funcTyp, funcElab := Infer(ctx, env, expr.Func)
	cur := funcTyp
	argElabs := make([]typedast.Node, 0, len(expr.Args))
	for _, arg := range expr.Args {
		argEnv := env.SetSpan(toTypesPos(arg.Position()))
		dom, _, cod, ok := ctx.AsFunction(argEnv, cur)
		if !ok {
			ctx.Report(argEnv, diag.New(diag.NotAFunction, "application target is not a function"))
			return types.ErrorVirtual(), typedast.ErrorNode{Base: node(e, types.ErrorReal())}
		}
		argElab := Check(ctx, argEnv, arg, dom)
		argElabs = append(argElabs, argElab)
		cur = cod
	}
	return cur, typedast.App{Base: node(e, types.Quote(cur, env.Level)), Func: funcElab, Args: argElabs}
}

func inferDo(ctx *tenv.Context, env types.Env, expr ast.Do, e ast.Expr) (types.Virtual, typedast.Node) {
	cur := env
	var lets []typedast.LetStmt
	var final typedast.Node
	finalTyp := types.Virtual(types.VVariable{Name: types.UnitName})
	for i, s := range expr.Stmts {
		switch stmt := s.(type) {
		case ast.LetSttm:
			valTyp, valElab := Infer(ctx, cur, stmt.Value)
			patTyp, binds, patElab := InferPattern(ctx, cur, stmt.Pattern)
			unify.Subsumes(ctx, cur, patTyp, valTyp)
			for name, t := range binds {
				cur = cur.AddVar(name, t)
			}
			lets = append(lets, typedast.LetStmt{Pattern: patElab, Value: valElab})
		case ast.ExprSttm:
			t, elab := Infer(ctx, cur, stmt.Value)
			if i == len(expr.Stmts)-1 {
				finalTyp = t
				final = elab
			}
		}
	}
	if final == nil {
		final = typedast.Lit{Kind: ast.LitUnit, Value: nil}
	}
	return finalTyp, typedast.Do{Base: node(e, types.Quote(finalTyp, env.Level)), LetStmts: lets, Final: final}
}

func inferWhen(ctx *tenv.Context, env types.Env, expr ast.When, e ast.Expr) (types.Virtual, typedast.Node) {
	nArms := len(expr.Arms)
	nScrut := len(expr.Scrutinees)
	wasErrored := ctx.Errored
	ctx.Errored = false

	armPatTypes := make([]types.Virtual, nScrut)
	for i := range armPatTypes {
		armPatTypes[i] = ctx.Hole(env, kind.Type{})
	}
	bodyTyp := ctx.Hole(env, kind.Type{})

	elabArms := make([]typedast.MatchArm, nArms)
	astMatrix := make([][]ast.Pattern, nArms)

	if len(expr.Arms) > 0 && len(expr.Arms[0].Patterns) != nScrut {
		ctx.Report(env, diag.New(diag.WrongArity, "match arm pattern count disagrees with scrutinee count"))
	}

	for i, arm := range expr.Arms {
		armEnv := env
		elabPats := make([]typedast.Pattern, len(arm.Patterns))
		astMatrix[i] = arm.Patterns
		binds := map[string]types.Virtual{}
		for j, p := range arm.Patterns {
			if j >= len(armPatTypes) {
				break
			}
			b, elabPat := CheckPattern(ctx, armEnv, p, armPatTypes[j])
			elabPats[j] = elabPat
			for name, t := range b {
				binds[name] = t
			}
		}
		for name, t := range binds {
			armEnv = armEnv.AddVar(name, t)
		}
		var guardElab typedast.Node
		if arm.Guard != nil {
			guardElab = Check(ctx, armEnv, arm.Guard, types.VVariable{Name: types.UnitName})
		}
		bodyElab := Check(ctx, armEnv, arm.Body, bodyTyp)
		elabArms[i] = typedast.MatchArm{Patterns: elabPats, Guard: guardElab, Body: bodyElab}
	}

	perform := !ctx.Errored
	ctx.Errored = ctx.Errored || wasErrored

	scrutElabs := make([]typedast.Node, nScrut)
	for i, scrut := range expr.Scrutinees {
		t, elab := Infer(ctx, env, scrut)
		scrutElabs[i] = elab
		if i < len(armPatTypes) {
			unify.Subsumes(ctx, env, armPatTypes[i], t)
		}
	}

	exhaustive := true
	if perform && nArms > 0 {
		cols := make([]coverage.ColumnType, nScrut)
		for i, t := range armPatTypes {
			cols[i] = columnTypeOf(ctx, env, t)
		}
		result := coverage.Check(astMatrix, cols)
		if !result.Exhaustive {
			exhaustive = false
			ctx.Report(env, diag.New(diag.NonExhaustive, "non-exhaustive match").
				WithMeta("witness", witnessString(result.Witness)))
		}
	}

	return bodyTyp, typedast.When{
		Base: node(e, types.Quote(bodyTyp, env.Level)), Scrutinees: scrutElabs,
		Arms: elabArms, Exhaustive: exhaustive,
	}
}

func witnessString(w []ast.Pattern) string {
	if len(w) == 0 {
		return "_"
	}
	out := ""
	for i, p := range w {
		if i > 0 {
			out += ", "
		}
		out += patternString(p)
	}
	return out
}

func patternString(p ast.Pattern) string {
	switch pp := p.(type) {
	case ast.CtorPattern:
		s := pp.Name.Name
		if len(pp.Args) > 0 {
			s += "("
			for i, a := range pp.Args {
				if i > 0 {
					s += ", "
				}
				s += patternString(a)
			}
			s += ")"
		}
		return s
	case ast.WildcardPattern:
		return "_"
	case ast.VarPattern:
		return pp.Name
	case ast.TuplePattern:
		s := "("
		for i, e := range pp.Elems {
			if i > 0 {
				s += ", "
			}
			s += patternString(e)
		}
		return s + ")"
	default:
		return "_"
	}
}

// columnTypeOf derives coverage.ColumnType for a pattern-typed column,
// looking up the registry if the type resolves to a declared sum type.
func columnTypeOf(ctx *tenv.Context, env types.Env, t types.Virtual) coverage.ColumnType {
	t = types.Deref(t)
	switch v := t.(type) {
	case types.VVariable:
		return coverage.ColumnFromDataType(ctx.Modules, v.Name)
	case types.VApplication:
		if head, ok := types.Deref(v.Head).(types.VVariable); ok {
			return coverage.ColumnFromDataType(ctx.Modules, head.Name)
		}
		return coverage.ColumnOpaque()
	case types.VTuple:
		return coverage.ColumnFromTuple(len(v.Elems))
	default:
		return coverage.ColumnOpaque()
	}
}
