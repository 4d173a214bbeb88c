package check

import (
	"github.com/vulpine-lang/vulpityc/internal/ast"
	"github.com/vulpine-lang/vulpityc/internal/diag"
	"github.com/vulpine-lang/vulpityc/internal/kind"
	"github.com/vulpine-lang/vulpityc/internal/tenv"
	"github.com/vulpine-lang/vulpityc/internal/typedast"
	"github.com/vulpine-lang/vulpityc/internal/types"
	"github.com/vulpine-lang/vulpityc/internal/unify"
)

// InferPattern produces a Virtual type and a symbol-to-type binding map
// for p, along with its elaborated counterpart (spec.md 4.5, "pattern
// inference produces both a type and a binding map").
func InferPattern(ctx *tenv.Context, env types.Env, p ast.Pattern) (types.Virtual, map[string]types.Virtual, typedast.Pattern) {
	switch pp := p.(type) {
	case ast.VarPattern:
		typ := ctx.Hole(env, kind.Type{})
		return typ, map[string]types.Virtual{pp.Name: typ}, typedast.VarPattern{Name: pp.Name, Type: types.Quote(typ, env.Level)}

	case ast.WildcardPattern:
		typ := ctx.Hole(env, kind.Type{})
		return typ, nil, typedast.WildcardPattern{Type: types.Quote(typ, env.Level)}

	case ast.LitPattern:
		name := litGroundName(pp.Kind)
		typ := types.Virtual(types.VVariable{Name: name})
		return typ, nil, typedast.LitPattern{Value: pp.Value, Type: types.Quote(typ, env.Level)}

	case ast.CtorPattern:
		return inferCtorPattern(ctx, env, pp)

	case ast.TuplePattern:
		elemTypes := make([]types.Virtual, len(pp.Elems))
		elemPats := make([]typedast.Pattern, len(pp.Elems))
		binds := map[string]types.Virtual{}
		for i, sub := range pp.Elems {
			t, b, elab := InferPattern(ctx, env, sub)
			elemTypes[i] = t
			elemPats[i] = elab
			for name, vt := range b {
				binds[name] = vt
			}
		}
		typ := types.Virtual(types.VTuple{Elems: elemTypes})
		return typ, binds, typedast.TuplePattern{Elems: elemPats, Type: types.Quote(typ, env.Level)}

	default:
		typ := ctx.Hole(env, kind.Type{})
		return typ, nil, typedast.WildcardPattern{Type: types.Quote(typ, env.Level)}
	}
}

// CheckPattern checks p against expected. Wildcards and variables always
// succeed (variables bind the expected type directly); literal and
// constructor patterns unify their ground/result type against expected
// instead of subsuming, since pattern types are invariant positions.
func CheckPattern(ctx *tenv.Context, env types.Env, p ast.Pattern, expected types.Virtual) (map[string]types.Virtual, typedast.Pattern) {
	switch pp := p.(type) {
	case ast.VarPattern:
		return map[string]types.Virtual{pp.Name: expected}, typedast.VarPattern{Name: pp.Name, Type: types.Quote(expected, env.Level)}

	case ast.WildcardPattern:
		return nil, typedast.WildcardPattern{Type: types.Quote(expected, env.Level)}

	case ast.LitPattern:
		name := litGroundName(pp.Kind)
		typ := types.Virtual(types.VVariable{Name: name})
		unify.Unify(ctx, env, typ, expected)
		return nil, typedast.LitPattern{Value: pp.Value, Type: types.Quote(expected, env.Level)}

	case ast.CtorPattern:
		return checkCtorPattern(ctx, env, pp, expected)

	case ast.TuplePattern:
		elems, ok := expectedTupleElems(ctx, env, expected, len(pp.Elems))
		elemPats := make([]typedast.Pattern, len(pp.Elems))
		binds := map[string]types.Virtual{}
		for i, sub := range pp.Elems {
			var elemTyp types.Virtual
			if ok {
				elemTyp = elems[i]
			} else {
				elemTyp = ctx.Hole(env, kind.Type{})
			}
			b, elab := CheckPattern(ctx, env, sub, elemTyp)
			elemPats[i] = elab
			for name, vt := range b {
				binds[name] = vt
			}
		}
		return binds, typedast.TuplePattern{Elems: elemPats, Type: types.Quote(expected, env.Level)}

	default:
		return nil, typedast.WildcardPattern{Type: types.Quote(expected, env.Level)}
	}
}

// expectedTupleElems derives per-element expected types for a tuple
// pattern: reuses expected's own element types when it already derefs
// to a VTuple of the right arity, otherwise splits it into fresh holes
// unified against a freshly built tuple.
func expectedTupleElems(ctx *tenv.Context, env types.Env, expected types.Virtual, n int) ([]types.Virtual, bool) {
	if vt, ok := types.Deref(expected).(types.VTuple); ok && len(vt.Elems) == n {
		return vt.Elems, true
	}
	elems := make([]types.Virtual, n)
	for i := range elems {
		elems[i] = ctx.Hole(env, kind.Type{})
	}
	unify.Unify(ctx, env, expected, types.VTuple{Elems: elems})
	return elems, true
}

// ctorArgsAndResult peels entry.Arity arrows off a fully instantiated
// constructor scheme, returning each argument's type and the final
// result type (the data type's Application).
func ctorArgsAndResult(instantiated types.Virtual, arity int) (args []types.Virtual, result types.Virtual) {
	cur := instantiated
	args = make([]types.Virtual, 0, arity)
	for i := 0; i < arity; i++ {
		arrow, ok := types.Deref(cur).(types.VArrow)
		if !ok {
			break
		}
		args = append(args, arrow.Dom)
		cur = arrow.Cod
	}
	return args, cur
}

func inferCtorPattern(ctx *tenv.Context, env types.Env, pp ast.CtorPattern) (types.Virtual, map[string]types.Virtual, typedast.Pattern) {
	entry, ok := ctx.Modules.LookupConstructor(toRegistryName(pp.Name))
	if !ok {
		ctx.Report(env, diag.New(diag.NotFoundField, "unknown constructor "+pp.Name.String()))
		return types.ErrorVirtual(), nil, typedast.CtorPattern{Name: toRegistryName(pp.Name)}
	}
	if len(pp.Args) != entry.Arity {
		ctx.Report(env, diag.New(diag.MismatchArityInPattern, "constructor arity mismatch for "+pp.Name.String()))
	}
	instantiated := ctx.Instantiate(env, types.Eval(entry.Scheme, env))
	args, result := ctorArgsAndResult(instantiated, entry.Arity)

	argPats := make([]typedast.Pattern, 0, len(pp.Args))
	binds := map[string]types.Virtual{}
	for i, sub := range pp.Args {
		var argTyp types.Virtual
		if i < len(args) {
			argTyp = args[i]
		} else {
			argTyp = ctx.Hole(env, kind.Type{})
		}
		b, elab := CheckPattern(ctx, env, sub, argTyp)
		argPats = append(argPats, elab)
		for name, vt := range b {
			binds[name] = vt
		}
	}
	return result, binds, typedast.CtorPattern{Name: toRegistryName(pp.Name), Args: argPats, Type: types.Quote(result, env.Level)}
}

func checkCtorPattern(ctx *tenv.Context, env types.Env, pp ast.CtorPattern, expected types.Virtual) (map[string]types.Virtual, typedast.Pattern) {
	entry, ok := ctx.Modules.LookupConstructor(toRegistryName(pp.Name))
	if !ok {
		ctx.Report(env, diag.New(diag.NotFoundField, "unknown constructor "+pp.Name.String()))
		return nil, typedast.CtorPattern{Name: toRegistryName(pp.Name)}
	}
	if len(pp.Args) != entry.Arity {
		ctx.Report(env, diag.New(diag.MismatchArityInPattern, "constructor arity mismatch for "+pp.Name.String()))
	}

	var instantiated types.Virtual
	if _, spineArgs, ok := applicationSpine(expected); ok {
		instantiated = instantiateScheme(entry.Scheme, env, spineArgs)
	} else {
		instantiated = ctx.Instantiate(env, types.Eval(entry.Scheme, env))
	}
	args, result := ctorArgsAndResult(instantiated, entry.Arity)
	unify.Unify(ctx, env, result, expected)

	argPats := make([]typedast.Pattern, 0, len(pp.Args))
	binds := map[string]types.Virtual{}
	for i, sub := range pp.Args {
		var argTyp types.Virtual
		if i < len(args) {
			argTyp = args[i]
		} else {
			argTyp = ctx.Hole(env, kind.Type{})
		}
		b, elab := CheckPattern(ctx, env, sub, argTyp)
		argPats = append(argPats, elab)
		for name, vt := range b {
			binds[name] = vt
		}
	}
	return binds, typedast.CtorPattern{Name: toRegistryName(pp.Name), Args: argPats, Type: types.Quote(expected, env.Level)}
}
