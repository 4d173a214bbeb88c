package check

import (
	"github.com/vulpine-lang/vulpityc/internal/ast"
	"github.com/vulpine-lang/vulpityc/internal/diag"
	"github.com/vulpine-lang/vulpityc/internal/kind"
	"github.com/vulpine-lang/vulpityc/internal/registry"
	"github.com/vulpine-lang/vulpityc/internal/tenv"
	"github.com/vulpine-lang/vulpityc/internal/typedast"
	"github.com/vulpine-lang/vulpityc/internal/types"
	"github.com/vulpine-lang/vulpityc/internal/unify"
)

// pendingLet is what declareLet leaves behind for defineLet/finalizeLet
// to pick up: fresh, shared metavariable cells the body's elaboration
// unifies into. finalizeLet reassembles the let's arrow from these
// holes before generalizing it (spec.md 4.7-4.8, "Let").
type pendingLet struct {
	decl       *ast.LetDecl
	paramHoles []types.Virtual
	effHole    types.Virtual
	retHole    types.Virtual
}

// Run declares and defines an entire module tree: submodules are
// declared and defined before their parent's own definitions run
// (spec.md 4.7).
func Run(ctx *tenv.Context, mod *ast.Module) *typedast.Program {
	prog := &typedast.Program{Decls: map[string]typedast.Node{}}
	runModule(ctx, mod, prog)
	return prog
}

func runModule(ctx *tenv.Context, mod *ast.Module, prog *typedast.Program) {
	for _, sub := range mod.Submodules {
		runModule(ctx, sub, prog)
	}

	m := ctx.Modules.Module(mod.Path)
	pending := map[string]*pendingLet{}

	for _, d := range mod.Decls {
		switch decl := d.(type) {
		case ast.TypeDecl:
			declareType(ctx, mod.Path, m, decl)
		case ast.EffectDecl:
			declareEffect(ctx, mod.Path, m, decl)
		case ast.ExternalDecl:
			declareExternal(ctx, mod.Path, m, decl)
		case ast.LetDecl:
			declLocal := decl
			pending[decl.Name] = declareLet(ctx, m, &declLocal)
		}
	}

	for _, d := range mod.Decls {
		letDecl, ok := d.(ast.LetDecl)
		if !ok {
			continue
		}
		pend := pending[letDecl.Name]
		prog.Decls[mod.Path+"."+letDecl.Name] = defineLet(ctx, pend)
	}

	for name, pend := range pending {
		finalizeLet(ctx, m, name, pend)
	}
}

// --- type declarations ---

func evalBinderKind(t ast.TypeExpr) kind.Kind {
	if t == nil {
		return kind.Type{}
	}
	if ctor, ok := t.(ast.TypeCtor); ok && ctor.Name.Name == "Effect" {
		return kind.Effect{}
	}
	return kind.Type{}
}

func binderNames(bs []ast.Binder) []string {
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.Name
	}
	return names
}

func binderKinds(bs []ast.Binder) []kind.Kind {
	ks := make([]kind.Kind, len(bs))
	for i, b := range bs {
		ks[i] = evalBinderKind(b.KindAnno)
	}
	return ks
}

// idxOf returns the De Bruijn index for name within scope, where
// scope[0] is the outermost binder (the convention tenv.Generalize and
// evalForallExpr also use: first-listed binder ends up outermost, so
// its index is the largest).
func idxOf(scope []string, name string) (types.Index, bool) {
	for i, n := range scope {
		if n == name {
			return types.Index(len(scope) - 1 - i), true
		}
	}
	return 0, false
}

func wrapForalls(body types.Real, scope []string, k kind.Kind) types.Real {
	for i := len(scope) - 1; i >= 0; i-- {
		body = types.Forall{Name: scope[i], Kind: k, Body: body}
	}
	return body
}

func closedEffectRow(labels []string) types.Real {
	var row types.Real = types.EmptyRow{}
	for i := len(labels) - 1; i >= 0; i-- {
		row = types.Extend{Label: labels[i], Typ: types.EffectT{}, Tail: row}
	}
	return row
}

// buildReal hand-constructs a closed Real term from a surface TypeExpr,
// resolving TypeVar occurrences against scope by name. Used at declare
// time for signatures whose binders are already known (constructors,
// fields, effect operations), where no live Context/Env is available
// yet to drive the Hole-based evalTypeExpr path.
func buildReal(te ast.TypeExpr, scope []string) types.Real {
	switch t := te.(type) {
	case ast.TypeVar:
		if idx, ok := idxOf(scope, t.Name); ok {
			return types.Bound{Index: idx}
		}
		return types.ErrorT{}
	case ast.TypeCtor:
		return types.Variable{Name: toRegistryName(t.Name)}
	case ast.TypeApp:
		return types.Application{Func: buildReal(t.Func, scope), Arg: buildReal(t.Arg, scope)}
	case ast.TypeArrow:
		return types.Arrow{Dom: buildReal(t.Dom, scope), Eff: closedEffectRow(t.Eff), Cod: buildReal(t.Cod, scope)}
	case ast.TypeForall:
		inner := append(append([]string{}, scope...), t.Binders...)
		return wrapForalls(buildReal(t.Body, inner), t.Binders, kind.Type{})
	case ast.TypeTuple:
		elems := make([]types.Real, len(t.Elems))
		for i, el := range t.Elems {
			elems[i] = buildReal(el, scope)
		}
		return types.Tuple{Elems: elems}
	case ast.TypeRecordRow:
		var tail types.Real = types.EmptyRow{}
		if idx, ok := idxOf(scope, t.Tail); ok {
			tail = types.Bound{Index: idx}
		}
		row := tail
		for i := len(t.Fields) - 1; i >= 0; i-- {
			f := t.Fields[i]
			row = types.Extend{Label: f.Name, Typ: buildReal(f.Type, scope), Tail: row}
		}
		return row
	default:
		return types.ErrorT{}
	}
}

func dataRef(modPath, name string, scope []string) types.Real {
	var ret types.Real = types.Variable{Name: types.QualifiedName{Module: modPath, Name: name}}
	for i := range scope {
		ret = types.Application{Func: ret, Arg: types.Bound{Index: types.Index(len(scope) - 1 - i)}}
	}
	return ret
}

func declareType(ctx *tenv.Context, modPath string, m *registry.Module, decl ast.TypeDecl) {
	scope := binderNames(decl.Binders)
	ks := binderKinds(decl.Binders)
	typeKind := kind.FunctionKind(ks, kind.Type{})

	var defKind registry.TypeDefKind
	var fieldOrder []string
	switch decl.Def {
	case ast.DefEnum:
		defKind = registry.DefEnum
	case ast.DefRecord:
		defKind = registry.DefRecord
		for _, f := range decl.Fields {
			fieldOrder = append(fieldOrder, f.Name)
		}
	case ast.DefSynonym:
		defKind = registry.DefSynonym
	default:
		defKind = registry.DefAbstract
	}

	m.Types[decl.Name] = &registry.TypeEntry{Kind: typeKind, Binders: scope, Def: defKind, FieldOrder: fieldOrder}
	ret := dataRef(modPath, decl.Name, scope)

	switch decl.Def {
	case ast.DefEnum:
		for tag, ctor := range decl.Constructors {
			args := make([]types.Real, len(ctor.Args))
			for i, a := range ctor.Args {
				args[i] = buildReal(a, scope)
			}
			monotype := ret
			for i := len(args) - 1; i >= 0; i-- {
				monotype = types.Arrow{Dom: args[i], Eff: types.EmptyRow{}, Cod: monotype}
			}
			scheme := wrapForalls(monotype, scope, kind.Type{})
			m.Constructors[ctor.Name] = &registry.ConstructorEntry{
				Scheme: scheme, Arity: len(ctor.Args), Parent: decl.Name, Tag: tag,
			}
		}
	case ast.DefRecord:
		for _, f := range decl.Fields {
			fieldReal := buildReal(f.Type, scope)
			scheme := wrapForalls(fieldReal, scope, kind.Type{})
			m.Fields[f.Name] = &registry.FieldEntry{Scheme: scheme, Parent: decl.Name}
		}
	case ast.DefSynonym:
		// Synonyms are recorded by name, kind and binders only: the
		// right-hand side is not stored, and uses of a synonym are not
		// expanded.
	}
}

func declareEffect(ctx *tenv.Context, modPath string, m *registry.Module, decl ast.EffectDecl) {
	params := binderNames(decl.Binders)
	ks := binderKinds(decl.Binders)
	m.Types[decl.Name] = &registry.TypeEntry{Kind: kind.FunctionKind(ks, kind.Effect{}), Binders: params, Def: registry.DefEffect}

	label := registry.String(types.QualifiedName{Module: modPath, Name: decl.Name})
	ops := map[string]types.Real{}

	for _, op := range decl.Operations {
		if len(op.Args) == 0 {
			ctx.Report(types.NewEnv(), diag.New(diag.AtLeastOneArgument, "effect operation "+op.Name+" needs at least one argument"))
			continue
		}
		scope := append([]string{"row"}, params...)
		last := len(op.Args) - 1
		rowIdx, _ := idxOf(scope, "row")

		cod := buildReal(op.Ret, scope)
		effRow := types.Extend{Label: label, Typ: types.EffectT{}, Tail: types.Bound{Index: rowIdx}}
		whole := types.Arrow{Dom: buildReal(op.Args[last], scope), Eff: effRow, Cod: cod}
		for i := last - 1; i >= 0; i-- {
			whole = types.Arrow{Dom: buildReal(op.Args[i], scope), Eff: types.EmptyRow{}, Cod: whole}
		}

		scheme := wrapForalls(whole, scope, kind.Type{})
		ops[op.Name] = scheme
		m.Variables[op.Name] = &registry.VariableEntry{Scheme: scheme}
	}
	m.Effects[decl.Name] = &registry.EffectEntry{Operations: ops}
}

func collectFreeVars(te ast.TypeExpr, seen map[string]bool, order *[]string) {
	switch t := te.(type) {
	case ast.TypeVar:
		if !seen[t.Name] {
			seen[t.Name] = true
			*order = append(*order, t.Name)
		}
	case ast.TypeApp:
		collectFreeVars(t.Func, seen, order)
		collectFreeVars(t.Arg, seen, order)
	case ast.TypeArrow:
		collectFreeVars(t.Dom, seen, order)
		collectFreeVars(t.Cod, seen, order)
	case ast.TypeForall:
		collectFreeVars(t.Body, seen, order)
	case ast.TypeTuple:
		for _, el := range t.Elems {
			collectFreeVars(el, seen, order)
		}
	case ast.TypeRecordRow:
		for _, f := range t.Fields {
			collectFreeVars(f.Type, seen, order)
		}
	}
}

func declareExternal(ctx *tenv.Context, modPath string, m *registry.Module, decl ast.ExternalDecl) {
	seen := map[string]bool{}
	var order []string
	collectFreeVars(decl.Type, seen, &order)
	real := buildReal(decl.Type, order)
	scheme := wrapForalls(real, order, kind.Type{})
	m.Variables[decl.Name] = &registry.VariableEntry{Scheme: scheme, UnboundTypeVars: order}
}

// declareLet allocates the fresh, shared metavariables a let binding's
// signature is built from, and registers a tentative (ungeneralized)
// scheme so mutually recursive calls within the same module resolve
// during define (spec.md 4.8, non-goal: "no mutual-recursion inference
// beyond two-pass declare/define").
func declareLet(ctx *tenv.Context, m *registry.Module, decl *ast.LetDecl) *pendingLet {
	env := types.NewEnv()
	paramHoles := make([]types.Virtual, len(decl.Params))
	for i := range paramHoles {
		paramHoles[i] = ctx.Hole(env, kind.Type{})
	}

	var retHole types.Virtual
	if decl.ReturnAnno != nil {
		retHole = evalTypeExpr(ctx, env, decl.ReturnAnno)
	} else {
		retHole = ctx.Hole(env, kind.Type{})
	}

	var effHole types.Virtual
	if len(decl.Params) > 0 {
		if len(decl.EffectAnno) > 0 {
			effHole = buildEffectRow(ctx, env, decl.EffectAnno)
		} else {
			effHole = types.VEmptyRow{}
		}
	}

	whole := retHole
	if len(decl.Params) > 0 {
		last := len(paramHoles) - 1
		whole = types.VArrow{Dom: paramHoles[last], Eff: effHole, Cod: retHole}
		for i := last - 1; i >= 0; i-- {
			whole = types.VArrow{Dom: paramHoles[i], Eff: types.VEmptyRow{}, Cod: whole}
		}
	}

	m.Variables[decl.Name] = &registry.VariableEntry{Scheme: types.Quote(whole, env.Level)}
	return &pendingLet{decl: decl, paramHoles: paramHoles, effHole: effHole, retHole: retHole}
}

// defineLet elaborates a let's body against the holes declareLet
// allocated, unifying the inferred body type into retHole.
func defineLet(ctx *tenv.Context, pend *pendingLet) typedast.Node {
	decl := pend.decl
	env := types.NewEnv().SetSpan(toTypesPos(decl.Pos))

	elabPats := make([]typedast.Pattern, len(decl.Params))
	bodyEnv := env
	for i, p := range decl.Params {
		binds, elabPat := CheckPattern(ctx, bodyEnv, p, pend.paramHoles[i])
		elabPats[i] = elabPat
		for name, t := range binds {
			bodyEnv = bodyEnv.AddVar(name, t)
		}
	}

	bodyTyp, bodyElab := Infer(ctx, bodyEnv, decl.Body)
	unify.Subsumes(ctx, bodyEnv, bodyTyp, pend.retHole)

	node := bodyElab
	for i := len(decl.Params) - 1; i >= 0; i-- {
		paramName := patternLeadName(elabPats[i])
		node = typedast.Lambda{
			Base:      typedast.Base{Pos: decl.Pos, Type: types.Quote(pend.paramHoles[i], env.Level)},
			ParamName: paramName,
			ParamType: types.Quote(pend.paramHoles[i], env.Level),
			Body:      node,
		}
	}
	return node
}

// finalizeLet generalizes a let's fully-defined type over every
// metavariable its body left unresolved at or above the top level, and
// installs the closed scheme in the registry (spec.md 4.8, "wraps in
// Forall per bound variable").
func finalizeLet(ctx *tenv.Context, m *registry.Module, name string, pend *pendingLet) {
	env := types.NewEnv()
	whole := pend.retHole
	if len(pend.paramHoles) > 0 {
		last := len(pend.paramHoles) - 1
		whole = types.VArrow{Dom: pend.paramHoles[last], Eff: pend.effHole, Cod: pend.retHole}
		for i := last - 1; i >= 0; i-- {
			whole = types.VArrow{Dom: pend.paramHoles[i], Eff: types.VEmptyRow{}, Cod: whole}
		}
	}
	scheme := ctx.Generalize(env, whole)
	m.Variables[name] = &registry.VariableEntry{Scheme: types.Quote(scheme, env.Level)}
}
