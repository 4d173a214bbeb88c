package check

import (
	"sort"

	"github.com/vulpine-lang/vulpityc/internal/ast"
	"github.com/vulpine-lang/vulpityc/internal/diag"
	"github.com/vulpine-lang/vulpityc/internal/kind"
	"github.com/vulpine-lang/vulpityc/internal/registry"
	"github.com/vulpine-lang/vulpityc/internal/tenv"
	"github.com/vulpine-lang/vulpityc/internal/typedast"
	"github.com/vulpine-lang/vulpityc/internal/types"
)

// instantiateParams allocates one fresh hole per declared type binder
// of a record/data declaration, used so every field of the same record
// instance shares the same parameter metavariables.
func instantiateParams(ctx *tenv.Context, env types.Env, entry *registry.TypeEntry) []types.Virtual {
	params := make([]types.Virtual, len(entry.Binders))
	for i := range params {
		params[i] = ctx.Hole(env, kind.Type{})
	}
	return params
}

// instantiateScheme peels len(args) leading Foralls off scheme and
// applies args in order, instead of inventing fresh holes — used so a
// field's declared `forall params. field_type` shares the record
// instance's own parameter holes.
func instantiateScheme(scheme types.Real, env types.Env, args []types.Virtual) types.Virtual {
	v := types.Eval(scheme, env)
	for _, a := range args {
		forall, ok := types.Deref(v).(types.VForall)
		if !ok {
			break
		}
		v = types.ApplyClosure(forall.Body, a)
	}
	return v
}

func applicationSpine(v types.Virtual) (types.QualifiedName, []types.Virtual, bool) {
	v = types.Deref(v)
	switch t := v.(type) {
	case types.VVariable:
		return t.Name, nil, true
	case types.VApplication:
		head := types.Deref(t.Head)
		if vv, ok := head.(types.VVariable); ok {
			return vv.Name, t.Args, true
		}
		return types.QualifiedName{}, nil, false
	default:
		return types.QualifiedName{}, nil, false
	}
}

func buildApplication(name types.QualifiedName, args []types.Virtual) types.Virtual {
	if len(args) == 0 {
		return types.VVariable{Name: name}
	}
	return types.VApplication{Head: types.VVariable{Name: name}, Args: args}
}

func inferRecordExpr(ctx *tenv.Context, env types.Env, expr ast.RecordExpr, e ast.Expr) (types.Virtual, typedast.Node) {
	typeName := toRegistryName(expr.Type)
	entry, ok := ctx.Modules.LookupType(typeName)
	if !ok || entry.Def != registry.DefRecord {
		ctx.Report(env, diag.New(diag.NotARecord, "not a record type: "+expr.Type.String()))
		return types.ErrorVirtual(), typedast.ErrorNode{Base: node(e, types.ErrorReal())}
	}
	params := instantiateParams(ctx, env, entry)

	provided := map[string]bool{}
	fields := make([]typedast.RecordField, 0, len(expr.Fields))
	for _, f := range expr.Fields {
		if provided[f.Name] {
			ctx.Report(env, diag.New(diag.DuplicatedField, "duplicated field "+f.Name))
			continue
		}
		provided[f.Name] = true
		fieldEntry, ok := ctx.Modules.LookupField(types.QualifiedName{Module: typeName.Module, Name: f.Name})
		if !ok {
			ctx.Report(env, diag.New(diag.NotFoundField, "unknown field "+f.Name))
			continue
		}
		expected := instantiateScheme(fieldEntry.Scheme, env, params)
		elab := Check(ctx, env, f.Value, expected)
		fields = append(fields, typedast.RecordField{Name: f.Name, Value: elab})
	}
	pos := map[string]int{}
	for i, name := range entry.FieldOrder {
		pos[name] = i
	}
	sort.SliceStable(fields, func(i, j int) bool { return pos[fields[i].Name] < pos[fields[j].Name] })
	for _, want := range entry.FieldOrder {
		if !provided[want] {
			ctx.Report(env, diag.New(diag.MissingField, "missing field "+want).WithMeta("field", want))
		}
	}

	typ := buildApplication(typeName, params)
	return typ, typedast.RecordExpr{Base: node(e, types.Quote(typ, env.Level)), TypeName: expr.Type, Fields: fields}
}

func inferRecordUpdate(ctx *tenv.Context, env types.Env, expr ast.RecordUpdate, e ast.Expr) (types.Virtual, typedast.Node) {
	baseTyp, baseElab := Infer(ctx, env, expr.Base)
	name, args, ok := applicationSpine(baseTyp)
	if !ok {
		ctx.Report(env, diag.New(diag.NotARecord, "update target is not a record"))
		return types.ErrorVirtual(), typedast.ErrorNode{Base: node(e, types.ErrorReal())}
	}
	fields := make([]typedast.RecordField, 0, len(expr.Fields))
	for _, f := range expr.Fields {
		fieldEntry, ok := ctx.Modules.LookupField(types.QualifiedName{Module: name.Module, Name: f.Name})
		if !ok {
			ctx.Report(env, diag.New(diag.NotFoundField, "unknown field "+f.Name))
			continue
		}
		expected := instantiateScheme(fieldEntry.Scheme, env, args)
		elab := Check(ctx, env, f.Value, expected)
		fields = append(fields, typedast.RecordField{Name: f.Name, Value: elab})
	}
	return baseTyp, typedast.RecordUpdate{
		Base: node(e, types.Quote(baseTyp, env.Level)), BaseExpr: baseElab, Fields: fields,
	}
}

func inferProject(ctx *tenv.Context, env types.Env, expr ast.Project, e ast.Expr) (types.Virtual, typedast.Node) {
	recTyp, recElab := Infer(ctx, env, expr.Record)
	name, args, ok := applicationSpine(recTyp)
	if !ok {
		ctx.Report(env, diag.New(diag.NotARecord, "projection target is not a record"))
		return types.ErrorVirtual(), typedast.ErrorNode{Base: node(e, types.ErrorReal())}
	}
	fieldEntry, ok := ctx.Modules.LookupField(types.QualifiedName{Module: name.Module, Name: expr.Field})
	if !ok {
		ctx.Report(env, diag.New(diag.NotFoundField, "unknown field "+expr.Field))
		return types.ErrorVirtual(), typedast.ErrorNode{Base: node(e, types.ErrorReal())}
	}
	fieldTyp := instantiateScheme(fieldEntry.Scheme, env, args)
	return fieldTyp, typedast.Project{
		Base: node(e, types.Quote(fieldTyp, env.Level)), Record: recElab, Field: expr.Field,
	}
}
