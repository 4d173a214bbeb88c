// Package tenv holds the single long-lived, mutable Context that flows
// through a compilation unit, plus the instantiate/generalize and
// as_function operations that need it. internal/types.Env is the
// cheap, value-like environment extended on every binder; Context is
// the singleton (counter, diagnostics sink, module registry) next to
// it (vulpi-typer/src/context.rs).
package tenv

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/vulpine-lang/vulpityc/internal/diag"
	"github.com/vulpine-lang/vulpityc/internal/kind"
	"github.com/vulpine-lang/vulpityc/internal/registry"
	"github.com/vulpine-lang/vulpityc/internal/types"
)

// Context bundles a monotonic fresh-name counter, the diagnostic sink,
// and the module registry. One Context flows through an entire
// compilation unit (spec.md 3, "Context").
type Context struct {
	counter  uint64
	Sink     diag.Sink
	Modules  *registry.Registry
	Errored  bool
	// RunID identifies this compilation unit. It is generated per
	// Context and copied into subsumption probe contexts; Report does
	// not attach it to diagnostics.
	RunID uuid.UUID
}

// New constructs a Context with a fresh module registry and run ID.
func New(sink diag.Sink) *Context {
	return &Context{
		Sink:    sink,
		Modules: registry.New(),
		RunID:   uuid.New(),
	}
}

// NewWithRegistry reuses an existing registry, for multi-module runs
// where earlier units' declarations must remain visible.
func NewWithRegistry(sink diag.Sink, modules *registry.Registry) *Context {
	return &Context{Sink: sink, Modules: modules, RunID: uuid.New()}
}

// NewName returns a fresh, human-readable metavariable name such as
// "t12", used only for diagnostics — never for comparison.
func (c *Context) NewName(prefix string) string {
	n := atomic.AddUint64(&c.counter, 1)
	return fmt.Sprintf("%s%d", prefix, n)
}

// Hole allocates a fresh type hole scoped to env's current level.
func (c *Context) Hole(env types.Env, k kind.Kind) types.Virtual {
	return types.VHole{Cell: types.NewEmptyHole(c.NewName("t"), k, env.Level)}
}

// Lacks allocates a fresh row hole scoped to env's current level.
func (c *Context) Lacks(env types.Env) types.Virtual {
	return types.VHole{Cell: types.NewRowHole(c.NewName("rho"), env.Level)}
}

// Report sends a diagnostic to the sink and marks the context errored,
// which `when` inference consults to decide whether to run coverage
// (spec.md 4.5: "after no earlier errors, run coverage").
func (c *Context) Report(env types.Env, d *diag.Diagnostic) {
	c.Errored = true
	d.WithSpan(diag.Span{
		File:      env.Span.File,
		StartLine: env.Span.Line,
		StartCol:  env.Span.Column,
	})
	c.Sink.Report(d)
}

// AsFunction reduces typ to an Arrow, instantiating any leading Forall
// and, if typ is an unsolved Hole, inventing a fresh arrow under it by
// splitting it into dom/cod holes and filling it — so an application
// against a not-yet-determined callee still type-checks (spec.md 4.5
// "app").
func (c *Context) AsFunction(env types.Env, typ types.Virtual) (dom, eff, cod types.Virtual, ok bool) {
	typ = types.Deref(typ)
	switch t := typ.(type) {
	case types.VArrow:
		return t.Dom, t.Eff, t.Cod, true
	case types.VForall:
		return c.AsFunction(env, c.Instantiate(env, typ))
	case types.VHole:
		if _, isEmpty := t.Cell.State.(types.HoleEmpty); !isEmpty {
			return nil, nil, nil, false
		}
		dom := c.Hole(env, kind.Type{})
		eff := types.VEmptyRow{}
		cod := c.Hole(env, kind.Type{})
		t.Cell.Fill(types.VArrow{Dom: dom, Eff: eff, Cod: cod})
		return dom, eff, cod, true
	default:
		return nil, nil, nil, false
	}
}

// Instantiate peels leading Foralls off typ, supplying a fresh hole (or
// row hole, for row-kinded binders) per binder by applying the
// closure body (spec.md 4.4).
func (c *Context) Instantiate(env types.Env, typ types.Virtual) types.Virtual {
	typ = types.Deref(typ)
	forall, ok := typ.(types.VForall)
	if !ok {
		return typ
	}
	var arg types.Virtual
	if _, isRow := forall.Kind.(kind.Row); isRow {
		arg = c.Lacks(env)
	} else {
		arg = c.Hole(env, forall.Kind)
	}
	return c.Instantiate(env, types.ApplyClosure(forall.Body, arg))
}

// boundVar records one hole generalize collects, in discovery order.
type boundVar struct {
	cell *types.HoleCell
	name string
	kind kind.Kind
}

// Generalize quotes typ to Real at env's level, collects every unbound
// Empty/Row hole whose level is at least env.Level (i.e. not owned by
// a strictly enclosing scope), destructively replaces each with a
// fresh Bound index (outermost binder first), and wraps the result in
// one Forall per collected variable (spec.md 4.4).
func (c *Context) Generalize(env types.Env, typ types.Virtual) types.Virtual {
	real := types.Quote(typ, env.Level)
	var found []boundVar
	seen := map[*types.HoleCell]bool{}

	var walk func(r types.Real)
	walk = func(r types.Real) {
		switch t := r.(type) {
		case types.Hole:
			switch st := t.Cell.State.(type) {
			case types.HoleEmpty:
				if st.Level >= env.Level && !seen[t.Cell] {
					seen[t.Cell] = true
					found = append(found, boundVar{cell: t.Cell, name: st.Name, kind: st.Kind})
				}
			case types.HoleRow:
				if st.Level >= env.Level && !seen[t.Cell] {
					seen[t.Cell] = true
					found = append(found, boundVar{cell: t.Cell, name: st.Name, kind: kind.RowOfEffect()})
				}
			case types.HoleFilled:
				walk(types.Quote(st.Value, env.Level))
			}
		case types.Arrow:
			walk(t.Dom)
			walk(t.Eff)
			walk(t.Cod)
		case types.Forall:
			walk(t.Body)
		case types.Tuple:
			for _, e := range t.Elems {
				walk(e)
			}
		case types.Application:
			walk(t.Func)
			walk(t.Arg)
		case types.Qualified:
			walk(t.Ctx)
			walk(t.Typ)
		case types.Extend:
			walk(t.Typ)
			walk(t.Tail)
		}
	}
	walk(real)

	n := len(found)
	for i, bv := range found {
		// storedLevel is chosen so that quoting at env.Level (ToIndex =
		// current - base - 1) turns this Bound into De Bruijn index
		// n-1-i: the first-discovered variable (i=0) becomes the
		// outermost Forall and so gets the largest index once all n
		// binders are wrapped around it.
		storedLevel := env.Level - types.Level(n-i)
		bv.cell.Fill(types.VBound{Level: storedLevel})
	}

	result := types.Quote(typ, env.Level)
	for i := len(found) - 1; i >= 0; i-- {
		result = types.Forall{Name: found[i].name, Kind: found[i].kind, Body: result}
	}
	return types.Eval(result, env)
}
