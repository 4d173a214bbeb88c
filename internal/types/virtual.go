package types

import "github.com/vulpine-lang/vulpityc/internal/kind"

// Virtual is the evaluated view of a type: De Bruijn levels, closures
// over Forall bodies, applications represented as spines. It is the
// only representation unification and checking operate on.
type Virtual interface {
	isVirtual()
}

type VType struct{}
type VConstraint struct{}

type VArrow struct {
	Dom Virtual
	Eff Virtual
	Cod Virtual
}

// Closure pairs a captured Env with the Forall's Real body; applying
// it extends the captured env with the argument and evaluates the
// body, which is how substitution happens without ever walking a Real
// term's binders textually.
type Closure struct {
	Env  Env
	Body Real
}

type VForall struct {
	Name string
	Kind kind.Kind
	Body Closure
}

type VHole struct {
	Cell *HoleCell
}

type VVariable struct {
	Name QualifiedName
}

type VBound struct {
	Level Level
}

type VTuple struct {
	Elems []Virtual
}

// VApplication is a spine: a head (never itself an Application) plus
// accumulated arguments, so repeated application doesn't nest.
type VApplication struct {
	Head Virtual
	Args []Virtual
}

type VQualified struct {
	Ctx Virtual
	Typ Virtual
}

type VExtend struct {
	Label string
	Typ   Virtual
	Tail  Virtual
}

type VEmptyRow struct{}

type VRow struct{ Inner kind.Kind }
type VEffect struct{}

// VError is the virtual counterpart of ErrorT; produced whenever an
// inference step already reported a diagnostic.
type VError struct{}

func (VType) isVirtual()        {}
func (VConstraint) isVirtual()  {}
func (VArrow) isVirtual()       {}
func (VForall) isVirtual()      {}
func (VHole) isVirtual()        {}
func (VVariable) isVirtual()    {}
func (VBound) isVirtual()       {}
func (VTuple) isVirtual()       {}
func (VApplication) isVirtual() {}
func (VQualified) isVirtual()   {}
func (VExtend) isVirtual()      {}
func (VEmptyRow) isVirtual()    {}
func (VRow) isVirtual()         {}
func (VEffect) isVirtual()      {}
func (VError) isVirtual()       {}

// IsVError reports whether v is the error type.
func IsVError(v Virtual) bool {
	_, ok := v.(VError)
	return ok
}

// Pos is a minimal source position, duplicated (not imported) from the
// AST layer so this package has no dependency on ast — Env only needs
// to carry a span for diagnostic attribution, not to understand syntax.
type Pos struct {
	File   string
	Line   int
	Column int
}

// Binder is one entry of Env's level-indexed stack: a bound variable's
// name, its (possibly abstract) type, and its kind.
type Binder struct {
	Name string
	Type Virtual
	Kind kind.Kind
}

// Env is the immutable-by-clone structure threaded through checking.
type Env struct {
	// Types is the binder stack, indexed by Level.
	Types []Binder
	// Vars maps a local term variable to its Virtual type.
	Vars map[string]Virtual
	// Level is len(Types); kept explicit for cheap access.
	Level Level
	// Span is the current source position, for error attribution.
	Span Pos
}

// NewEnv returns an empty environment.
func NewEnv() Env {
	return Env{Vars: map[string]Virtual{}}
}

// Add introduces an abstract bound variable at the current level,
// returning a new Env one level deeper. Used when entering a binder
// whose value is not yet known (e.g. skolemization), and by
// ApplyClosure to bind a closure's own binder.
func (e Env) Add(name string, typ Virtual, k kind.Kind) Env {
	types := make([]Binder, len(e.Types)+1)
	copy(types, e.Types)
	types[len(e.Types)] = Binder{Name: name, Type: typ, Kind: k}
	return Env{Types: types, Vars: e.Vars, Level: e.Level + 1, Span: e.Span}
}

// AddAtEnd appends a binder without bumping Level semantics beyond the
// natural len(Types); kept distinct from Add for call sites that build
// a binder list before committing a new scope (declare.rs style).
func (e Env) AddAtEnd(name string, typ Virtual, k kind.Kind) Env {
	return e.Add(name, typ, k)
}

// Define installs a concrete Virtual value for the variable named
// name, without touching the binder stack; AddVar is built on it.
func (e Env) Define(name string, val Virtual) Env {
	vars := make(map[string]Virtual, len(e.Vars)+1)
	for k, v := range e.Vars {
		vars[k] = v
	}
	vars[name] = val
	return Env{Types: e.Types, Vars: vars, Level: e.Level, Span: e.Span}
}

// AddVar binds a local term variable (let/lambda pattern binding) to a
// Virtual type, without touching the binder stack.
func (e Env) AddVar(name string, typ Virtual) Env {
	return e.Define(name, typ)
}

// Lookup returns the Virtual type bound to a term variable.
func (e Env) Lookup(name string) (Virtual, bool) {
	v, ok := e.Vars[name]
	return v, ok
}

// SetSpan returns a copy of e with its current span updated.
func (e Env) SetSpan(p Pos) Env {
	e.Span = p
	return e
}

// BinderAt returns the binder captured at the given level.
func (e Env) BinderAt(l Level) Binder {
	return e.Types[int(l)]
}
