package types

import "github.com/vulpine-lang/vulpityc/internal/kind"

// Real is a syntax-like, closed, first-order representation of a type:
// De Bruijn indices for bound variables, no closures, safe to store in
// the elaborated tree or a diagnostic.
type Real interface {
	isReal()
}

// TypeT is the ground "kind of proper types" reified as a type; Eval
// maps it to VType and Quote maps VType back to it.
type TypeT struct{}

// ConstraintT marks the head of a qualified (dictionary) type.
type ConstraintT struct{}

// Arrow is a function type with an effect row threaded through the call.
type Arrow struct {
	Dom Real
	Eff Real
	Cod Real
}

// Forall is a polymorphic binder. Body is a De-Bruijn-indexed Real term;
// it is never substituted into textually — eval turns it into a Closure.
type Forall struct {
	Name string
	Kind kind.Kind
	Body Real
}

// Hole is a reference to a shared mutable metavariable cell.
type Hole struct {
	Cell *HoleCell
}

// QualifiedName is a fully qualified nominal name: a data type, a
// constructor, an effect, or a top-level let.
type QualifiedName struct {
	Module string
	Name   string
}

// Variable is a nominal, user-named type (a declared data/effect type).
type Variable struct {
	Name QualifiedName
}

// Bound is a De Bruijn index reference to an enclosing binder.
type Bound struct {
	Index Index
}

// Tuple is a fixed-width product type.
type Tuple struct {
	Elems []Real
}

// Application is type-level application, e.g. `Maybe Int`.
type Application struct {
	Func Real
	Arg  Real
}

// Qualified pairs a constraint context with a type, e.g. `Num a => a -> a`.
type Qualified struct {
	Ctx Real
	Typ Real
}

// Extend is one row cell: a label, its payload type, and the rest of
// the row. Used for both record rows (payload kind Type) and effect
// rows (payload kind Effect).
type Extend struct {
	Label string
	Typ   Real
	Tail  Real
}

// EmptyRow closes a row: no further labels.
type EmptyRow struct{}

// RowT and EffectT are leaf markers reifying the Row/Effect kinds as
// ground types. EffectT is the payload type of each label in an effect
// row; a Forall's binder kind is kept in Forall.Kind, not as one of these.
type RowT struct{ Inner kind.Kind }
type EffectT struct{}

// ErrorT is the type assigned to any elaborated node whose checking
// already produced a diagnostic; it unifies/subsumes with anything.
type ErrorT struct{}

func (TypeT) isReal()       {}
func (ConstraintT) isReal() {}
func (Arrow) isReal()       {}
func (Forall) isReal()      {}
func (Hole) isReal()        {}
func (Variable) isReal()    {}
func (Bound) isReal()       {}
func (Tuple) isReal()       {}
func (Application) isReal() {}
func (Qualified) isReal()   {}
func (Extend) isReal()      {}
func (EmptyRow) isReal()    {}
func (RowT) isReal()        {}
func (EffectT) isReal()     {}
func (ErrorT) isReal()      {}

// IsError reports whether r is the error type.
func IsError(r Real) bool {
	_, ok := r.(ErrorT)
	return ok
}
