// Package kind defines the kind grammar used to classify type-level
// expressions: Type, Effect, Row, and their arrows.
package kind

import "fmt"

// Kind classifies a type-level expression. Every type binder in a
// declaration carries one; binders without an explicit annotation
// default to Type (vulpi-typer/src/declare.rs).
type Kind interface {
	isKind()
	String() string
}

// Type is the kind of proper (value-classifying) types.
type Type struct{}

// Effect is the kind of a single effect label's operand, distinct from Row.
type Effect struct{}

// Row is the kind of an extensible row whose elements have kind Inner.
// A record row has Inner = Type; an effect row has Inner = Effect.
type Row struct {
	Inner Kind
}

// Arrow is a higher-kinded arrow, e.g. the kind of `Maybe` is
// Arrow{Type, Type}. Not present in the distilled grammar; added so
// type constructors of arity > 0 can be kind-checked against their
// applied arguments instead of being left untyped.
type Arrow struct {
	Dom Kind
	Cod Kind
}

func (Type) isKind()   {}
func (Effect) isKind() {}
func (Row) isKind()    {}
func (Arrow) isKind()  {}

func (Type) String() string   { return "Type" }
func (Effect) String() string { return "Effect" }
func (r Row) String() string  { return fmt.Sprintf("Row(%s)", r.Inner) }
func (a Arrow) String() string {
	return fmt.Sprintf("(%s -> %s)", a.Dom, a.Cod)
}

// RowOfType and RowOfEffect are the two row kinds actually constructed
// by the checker: record rows and effect rows.
func RowOfType() Kind   { return Row{Inner: Type{}} }
func RowOfEffect() Kind { return Row{Inner: Effect{}} }

// Equal compares two kinds structurally.
func Equal(a, b Kind) bool {
	switch x := a.(type) {
	case Type:
		_, ok := b.(Type)
		return ok
	case Effect:
		_, ok := b.(Effect)
		return ok
	case Row:
		y, ok := b.(Row)
		return ok && Equal(x.Inner, y.Inner)
	case Arrow:
		y, ok := b.(Arrow)
		return ok && Equal(x.Dom, y.Dom) && Equal(x.Cod, y.Cod)
	default:
		return false
	}
}

// FunctionKind builds k1 -> k2 -> ... -> kn -> result, the shape a
// declaration's binder list produces (spec.md 4.8 "Type declaration").
func FunctionKind(binders []Kind, result Kind) Kind {
	k := result
	for i := len(binders) - 1; i >= 0; i-- {
		k = Arrow{Dom: binders[i], Cod: k}
	}
	return k
}
