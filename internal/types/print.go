package types

import (
	"fmt"
	"strings"
)

// Print renders a Real type in the neutral ML-style surface syntax
// used throughout diagnostics and golden tests.
func Print(r Real) string {
	var b strings.Builder
	printReal(&b, r, false)
	return b.String()
}

func printReal(b *strings.Builder, r Real, paren bool) {
	switch t := r.(type) {
	case TypeT:
		b.WriteString("Type")
	case ConstraintT:
		b.WriteString("Constraint")
	case Arrow:
		open(b, paren)
		printReal(b, t.Dom, true)
		b.WriteString(" -> ")
		printReal(b, t.Cod, false)
		if _, empty := t.Eff.(EmptyRow); !empty {
			b.WriteString(" ! ")
			printReal(b, t.Eff, false)
		}
		closeParen(b, paren)
	case Forall:
		open(b, paren)
		fmt.Fprintf(b, "forall %s. ", t.Name)
		printReal(b, t.Body, false)
		closeParen(b, paren)
	case Hole:
		fmt.Fprintf(b, "?%s", t.Cell.Name())
	case Variable:
		b.WriteString(t.Name.Name)
	case Bound:
		fmt.Fprintf(b, "#%d", int(t.Index))
	case Tuple:
		b.WriteString("(")
		for i, e := range t.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			printReal(b, e, false)
		}
		b.WriteString(")")
	case Application:
		open(b, paren)
		printReal(b, t.Func, false)
		b.WriteString(" ")
		printReal(b, t.Arg, true)
		closeParen(b, paren)
	case Qualified:
		printReal(b, t.Ctx, true)
		b.WriteString(" => ")
		printReal(b, t.Typ, false)
	case Extend:
		b.WriteString("{")
		printRowBody(b, t)
		b.WriteString("}")
	case EmptyRow:
		b.WriteString("{}")
	case RowT:
		b.WriteString("Row")
	case EffectT:
		b.WriteString("Effect")
	case ErrorT:
		b.WriteString("<error>")
	default:
		b.WriteString("<?>")
	}
}

func printRowBody(b *strings.Builder, r Real) {
	ext, ok := r.(Extend)
	if !ok {
		return
	}
	fmt.Fprintf(b, "%s: ", ext.Label)
	printReal(b, ext.Typ, false)
	switch tail := ext.Tail.(type) {
	case EmptyRow:
	case Extend:
		b.WriteString(", ")
		printRowBody(b, tail)
	default:
		b.WriteString(" | ")
		printReal(b, tail, false)
	}
}

func open(b *strings.Builder, paren bool) {
	if paren {
		b.WriteString("(")
	}
}

func closeParen(b *strings.Builder, paren bool) {
	if paren {
		b.WriteString(")")
	}
}

// Common ground types, pre-populated in the registry under module "prim".
func GroundName(name string) QualifiedName { return QualifiedName{Module: "prim", Name: name} }

var (
	IntName    = GroundName("Int")
	StringName = GroundName("String")
	CharName   = GroundName("Char")
	FloatName  = GroundName("Float")
	UnitName   = GroundName("Unit")
)

// Error returns the Real error type.
func ErrorReal() Real { return ErrorT{} }

// ErrorVirtual returns the Virtual error type.
func ErrorVirtual() Virtual { return VError{} }
