package types

// Quote converts a Virtual type back into a closed Real term at the
// given level. Closures are run by applying them to an abstract
// Bound(level) argument and quoting the result one level deeper;
// holes are forced — Filled quotes its payload, Empty/Row quotes as a
// reference to the same cell.
func Quote(v Virtual, level Level) Real {
	v = Deref(v)
	switch t := v.(type) {
	case VType:
		return TypeT{}
	case VConstraint:
		return ConstraintT{}
	case VArrow:
		return Arrow{Dom: Quote(t.Dom, level), Eff: Quote(t.Eff, level), Cod: Quote(t.Cod, level)}
	case VForall:
		skolem := VBound{Level: level}
		body := ApplyClosure(t.Body, skolem)
		return Forall{Name: t.Name, Kind: t.Kind, Body: Quote(body, level+1)}
	case VHole:
		return Hole{Cell: t.Cell}
	case VVariable:
		return Variable{Name: t.Name}
	case VBound:
		return Bound{Index: ToIndex(t.Level, level)}
	case VTuple:
		elems := make([]Real, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = Quote(e, level)
		}
		return Tuple{Elems: elems}
	case VApplication:
		r := Quote(t.Head, level)
		for _, a := range t.Args {
			r = Application{Func: r, Arg: Quote(a, level)}
		}
		return r
	case VQualified:
		return Qualified{Ctx: Quote(t.Ctx, level), Typ: Quote(t.Typ, level)}
	case VExtend:
		return Extend{Label: t.Label, Typ: Quote(t.Typ, level), Tail: Quote(t.Tail, level)}
	case VEmptyRow:
		return EmptyRow{}
	case VRow:
		return RowT{Inner: t.Inner}
	case VEffect:
		return EffectT{}
	case VError:
		return ErrorT{}
	default:
		return ErrorT{}
	}
}
