package types

// Eval converts a closed Real type into its evaluated Virtual form
// under env. Forall becomes a Closure capturing env; Bound(i) resolves
// against env.Types by converting the index back to a level.
func Eval(r Real, env Env) Virtual {
	switch t := r.(type) {
	case TypeT:
		return VType{}
	case ConstraintT:
		return VConstraint{}
	case Arrow:
		return VArrow{Dom: Eval(t.Dom, env), Eff: Eval(t.Eff, env), Cod: Eval(t.Cod, env)}
	case Forall:
		return VForall{Name: t.Name, Kind: t.Kind, Body: Closure{Env: env, Body: t.Body}}
	case Hole:
		return evalHole(t, env)
	case Variable:
		return VVariable{Name: t.Name}
	case Bound:
		level := ToLevel(env.Level, t.Index)
		return env.BinderAt(level).Type
	case Tuple:
		elems := make([]Virtual, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = Eval(e, env)
		}
		return VTuple{Elems: elems}
	case Application:
		return ApplyVirtual(Eval(t.Func, env), Eval(t.Arg, env))
	case Qualified:
		return VQualified{Ctx: Eval(t.Ctx, env), Typ: Eval(t.Typ, env)}
	case Extend:
		return VExtend{Label: t.Label, Typ: Eval(t.Typ, env), Tail: Eval(t.Tail, env)}
	case EmptyRow:
		return VEmptyRow{}
	case RowT:
		return VRow{Inner: t.Inner}
	case EffectT:
		return VEffect{}
	case ErrorT:
		return VError{}
	default:
		return VError{}
	}
}

// evalHole evaluates a Real Hole: it already references a live
// HoleCell (holes are never serialized through a name lookup), so
// evaluation is identity on the cell.
func evalHole(h Hole, _ Env) Virtual {
	return VHole{Cell: h.Cell}
}

// ApplyVirtual applies one Virtual value to another, building or
// extending a spine. It never runs a closure: any head other than a
// VApplication, a VForall included, just gains a one-argument spine.
// Instantiating a VForall goes through ApplyClosure instead.
func ApplyVirtual(f, arg Virtual) Virtual {
	switch head := f.(type) {
	case VApplication:
		args := make([]Virtual, len(head.Args)+1)
		copy(args, head.Args)
		args[len(head.Args)] = arg
		return VApplication{Head: head.Head, Args: args}
	default:
		return VApplication{Head: f, Args: []Virtual{arg}}
	}
}

// ApplyClosure runs a closure's body in its captured environment
// extended with the argument, which is how a Forall is instantiated or
// a let-bound pattern closure is applied — substitution by evaluation,
// never by textual substitution under a binder.
func ApplyClosure(c Closure, arg Virtual) Virtual {
	env := c.Env.Add("", arg, nil)
	return Eval(c.Body, env)
}
