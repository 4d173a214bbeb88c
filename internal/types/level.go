package types

// Level counts binders from the outermost one in; it is stable under
// further scope extension, which is why holes and environments key on
// it instead of on Index (vulpi-typer/src/type/mod.rs).
type Level int

// Index counts binders from the innermost one out; it is what a closed
// Real type stores for a bound variable.
type Index int

// ToIndex converts a Level captured at some enclosing scope into the
// Index it denotes when read back at the current (deeper or equal)
// level. This is the one arithmetic fact in the whole system.
func ToIndex(base, current Level) Index {
	return Index(int(current) - int(base) - 1)
}

// ToLevel is the inverse: given the current scope depth and an Index
// read from a Real type, recover the Level it refers to.
func ToLevel(current Level, idx Index) Level {
	return Level(int(current) - int(idx) - 1)
}
