package types

import "github.com/vulpine-lang/vulpityc/internal/kind"

// HoleState is the sum of states a HoleCell can be in.
type HoleState interface {
	isHoleState()
}

// HoleEmpty is an unsolved metavariable: a human-readable name (for
// diagnostics only, never for comparison), its kind, and the scope
// level it was created at. A later fill must not reference any bound
// variable at or above this level (the occurs/escape check).
type HoleEmpty struct {
	Name  string
	Kind  kind.Kind
	Level Level
}

// HoleRow is an unsolved row variable additionally constrained to
// never gain one of the listed labels — the "lacks" set built up by
// record/effect row unification.
type HoleRow struct {
	Name  string
	Level Level
	Lacks map[string]struct{}
}

// HoleFilled is a solved hole; Value is read lazily, so chains of
// Filled holes are only walked (and compacted) on deref.
type HoleFilled struct {
	Value Virtual
}

func (HoleEmpty) isHoleState()  {}
func (HoleRow) isHoleState()    {}
func (HoleFilled) isHoleState() {}

// HoleCell is the shared mutable cell a Hole/VHole points to. Identity
// is the pointer; two holes are the same metavariable iff they share a
// cell address.
type HoleCell struct {
	State HoleState
}

// NewEmptyHole allocates a fresh, unsolved type hole at the given level.
func NewEmptyHole(name string, k kind.Kind, level Level) *HoleCell {
	return &HoleCell{State: HoleEmpty{Name: name, Kind: k, Level: level}}
}

// NewRowHole allocates a fresh, unsolved row hole with an empty lacks set.
func NewRowHole(name string, level Level) *HoleCell {
	return &HoleCell{State: HoleRow{Name: name, Level: level, Lacks: map[string]struct{}{}}}
}

// Fill transitions the cell from Empty/Row to Filled. Callers are
// expected to have already run the occurs/escape check.
func (c *HoleCell) Fill(v Virtual) {
	c.State = HoleFilled{Value: v}
}

// AddLack records that this row hole must never gain label.
func (c *HoleCell) AddLack(label string) {
	r, ok := c.State.(HoleRow)
	if !ok {
		return
	}
	r.Lacks[label] = struct{}{}
	c.State = r
}

// LacksLabel reports whether label is in this row hole's forbidden set.
func (c *HoleCell) LacksLabel(label string) bool {
	r, ok := c.State.(HoleRow)
	if !ok {
		return false
	}
	_, found := r.Lacks[label]
	return found
}

// Deref walks a Filled chain to the final Virtual value this hole
// resolves to, or returns v itself (as VHole) if it is still unsolved.
// It compresses the chain in place: every cell it passes through is
// rewritten to point directly at the final value, so repeated lookups
// of a long-solved hole stay O(1). Path compression on deref is
// additive: the externally observable result is identical to the
// original lazy-forcing discipline.
func Deref(v Virtual) Virtual {
	h, ok := v.(VHole)
	if !ok {
		return v
	}
	filled, ok := h.Cell.State.(HoleFilled)
	if !ok {
		return v
	}
	final := Deref(filled.Value)
	if _, wasHole := filled.Value.(VHole); wasHole {
		h.Cell.State = HoleFilled{Value: final}
	}
	return final
}

// Level returns the scope level of a still-unsolved hole.
func (c *HoleCell) Level() Level {
	switch s := c.State.(type) {
	case HoleEmpty:
		return s.Level
	case HoleRow:
		return s.Level
	default:
		return 0
	}
}

// Name returns the hole's diagnostic name.
func (c *HoleCell) Name() string {
	switch s := c.State.(type) {
	case HoleEmpty:
		return s.Name
	case HoleRow:
		return s.Name
	default:
		return "<solved>"
	}
}

// Kind returns the hole's kind (Type/Effect kind for HoleEmpty, the
// row kind for HoleRow).
func (c *HoleCell) Kind() kind.Kind {
	switch s := c.State.(type) {
	case HoleEmpty:
		return s.Kind
	case HoleRow:
		return kind.RowOfEffect()
	default:
		return kind.Type{}
	}
}
