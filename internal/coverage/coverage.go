// Package coverage implements pattern-match exhaustiveness checking:
// given a `when`'s pattern matrix and scrutinee types, it searches for
// a witness — a pattern accepted by the scrutinee types but not
// subsumed by any matrix row — using Maranget-style specialization and
// default-matrix decomposition (spec.md 4.6, 9).
package coverage

import (
	"github.com/vulpine-lang/vulpityc/internal/ast"
	"github.com/vulpine-lang/vulpityc/internal/registry"
	"github.com/vulpine-lang/vulpityc/internal/types"
)

// ColumnType describes one scrutinee column's shape, enough to drive
// specialization without re-deriving it from types.Virtual at every
// recursive step.
type ColumnType struct {
	// DataType is set when the column's type is a declared sum type;
	// Ctors lists its constructors in declaration order.
	DataType *types.QualifiedName
	Ctors    []CtorShape
	// IsTuple marks a tuple column; Elems gives the per-slot column type.
	IsTuple bool
	Elems   []ColumnType
}

// CtorShape is a constructor's name and the column types of its arguments.
type CtorShape struct {
	Name  types.QualifiedName
	Arity int
	Args  []ColumnType
}

// Result is the outcome of an exhaustiveness search.
type Result struct {
	Exhaustive bool
	Witness    []ast.Pattern // nil when Exhaustive
}

// Check runs the usefulness algorithm on the all-wildcard query vector
// against matrix: the query is useful (i.e. the match is not
// exhaustive) iff some instantiation of it is not matched by any row.
func Check(matrix [][]ast.Pattern, cols []ColumnType) Result {
	query := make([]ast.Pattern, len(cols))
	for i := range query {
		query[i] = ast.WildcardPattern{}
	}
	witness, useful := usefulness(matrix, query, cols)
	if useful {
		return Result{Exhaustive: false, Witness: witness}
	}
	return Result{Exhaustive: true}
}

// usefulness implements I(matrix, query): whether query is useful
// w.r.t. matrix (matches a value no row of matrix matches). On success
// it returns a concrete witness pattern vector.
func usefulness(matrix [][]ast.Pattern, query []ast.Pattern, cols []ColumnType) ([]ast.Pattern, bool) {
	if len(query) == 0 {
		// Base case: the empty query vector is useful iff matrix has no
		// rows at all (every row would otherwise already match it).
		return []ast.Pattern{}, len(matrix) == 0
	}

	head := query[0]
	rest := query[1:]

	switch h := head.(type) {
	case ast.CtorPattern:
		spec, specCols := specializeCtor(matrix, cols, qname(h.Name), len(h.Args))
		specQuery := append(append([]ast.Pattern{}, h.Args...), rest...)
		w, ok := usefulness(spec, specQuery, specCols)
		if !ok {
			return nil, false
		}
		return rebuildCtor(qname(h.Name), len(h.Args), w), true

	case ast.TuplePattern:
		arity := len(h.Elems)
		spec, specCols := specializeTuple(matrix, cols, arity)
		specQuery := append(append([]ast.Pattern{}, h.Elems...), rest...)
		w, ok := usefulness(spec, specQuery, specCols)
		if !ok {
			return nil, false
		}
		return rebuildTuple(arity, w), true

	case ast.LitPattern:
		spec, specCols := specializeLit(matrix, cols, h.Kind, h.Value)
		specQuery := append([]ast.Pattern{}, rest...)
		w, ok := usefulness(spec, specQuery, specCols)
		if !ok {
			return nil, false
		}
		return append([]ast.Pattern{h}, w...), true

	default:
		// Wildcard or variable: try every constructor appearing in the
		// type of this column. If the set is a complete signature for a
		// sum type, the query is useful only if some constructor branch
		// is useful. Otherwise (tuple-typed, literal-typed, or a
		// partial signature) fall back to the default matrix.
		col := cols[0]
		if col.DataType != nil && len(col.Ctors) > 0 && isComplete(matrix, col) {
			for _, c := range col.Ctors {
				args := make([]ast.Pattern, c.Arity)
				for i := range args {
					args[i] = ast.WildcardPattern{}
				}
				spec, specCols := specializeCtor(matrix, cols, c.Name, c.Arity)
				specQuery := append(append([]ast.Pattern{}, args...), rest...)
				w, ok := usefulness(spec, specQuery, specCols)
				if ok {
					return rebuildCtor(c.Name, c.Arity, w), true
				}
			}
			return nil, false
		}
		if col.IsTuple {
			args := make([]ast.Pattern, len(col.Elems))
			for i := range args {
				args[i] = ast.WildcardPattern{}
			}
			spec, specCols := specializeTuple(matrix, cols, len(col.Elems))
			specQuery := append(append([]ast.Pattern{}, args...), rest...)
			w, ok := usefulness(spec, specQuery, specCols)
			if !ok {
				return nil, false
			}
			return rebuildTuple(len(col.Elems), w), true
		}
		// Literal, opaque or partially covered sum column: default-matrix
		// decomposition per spec.md 9's explicit guidance. For a sum type
		// the witness names the first constructor no row mentions.
		def, defCols := defaultMatrix(matrix, cols)
		w, ok := usefulness(def, rest, defCols)
		if !ok {
			return nil, false
		}
		if col.DataType != nil {
		ctors:
			for _, c := range col.Ctors {
				for _, row := range matrix {
					if rc, isCtor := rowHead(row[0]).(ast.CtorPattern); isCtor && qname(rc.Name) == c.Name {
						continue ctors
					}
				}
				wild := make([]ast.Pattern, c.Arity)
				for i := range wild {
					wild[i] = ast.WildcardPattern{}
				}
				return rebuildCtor(c.Name, c.Arity, append(wild, w...)), true
			}
		}
		return append([]ast.Pattern{ast.WildcardPattern{}}, w...), true
	}
}

// rowHead classifies row[0], ignoring position info.
func rowHead(p ast.Pattern) ast.Pattern { return p }

// rowMatchesCtor reports whether a constructor-headed row is compatible with
// (name, arity) or is a wildcard/variable (always compatible).
func rowMatchesCtor(p ast.Pattern, name types.QualifiedName, arity int) (args []ast.Pattern, ok bool) {
	switch h := rowHead(p).(type) {
	case ast.CtorPattern:
		if qname(h.Name) == name {
			return h.Args, true
		}
		return nil, false
	case ast.VarPattern, ast.WildcardPattern:
		wc := make([]ast.Pattern, arity)
		for i := range wc {
			wc[i] = ast.WildcardPattern{}
		}
		return wc, true
	default:
		return nil, false
	}
}

func qname(q ast.Qualified) types.QualifiedName {
	return types.QualifiedName{Module: q.Module, Name: q.Name}
}

func specializeCtor(matrix [][]ast.Pattern, cols []ColumnType, name types.QualifiedName, arity int) ([][]ast.Pattern, []ColumnType) {
	var out [][]ast.Pattern
	for _, row := range matrix {
		args, ok := rowMatchesCtor(row[0], name, arity)
		if !ok {
			continue
		}
		newRow := make([]ast.Pattern, 0, arity+len(row)-1)
		newRow = append(newRow, args...)
		newRow = append(newRow, row[1:]...)
		out = append(out, newRow)
	}
	var argCols []ColumnType
	for _, c := range cols[0].Ctors {
		if c.Name == name {
			argCols = c.Args
			break
		}
	}
	if argCols == nil {
		argCols = make([]ColumnType, arity)
	}
	newCols := append(append([]ColumnType{}, argCols...), cols[1:]...)
	return out, newCols
}

func specializeTuple(matrix [][]ast.Pattern, cols []ColumnType, arity int) ([][]ast.Pattern, []ColumnType) {
	var out [][]ast.Pattern
	for _, row := range matrix {
		switch h := rowHead(row[0]).(type) {
		case ast.TuplePattern:
			newRow := make([]ast.Pattern, 0, arity+len(row)-1)
			newRow = append(newRow, h.Elems...)
			newRow = append(newRow, row[1:]...)
			out = append(out, newRow)
		case ast.VarPattern, ast.WildcardPattern:
			wc := make([]ast.Pattern, arity)
			for i := range wc {
				wc[i] = ast.WildcardPattern{}
			}
			newRow := append(append([]ast.Pattern{}, wc...), row[1:]...)
			out = append(out, newRow)
		}
	}
	elemCols := cols[0].Elems
	if elemCols == nil {
		elemCols = make([]ColumnType, arity)
	}
	newCols := append(append([]ColumnType{}, elemCols...), cols[1:]...)
	return out, newCols
}

func specializeLit(matrix [][]ast.Pattern, cols []ColumnType, kind ast.LitKind, value any) ([][]ast.Pattern, []ColumnType) {
	var out [][]ast.Pattern
	for _, row := range matrix {
		switch h := rowHead(row[0]).(type) {
		case ast.LitPattern:
			if h.Kind == kind && h.Value == value {
				out = append(out, row[1:])
			}
		case ast.VarPattern, ast.WildcardPattern:
			out = append(out, row[1:])
		}
	}
	return out, cols[1:]
}

func defaultMatrix(matrix [][]ast.Pattern, cols []ColumnType) ([][]ast.Pattern, []ColumnType) {
	var out [][]ast.Pattern
	for _, row := range matrix {
		switch rowHead(row[0]).(type) {
		case ast.VarPattern, ast.WildcardPattern:
			out = append(out, row[1:])
		}
	}
	return out, cols[1:]
}

// isComplete reports whether every constructor of the column's data
// type is mentioned in matrix's first column.
func isComplete(matrix [][]ast.Pattern, col ColumnType) bool {
	seen := map[types.QualifiedName]bool{}
	for _, row := range matrix {
		if c, ok := rowHead(row[0]).(ast.CtorPattern); ok {
			seen[qname(c.Name)] = true
		}
	}
	if len(seen) == 0 {
		return false
	}
	for _, c := range col.Ctors {
		if !seen[c.Name] {
			return false
		}
	}
	return true
}

func rebuildCtor(name types.QualifiedName, arity int, w []ast.Pattern) []ast.Pattern {
	args := append([]ast.Pattern{}, w[:arity]...)
	rest := w[arity:]
	return append([]ast.Pattern{ast.CtorPattern{Name: ast.Qualified{Module: name.Module, Name: name.Name}, Args: args}}, rest...)
}

func rebuildTuple(arity int, w []ast.Pattern) []ast.Pattern {
	elems := append([]ast.Pattern{}, w[:arity]...)
	rest := w[arity:]
	return append([]ast.Pattern{ast.TuplePattern{Elems: elems}}, rest...)
}

// ColumnFromDataType builds a ColumnType for a declared sum type,
// reading its constructor list and arities from the registry. Argument
// sub-columns are left opaque (nil Ctors) — coverage only needs exact
// shape recursion one constructor deep to find a witness; nested
// columns default to the catch-all wildcard/literal branch.
func ColumnFromDataType(reg *registry.Registry, dataType types.QualifiedName) ColumnType {
	names := reg.Constructors(dataType)
	ctors := make([]CtorShape, 0, len(names))
	for _, n := range names {
		entry, ok := reg.LookupConstructor(n)
		if !ok {
			continue
		}
		ctors = append(ctors, CtorShape{Name: n, Arity: entry.Arity, Args: make([]ColumnType, entry.Arity)})
	}
	dt := dataType
	return ColumnType{DataType: &dt, Ctors: ctors}
}

// ColumnOpaque is used for non-sum-typed columns (Int, String, tuples
// handled structurally, etc).
func ColumnOpaque() ColumnType { return ColumnType{} }

// ColumnFromTuple builds a ColumnType for a tuple scrutinee.
func ColumnFromTuple(elems int) ColumnType {
	return ColumnType{IsTuple: true, Elems: make([]ColumnType, elems)}
}
