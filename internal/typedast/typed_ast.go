// Package typedast is the elaborated output tree: every expression
// node carries its kind plus Real type annotations (spec.md 6).
package typedast

import (
	"fmt"

	"github.com/vulpine-lang/vulpityc/internal/ast"
	"github.com/vulpine-lang/vulpityc/internal/types"
)

// Node is the base for every elaborated expression node.
type Node interface {
	Position() ast.Pos
	GetType() types.Real
	String() string
	nodeTag()
}

type Base struct {
	Pos  ast.Pos
	Type types.Real
}

func (b Base) Position() ast.Pos   { return b.Pos }
func (b Base) GetType() types.Real { return b.Type }

type Var struct {
	Base
	Name string
}

type Ctor struct {
	Base
	Name  ast.Qualified
	Arity int
}

type Func struct {
	Base
	Name ast.Qualified
}

type Lit struct {
	Base
	Kind  ast.LitKind
	Value any
}

type App struct {
	Base
	Func Node
	Args []Node
}

type Tuple struct {
	Base
	Elems []Node
}

type Lambda struct {
	Base
	ParamName string
	ParamType types.Real
	Body      Node
}

type Let struct {
	Base
	Pattern Pattern
	Value   Node
	Body    Node
}

type Annot struct {
	Base
	Expr Node
}

type MatchArm struct {
	Patterns []Pattern
	Guard    Node
	Body     Node
}

type When struct {
	Base
	Scrutinees []Node
	Arms       []MatchArm
	Exhaustive bool
}

type LetStmt struct {
	Pattern Pattern
	Value   Node
}

type Do struct {
	Base
	LetStmts []LetStmt
	Final    Node
}

// RecordField is one elaborated field. RecordExpr lists its fields in
// the record type's declared field order (spec.md 6).
type RecordField struct {
	Name  string
	Value Node
}

type RecordExpr struct {
	Base
	TypeName ast.Qualified
	Fields   []RecordField
}

type RecordUpdate struct {
	Base
	BaseExpr Node
	Fields   []RecordField
}

type Project struct {
	Base
	Record Node
	Field  string
}

type ErrorNode struct{ Base }

func (Var) nodeTag()          {}
func (Ctor) nodeTag()         {}
func (Func) nodeTag()         {}
func (Lit) nodeTag()          {}
func (App) nodeTag()          {}
func (Tuple) nodeTag()        {}
func (Lambda) nodeTag()       {}
func (Let) nodeTag()          {}
func (Annot) nodeTag()        {}
func (When) nodeTag()         {}
func (Do) nodeTag()           {}
func (RecordExpr) nodeTag()   {}
func (RecordUpdate) nodeTag() {}
func (Project) nodeTag()      {}
func (ErrorNode) nodeTag()    {}

func (n Var) String() string    { return n.Name }
func (n Ctor) String() string   { return n.Name.String() }
func (n Func) String() string   { return n.Name.String() }
func (n Lit) String() string    { return fmt.Sprintf("%v", n.Value) }
func (n App) String() string    { return fmt.Sprintf("%s(...)", n.Func) }
func (n Tuple) String() string  { return fmt.Sprintf("(...) : %s", types.Print(n.Type)) }
func (n Lambda) String() string { return fmt.Sprintf("\\%s. %s", n.ParamName, n.Body) }
func (n Let) String() string {
	return fmt.Sprintf("let %s = %s in %s", n.Pattern, n.Value, n.Body)
}
func (n Annot) String() string        { return fmt.Sprintf("(%s : %s)", n.Expr, types.Print(n.Type)) }
func (n When) String() string         { return "when { ... }" }
func (n Do) String() string           { return "do { ... }" }
func (n RecordExpr) String() string   { return fmt.Sprintf("%s{...}", n.TypeName) }
func (n RecordUpdate) String() string { return fmt.Sprintf("{%s with ...}", n.BaseExpr) }
func (n Project) String() string      { return fmt.Sprintf("%s.%s", n.Record, n.Field) }
func (n ErrorNode) String() string    { return "<error>" }

// Pattern is the elaborated counterpart of ast.Pattern, annotated with
// a Real type per binder.
type Pattern interface {
	String() string
	patternTag()
}

type VarPattern struct {
	Name string
	Type types.Real
}
type WildcardPattern struct{ Type types.Real }
type LitPattern struct {
	Value any
	Type  types.Real
}
type CtorPattern struct {
	Name types.QualifiedName
	Args []Pattern
	Type types.Real
}
type TuplePattern struct {
	Elems []Pattern
	Type  types.Real
}

func (VarPattern) patternTag()      {}
func (WildcardPattern) patternTag() {}
func (LitPattern) patternTag()      {}
func (CtorPattern) patternTag()     {}
func (TuplePattern) patternTag()    {}

func (p VarPattern) String() string      { return p.Name }
func (p WildcardPattern) String() string { return "_" }
func (p LitPattern) String() string      { return fmt.Sprintf("%v", p.Value) }
func (p CtorPattern) String() string     { return fmt.Sprintf("%s(...)", p.Name.Name) }
func (p TuplePattern) String() string    { return "(...)" }

// Program is a fully elaborated module: one Node per top-level let.
type Program struct {
	Decls map[string]Node
}

// Print pretty-prints a typed program in declaration order.
func Print(p *Program, order []string) string {
	out := ""
	for _, name := range order {
		if n, ok := p.Decls[name]; ok {
			out += fmt.Sprintf("%s : %s = %s\n", name, types.Print(n.GetType()), n)
		}
	}
	return out
}
