// Package registry implements the module registry: the map from module
// path to declared types, constructors, fields, variables, and effects
// that the declaration driver populates in its declare pass and the
// bidirectional checker reads from in its define pass.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vulpine-lang/vulpityc/internal/kind"
	"github.com/vulpine-lang/vulpityc/internal/types"
)

// TypeDefKind discriminates a type declaration's definition descriptor.
type TypeDefKind int

const (
	DefEnum TypeDefKind = iota
	DefRecord
	DefSynonym
	DefAbstract
	DefEffect
)

func (k TypeDefKind) String() string {
	switch k {
	case DefEnum:
		return "Enum"
	case DefRecord:
		return "Record"
	case DefSynonym:
		return "Synonym"
	case DefAbstract:
		return "Abstract"
	case DefEffect:
		return "Effect"
	default:
		return "Unknown"
	}
}

// TypeEntry is a declared type's signature.
type TypeEntry struct {
	Kind    kind.Kind
	Binders []string
	Def     TypeDefKind
	// FieldOrder records declared field order for Record types, so the
	// elaborated tree can preserve it (spec.md 6, "records carry the
	// field order as declared").
	FieldOrder []string
}

// ConstructorEntry is a declared data constructor's scheme and arity.
type ConstructorEntry struct {
	Scheme types.Real // Forall-wrapped arrow to Application(DataName, ...)
	Arity  int
	Parent string // owning type's name
	Tag    int    // discriminant within the parent's constructor list
}

// FieldEntry is a declared record field's scheme (forall params. field_type).
type FieldEntry struct {
	Scheme types.Real
	Parent string
}

// VariableEntry is a declared let binding: its generalized scheme plus
// the bookkeeping the declare pass recorded about it.
type VariableEntry struct {
	Scheme             types.Real
	PatternBinderTypes map[string]types.Real
	UnboundTypeVars    []string
	UnboundEffectVars  []string
}

// EffectEntry is a declared effect: its operations' schemes, keyed by
// operation name (see spec.md 4.8 "Effect operation").
type EffectEntry struct {
	Operations map[string]types.Real
}

// Module is one module's declared namespace.
type Module struct {
	Types        map[string]*TypeEntry
	Constructors map[string]*ConstructorEntry
	Fields       map[string]*FieldEntry
	Variables    map[string]*VariableEntry
	Effects      map[string]*EffectEntry
}

func newModule() *Module {
	return &Module{
		Types:        map[string]*TypeEntry{},
		Constructors: map[string]*ConstructorEntry{},
		Fields:       map[string]*FieldEntry{},
		Variables:    map[string]*VariableEntry{},
		Effects:      map[string]*EffectEntry{},
	}
}

// Registry is the map from module path to Module, guarded by a mutex
// even though the checker is single-threaded per spec.md 5, so that
// several Contexts (see tenv.NewWithRegistry) may share one Registry.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

// New returns an empty registry with the "prim" module pre-populated
// with ground types, matching spec.md 6's external-interfaces contract.
func New() *Registry {
	r := &Registry{modules: map[string]*Module{}}
	prim := r.Module("prim")
	for _, name := range []string{"Int", "String", "Char", "Float", "Unit"} {
		prim.Types[name] = &TypeEntry{Kind: kind.Type{}, Def: DefAbstract}
	}
	return r
}

// Module returns (creating if absent) the module at path.
func (r *Registry) Module(path string) *Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modules[path]
	if !ok {
		m = newModule()
		r.modules[path] = m
	}
	return m
}

// LookupType resolves a qualified type name.
func (r *Registry) LookupType(q types.QualifiedName) (*TypeEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[q.Module]
	if !ok {
		return nil, false
	}
	e, ok := m.Types[q.Name]
	return e, ok
}

// LookupConstructor resolves a qualified constructor name.
func (r *Registry) LookupConstructor(q types.QualifiedName) (*ConstructorEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[q.Module]
	if !ok {
		return nil, false
	}
	e, ok := m.Constructors[q.Name]
	return e, ok
}

// LookupField resolves a qualified field name.
func (r *Registry) LookupField(q types.QualifiedName) (*FieldEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[q.Module]
	if !ok {
		return nil, false
	}
	e, ok := m.Fields[q.Name]
	return e, ok
}

// LookupVariable resolves a qualified let/function name.
func (r *Registry) LookupVariable(q types.QualifiedName) (*VariableEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[q.Module]
	if !ok {
		return nil, false
	}
	e, ok := m.Variables[q.Name]
	return e, ok
}

// Constructors returns every constructor belonging to the named type,
// ordered by Tag, for pattern coverage's specialization step.
func (r *Registry) Constructors(dataType types.QualifiedName) []types.QualifiedName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[dataType.Module]
	if !ok {
		return nil
	}
	result := make([]types.QualifiedName, 0)
	for name, c := range m.Constructors {
		if c.Parent == dataType.Name {
			result = append(result, types.QualifiedName{Module: dataType.Module, Name: name})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return m.Constructors[result[i].Name].Tag < m.Constructors[result[j].Name].Tag
	})
	return result
}

// String renders a qualified name for diagnostics.
func String(q types.QualifiedName) string {
	if q.Module == "" {
		return q.Name
	}
	return fmt.Sprintf("%s.%s", q.Module, q.Name)
}
