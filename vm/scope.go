package vm

import (
	"github.com/Mu-L/Melon/ast"
	"github.com/Mu-L/Melon/value"
)

// ScopeKind distinguishes the two scope shapes spec.md §3 names.
type ScopeKind uint8

const (
	ScopeSet ScopeKind = iota
	ScopeFunc
)

// SymbolKind tags what a name in a scope's symbol table refers to.
// Sets and labels share the symbol namespace with variables (spec.md
// §4.4: "Sets and labels share the symbol namespace with variables but
// are distinguished by their type tag") rather than each getting a
// separate table.
type SymbolKind uint8

const (
	SymbolVariable SymbolKind = iota
	SymbolSet
	SymbolLabel
)

// symbol is one symbol-table entry: a type tag plus exactly one of the
// three payloads, selected by Kind.
type symbol struct {
	Kind  SymbolKind
	Var   *value.Variable
	Set   *value.SetDetail
	Label *ast.Node
}

// Scope is spec.md §3's "Scope": a symbol table threaded into a chain,
// with a back-pointer to its owning job and a cursor naming the current
// top-of-stack activation (scope.cur_stack in spec.md §8's invariant).
type Scope struct {
	Kind  ScopeKind
	Name  string // optional owning name, e.g. the function or set name
	Job   *Job
	Prev  *Scope
	Next  *Scope

	symbols  map[string]*symbol
	curStack *Frame
}

// NewScope creates a scope of the given kind, linked after prev (prev
// may be nil for a job's root scope).
func NewScope(kind ScopeKind, name string, job *Job, prev *Scope) *Scope {
	s := &Scope{Kind: kind, Name: name, Job: job, Prev: prev, symbols: make(map[string]*symbol)}
	if prev != nil {
		prev.Next = s
	}
	return s
}

// JoinVariable inserts a variable binding into this scope, the
// innermost scope per spec.md §4.4 ("Joining a binding always inserts
// into the innermost scope; shadowing is permitted").
func (s *Scope) JoinVariable(v *value.Variable) {
	s.symbols[v.Name] = &symbol{Kind: SymbolVariable, Var: v}
}

// JoinSet inserts a set-detail binding into this scope.
func (s *Scope) JoinSet(name string, set *value.SetDetail) {
	s.symbols[name] = &symbol{Kind: SymbolSet, Set: set}
}

// Lookup searches from this scope outward per spec.md §4.4: "from
// innermost to outermost, return the first binding whose name matches,
// unless a local flag restricts the search to the innermost scope."
func (s *Scope) Lookup(name string, local bool) (SymbolKind, *symbol, bool) {
	for cur := s; cur != nil; cur = cur.Prev {
		if sym, ok := cur.symbols[name]; ok {
			return sym.Kind, sym, true
		}
		if local {
			break
		}
	}
	return 0, nil, false
}

// LookupVariable is the common case of Lookup for expression evaluation.
func (s *Scope) LookupVariable(name string, local bool) (*value.Variable, bool) {
	kind, sym, ok := s.Lookup(name, local)
	if !ok || kind != SymbolVariable {
		return nil, false
	}
	return sym.Var, true
}

// CurStack reports the scope's current top-of-stack activation.
func (s *Scope) CurStack() *Frame { return s.curStack }

func (s *Scope) setCurStack(f *Frame) { s.curStack = f }
