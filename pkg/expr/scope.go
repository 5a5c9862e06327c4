package expr

import (
	"maps"
	"slices"
	"sync"

	"github.com/polisai/oxy/pkg/object"
)

// Scope holds the variables visible to a program. Names not bound in the
// scope resolve to builtins.
type Scope struct {
	mu   sync.RWMutex
	vars map[string]object.Object
}

// NewScope returns a scope seeded with a copy of vars.
func NewScope(vars map[string]object.Object) *Scope {
	s := &Scope{vars: make(map[string]object.Object, len(vars))}
	maps.Copy(s.vars, vars)
	return s
}

// Lookup resolves name in the scope, then among the builtins.
func (s *Scope) Lookup(name string) (object.Object, bool) {
	s.mu.RLock()
	v, ok := s.vars[name]
	s.mu.RUnlock()
	if ok {
		return v, true
	}
	v, ok = builtins[name]
	return v, ok
}

// Set binds name, shadowing any builtin of the same name.
func (s *Scope) Set(name string, value object.Object) {
	s.mu.Lock()
	s.vars[name] = value
	s.mu.Unlock()
}

// Delete unbinds name and reports whether it was bound.
func (s *Scope) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vars[name]; !ok {
		return false
	}
	delete(s.vars, name)
	return true
}

// Names lists the bound names, sorted. Builtins are not included.
func (s *Scope) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.vars))
}

// Vars returns a snapshot of the bound variables.
func (s *Scope) Vars() map[string]object.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.vars)
}
