package object

import (
	"fmt"
	"sort"
)

// RuntimeID names one slot of a Store. IDs are never reused.
type RuntimeID uint64

func (id RuntimeID) String() string { return fmt.Sprintf("r%d", uint64(id)) }

// Scope maps variable names to store slots for one AST frame.
type Scope map[string]RuntimeID

func NewScope() Scope {
	return Scope{}
}

func (s Scope) Copy() Scope {
	out := make(Scope, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s Scope) Names() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Store is the runtime store of one interpreter: every live variable binding.
type Store struct {
	slots map[RuntimeID]Obj
	next  RuntimeID
}

func NewStore() *Store {
	return &Store{slots: map[RuntimeID]Obj{}}
}

// Mint returns a fresh slot ID. The slot stays unbound until Set.
func (s *Store) Mint() RuntimeID {
	s.next++
	return s.next
}

func (s *Store) Get(id RuntimeID) (Obj, bool) {
	obj, ok := s.slots[id]
	return obj, ok
}

func (s *Store) Set(id RuntimeID, val Obj) Obj {
	s.slots[id] = val
	return val
}

func (s *Store) Delete(id RuntimeID) {
	delete(s.slots, id)
}

func (s *Store) Len() int {
	return len(s.slots)
}

// Snapshot is a point-in-time copy of a store's bindings. Values are shared.
type Snapshot map[RuntimeID]Obj

func (s *Store) Snapshot() Snapshot {
	out := make(Snapshot, len(s.slots))
	for k, v := range s.slots {
		out[k] = v
	}
	return out
}

func (s Snapshot) IDs() []RuntimeID {
	out := make([]RuntimeID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
