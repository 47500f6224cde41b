// Package memstore provides an ephemeral, thread-safe, in-memory
// implementation of the registry.Store interface. It is the store used by
// the CLI and tests; deployments wanting user-defined processes to survive a
// restart would back the interface with a database instead.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Open-EO/openeo-graph-engine/internal/registry"
)

// Store keeps user-defined processes in a sync.Map keyed by process id.
// sync.Map fits the access pattern: a small, mostly stable key space with
// concurrent reads from evaluations and occasional writes from CRUD calls.
type Store struct {
	procs sync.Map // process id -> *registry.UserDefined
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// Put implements registry.Store. Replacing a process owned by a different
// owner is rejected.
func (s *Store) Put(ctx context.Context, p *registry.UserDefined) error {
	id := p.Spec().ID
	if existing, ok := s.procs.Load(id); ok {
		if existing.(*registry.UserDefined).Owner != p.Owner {
			return fmt.Errorf("process '%s' is owned by another user", id)
		}
	}
	s.procs.Store(id, p)
	return nil
}

// Get implements registry.Store.
func (s *Store) Get(ctx context.Context, id string) (*registry.UserDefined, bool, error) {
	p, ok := s.procs.Load(id)
	if !ok {
		return nil, false, nil
	}
	return p.(*registry.UserDefined), true, nil
}

// Delete implements registry.Store.
func (s *Store) Delete(ctx context.Context, owner, id string) error {
	existing, ok := s.procs.Load(id)
	if !ok {
		return fmt.Errorf("process '%s' does not exist", id)
	}
	if existing.(*registry.UserDefined).Owner != owner {
		return fmt.Errorf("process '%s' is owned by another user", id)
	}
	s.procs.Delete(id)
	return nil
}

// List implements registry.Store.
func (s *Store) List(ctx context.Context, owner string) ([]*registry.UserDefined, error) {
	var procs []*registry.UserDefined
	s.procs.Range(func(_, value any) bool {
		p := value.(*registry.UserDefined)
		if owner == "" || p.Owner == owner {
			procs = append(procs, p)
		}
		return true
	})
	sort.Slice(procs, func(i, j int) bool { return procs[i].Spec().ID < procs[j].Spec().ID })
	return procs, nil
}
