package registry

import "context"

// Store is the persistence boundary for user-defined processes. The engine
// does not define how records are persisted, only that lookups stay
// consistent for the duration of one evaluation, which the registry
// guarantees by snapshotting at evaluation start.
//
// Implementations must be safe for concurrent use. See package memstore for
// the in-memory implementation used by the CLI and tests.
type Store interface {
	// Put creates or replaces the process under its id.
	Put(ctx context.Context, p *UserDefined) error

	// Get returns the process with the given id, reporting whether it exists.
	Get(ctx context.Context, id string) (*UserDefined, bool, error)

	// Delete removes the process with the given id if it is owned by owner.
	Delete(ctx context.Context, owner, id string) error

	// List returns the processes owned by owner, or all processes when
	// owner is empty, sorted by id.
	List(ctx context.Context, owner string) ([]*UserDefined, error)
}
