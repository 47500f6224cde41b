package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/Open-EO/openeo-graph-engine/internal/ctxlog"
	"github.com/Open-EO/openeo-graph-engine/internal/fsutil"
	"github.com/Open-EO/openeo-graph-engine/internal/schema"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Module is the interface built-in process packages implement to register
// their handlers.
type Module interface {
	Register(r *Registry)
}

// Registry holds all registered process handlers and definitions for a
// single engine instance.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]*Handler
	builtins map[string]*Builtin
	store    Store
}

// New creates an empty Registry backed by the given user-defined process
// store.
func New(store Store) *Registry {
	return &Registry{
		handlers: make(map[string]*Handler),
		builtins: make(map[string]*Builtin),
		store:    store,
	}
}

var (
	ctxType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	valueType = reflect.TypeOf(cty.Value{})
)

// RegisterInvoker registers a Go handler function for a built-in process
// lifecycle. A malformed handler is a programmer error and panics at
// startup.
func (r *Registry) RegisterInvoker(name string, handler *Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("process handler with name '%s' already registered", name))
	}

	fnType := reflect.TypeOf(handler.Fn)
	if fnType == nil || fnType.Kind() != reflect.Func ||
		fnType.NumIn() != 2 || fnType.NumOut() != 2 ||
		fnType.In(0) != ctxType ||
		fnType.In(1) != reflect.PointerTo(handler.InputType) ||
		fnType.Out(0) != valueType || fnType.Out(1) != errorType {
		panic(fmt.Sprintf("handler '%s' must be func(context.Context, *%s) (cty.Value, error)", name, handler.InputType))
	}

	r.handlers[name] = handler
}

// LoadManifests walks the given path for .hcl manifest files and registers
// every process they declare. Handler binding is verified afterwards by
// Validate.
func (r *Registry) LoadManifests(ctx context.Context, manifestPath string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading process manifests.", "path", manifestPath)

	filePaths, err := fsutil.FindFilesByExtension(manifestPath, ".hcl")
	if err != nil {
		return fmt.Errorf("failed to walk manifest directory %s: %w", manifestPath, err)
	}
	if len(filePaths) == 0 {
		logger.Warn("No .hcl manifest files found in path.", "path", manifestPath)
		return nil
	}

	parser := hclparse.NewParser()
	loaded := 0

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, filePath := range filePaths {
		manifests, err := schema.ParseManifestFile(parser, filePath)
		if err != nil {
			return err
		}
		for _, m := range manifests {
			if _, exists := r.builtins[m.Spec.ID]; exists {
				return fmt.Errorf("process '%s' declared more than once (second declaration in %s)", m.Spec.ID, filePath)
			}
			r.builtins[m.Spec.ID] = &Builtin{spec: m.Spec, handler: r.handlers[m.Invoke]}
			if r.handlers[m.Invoke] == nil {
				// Recorded as unbound; Validate reports it with full context.
				r.builtins[m.Spec.ID].unboundInvoke = m.Invoke
			}
			loaded++
		}
	}

	logger.Info("Registry loaded process manifests.", "processes", loaded, "files", len(filePaths))
	return nil
}

// LookupBuiltin returns the built-in process with the given id.
func (r *Registry) LookupBuiltin(id string) (*Builtin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.builtins[id]
	return p, ok
}

// PutUserDefined parses a user-defined process submission and stores it
// under the given opaque owner key. Replacing an existing definition does
// not affect evaluations already in flight, which hold a snapshot.
func (r *Registry) PutUserDefined(ctx context.Context, owner string, doc []byte) (*UserDefined, error) {
	proc, err := ParseUserDefined(owner, doc)
	if err != nil {
		return nil, err
	}
	if _, exists := r.LookupBuiltin(proc.spec.ID); exists {
		return nil, fmt.Errorf("process id '%s' is reserved by a built-in process", proc.spec.ID)
	}
	if err := r.store.Put(ctx, proc); err != nil {
		return nil, fmt.Errorf("failed to store user-defined process '%s': %w", proc.spec.ID, err)
	}
	return proc, nil
}

// DeleteUserDefined removes a stored user-defined process owned by owner.
func (r *Registry) DeleteUserDefined(ctx context.Context, owner, id string) error {
	return r.store.Delete(ctx, owner, id)
}

// List enumerates the specs of all built-in processes plus the user-defined
// processes owned by owner (all of them when owner is empty), sorted by id.
func (r *Registry) List(ctx context.Context, owner string) ([]*schema.ProcessSpec, error) {
	r.mu.RLock()
	specs := make([]*schema.ProcessSpec, 0, len(r.builtins))
	for _, b := range r.builtins {
		specs = append(specs, &b.spec)
	}
	r.mu.RUnlock()

	users, err := r.store.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		specs = append(specs, &u.spec)
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs, nil
}

// Snapshot freezes the registry's current view for one evaluation: built-ins
// (immutable after startup) shared by reference, user-defined definitions
// materialized from the store. A definition replaced or removed mid-flight
// keeps serving the evaluation that snapshotted it.
func (r *Registry) Snapshot(ctx context.Context) (*Snapshot, error) {
	users, err := r.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot user-defined processes: %w", err)
	}
	userMap := make(map[string]*UserDefined, len(users))
	for _, u := range users {
		userMap[u.spec.ID] = u
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Snapshot{builtins: r.builtins, users: userMap}, nil
}

// Snapshot is the frozen registry view an evaluation resolves lookups
// against for its whole duration.
type Snapshot struct {
	builtins map[string]*Builtin
	users    map[string]*UserDefined
}

// Lookup resolves a process id against the snapshot. Built-ins shadow
// user-defined processes of the same id; PutUserDefined prevents such
// collisions at registration.
func (s *Snapshot) Lookup(id string) (Process, bool) {
	if p, ok := s.builtins[id]; ok {
		return p, true
	}
	if p, ok := s.users[id]; ok {
		return p, true
	}
	return nil, false
}
