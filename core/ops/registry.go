package ops

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Call carries the parsed invocation of a command.
type Call struct {
	Command string
	Args    []string
	ChatID  int64
	UserID  int64
}

// Op defines an executable operation triggered by an inbound command.
// Execute returns the reply text for the originating chat.
type Op interface {
	Name() string
	Description() string
	Arity() Arity
	Execute(ctx context.Context, call Call) (string, error)
}

// Registry holds registered operations keyed by name.
// It is safe for concurrent use; lookups never mutate it.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Op
}

// NewRegistry creates an empty operation registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Op)}
}

// Register adds an operation. Returns an error if the name is already registered.
func (r *Registry) Register(op Op) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := op.Name()
	if name == "" {
		return fmt.Errorf("op has empty name")
	}
	if _, exists := r.ops[name]; exists {
		return fmt.Errorf("op already registered: %s", name)
	}
	r.ops[name] = op
	return nil
}

// MustRegister registers every op and panics on the first failure.
// Meant for startup wiring where a duplicate is a programming error.
func (r *Registry) MustRegister(ops ...Op) *Registry {
	for _, op := range ops {
		if err := r.Register(op); err != nil {
			panic(err)
		}
	}
	return r
}

// Get returns the operation with the given name, or nil if not found.
func (r *Registry) Get(name string) Op {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ops[name]
}

// List returns all registered operations sorted alphabetically by name.
func (r *Registry) List() []Op {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Op, len(names))
	for i, name := range names {
		result[i] = r.ops[name]
	}
	return result
}
