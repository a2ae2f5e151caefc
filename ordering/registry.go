package ordering

import (
	"fmt"
	"slices"

	"github.com/puzpuzpuz/xsync/v3"
)

// Registry maps policy names to policies. Safe for concurrent use.
type Registry struct {
	policies *xsync.MapOf[string, Policy]
}

func NewRegistry() *Registry {
	return &Registry{policies: xsync.NewMapOf[string, Policy]()}
}

// Register adds p under its Name. The first registration of a name wins;
// returns false if the name was already taken.
func (r *Registry) Register(p Policy) bool {
	_, loaded := r.policies.LoadOrStore(p.Name(), p)
	return !loaded
}

// Get returns the policy registered as name
func (r *Registry) Get(name string) (Policy, error) {
	if p, ok := r.policies.Load(name); ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown ordering policy %q", name)
}

// Names returns the registered policy names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, r.policies.Size())
	r.policies.Range(func(name string, _ Policy) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

var defaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Lexical)
	r.Register(DirsFirst)
	return r
}

// Register adds p to the process-wide registry. See [Registry.Register]
func Register(p Policy) bool {
	return defaultRegistry.Register(p)
}

// Lookup finds a policy in the process-wide registry. The empty name
// resolves to Lexical.
func Lookup(name string) (Policy, error) {
	if name == "" {
		return Lexical, nil
	}
	return defaultRegistry.Get(name)
}

// Names lists the policies in the process-wide registry
func Names() []string {
	return defaultRegistry.Names()
}
