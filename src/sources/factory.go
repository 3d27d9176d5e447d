package sources

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrAlreadyRegistered = errors.New("source already registered")
	ErrNotRegistered     = errors.New("source not registered")
)

// Constructor builds a fresh adapter. Construction may fail, e.g. when the
// provider client cannot be set up.
type Constructor func() (Adapter, error)

// Factory maps source names to adapter constructors. Safe for concurrent use.
type Factory struct {
	mu       sync.RWMutex
	registry map[string]Constructor
}

func NewFactory() *Factory {
	return &Factory{registry: make(map[string]Constructor)}
}

// Register binds a name to a constructor. Duplicate names and nil
// constructors are rejected.
func (f *Factory) Register(name string, ctor Constructor) error {
	if ctor == nil {
		return fmt.Errorf("registering %q: constructor must not be nil", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.registry[name]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, name)
	}
	f.registry[name] = ctor
	return nil
}

// Create builds an adapter for name. Unknown names produce an error listing
// the registered sources.
func (f *Factory) Create(name string) (Adapter, error) {
	f.mu.RLock()
	ctor, ok := f.registry[name]
	f.mu.RUnlock()
	if !ok {
		available := f.Sources()
		if len(available) == 0 {
			return nil, fmt.Errorf("%w: %q (none available)", ErrNotRegistered, name)
		}
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrNotRegistered, name,
			strings.Join(available, ", "))
	}
	return ctor()
}

func (f *Factory) IsRegistered(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.registry[name]
	return ok
}

// Sources returns the registered names in sorted order.
func (f *Factory) Sources() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.registry))
	for name := range f.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	defaultFactory     *Factory
	defaultFactoryOnce sync.Once
)

// Default returns the process-wide factory. Adapters are registered into it
// at startup.
func Default() *Factory {
	defaultFactoryOnce.Do(func() {
		defaultFactory = NewFactory()
	})
	return defaultFactory
}
