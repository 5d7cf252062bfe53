package database

import "fmt"

// Backend names accepted in the storage configuration.
const (
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// ManagerFactory builds a Manager rooted at path.
type ManagerFactory func(path string) Manager

var factories = map[string]ManagerFactory{}

// RegisterBackend makes a backend available to NewManager. Backends register
// themselves from their package init.
func RegisterBackend(name string, factory ManagerFactory) {
	factories[name] = factory
}

// NewManager returns a Manager for the named backend.
func NewManager(backend, path string) (Manager, error) {
	factory, ok := factories[backend]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
	return factory(path), nil
}
