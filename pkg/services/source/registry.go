package source

import (
	"database/sql"
	"fmt"
	"sync"

	sqlstore "github.com/de-tools/peg-lens/pkg/store/sql"
)

// Source is an open counter warehouse connection.
type Source struct {
	Rows sqlstore.RowSource
	db   *sql.DB
}

func (s *Source) Close() error {
	return s.db.Close()
}

// Factory opens a Source from a named profile in a credentials file.
type Factory func(profilePath, profile, table string) (*Source, error)

// Registry manages warehouse backend factories, keyed by backend name
// ("postgres", "databricks", "snowflake").
type Registry interface {
	// Register adds a new backend factory.
	Register(backend string, factory Factory) error
	// Open instantiates a source for the backend using the given profile.
	Open(backend, profilePath, profile, table string) (*Source, error)
	// ListBackends returns the registered backend names.
	ListBackends() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty backend registry.
func NewRegistry() Registry {
	return &registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with every built-in backend registered.
func DefaultRegistry() Registry {
	r := NewRegistry()
	_ = r.Register("postgres", PostgresFactory)
	_ = r.Register("databricks", DatabricksFactory)
	_ = r.Register("snowflake", SnowflakeFactory)
	return r
}

func (r *registry) Register(backend string, factory Factory) error {
	if backend == "" {
		return fmt.Errorf("backend name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[backend]; exists {
		return fmt.Errorf("backend %q is already registered", backend)
	}

	r.factories[backend] = factory
	return nil
}

func (r *registry) Open(backend, profilePath, profile, table string) (*Source, error) {
	r.mu.RLock()
	factory, exists := r.factories[backend]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("backend %q is not registered", backend)
	}

	return factory(profilePath, profile, table)
}

func (r *registry) ListBackends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	backends := make([]string, 0, len(r.factories))
	for backend := range r.factories {
		backends = append(backends, backend)
	}
	return backends
}
