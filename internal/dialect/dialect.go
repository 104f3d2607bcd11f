// Package dialect wires the per-dialect finder, handler, generator and comparator together.
// It is the only place that knows which dialects exist.
package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/schemasync/schemasync/internal/ddl"
	"github.com/schemasync/schemasync/internal/ddl/kinetica"
	"github.com/schemasync/schemasync/internal/ddl/mysql"
	"github.com/schemasync/schemasync/internal/ddl/postgres"
	"github.com/schemasync/schemasync/internal/diff"
)

const (
	MySQL    = "mysql"
	Kinetica = "kinetica"
	Postgres = "postgres"
)

var (
	ErrUnknownDialect    = errors.New("unknown dialect")
	ErrDuplicateDialect  = errors.New("dialect already registered")
	ErrMissingName       = errors.New("dialect has no name")
	ErrMissingHandler    = errors.New("dialect has no change handler")
	ErrMissingGenerator  = errors.New("dialect has no DDL generator")
	ErrMissingComparator = errors.New("dialect has no comparator")
)

// Dialect bundles the collaborators for one target database
type Dialect struct {
	Name       string
	Finder     *diff.Finder
	Handler    *ddl.Handler
	Generator  ddl.Generator
	Comparator diff.Comparator
}

// New assembles a dialect from its generator, comparator and statement separator
func New(name string, generator ddl.Generator, comparator diff.Comparator, separator string) (*Dialect, error) {
	d := &Dialect{
		Name:       name,
		Finder:     diff.NewFinder(comparator),
		Handler:    ddl.NewHandler(generator, separator),
		Generator:  generator,
		Comparator: comparator,
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dialect) validate() error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return ErrMissingName
	case d.Comparator == nil || d.Finder == nil || d.Finder.Comparator() == nil:
		return fmt.Errorf("%w: %s", ErrMissingComparator, d.Name)
	case d.Generator == nil:
		return fmt.Errorf("%w: %s", ErrMissingGenerator, d.Name)
	case d.Handler == nil || d.Handler.Generator() == nil:
		return fmt.Errorf("%w: %s", ErrMissingHandler, d.Name)
	}
	return nil
}

// Registry maps dialect names to dialects. Names are case-insensitive.
type Registry struct {
	mu       sync.RWMutex
	dialects map[string]*Dialect
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{dialects: make(map[string]*Dialect)}
}

// Register adds a dialect after checking that it is complete
func (r *Registry) Register(d *Dialect) error {
	if d == nil {
		return ErrMissingName
	}
	if err := d.validate(); err != nil {
		return err
	}

	key := strings.ToLower(strings.TrimSpace(d.Name))
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.dialects[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateDialect, d.Name)
	}
	r.dialects[key] = d
	return nil
}

// Lookup returns the dialect registered under name
func (r *Registry) Lookup(name string) (*Dialect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dialects[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownDialect, name, strings.Join(r.namesLocked(), ", "))
	}
	return d, nil
}

// Names returns the registered dialect names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.dialects))
	for name := range r.dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range []*Dialect{
		mustNew(MySQL, mysql.NewGenerator(), mysql.NewComparator(), mysql.Separator),
		mustNew(Kinetica, kinetica.NewGenerator(), kinetica.NewComparator(), kinetica.Separator),
		mustNew(Postgres, postgres.NewGenerator(), postgres.NewComparator(), postgres.Separator),
	} {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

func mustNew(name string, generator ddl.Generator, comparator diff.Comparator, separator string) *Dialect {
	d, err := New(name, generator, comparator, separator)
	if err != nil {
		panic(err)
	}
	return d
}

// Lookup returns a built-in dialect by name
func Lookup(name string) (*Dialect, error) {
	return defaultRegistry.Lookup(name)
}

// Names returns the built-in dialect names, sorted
func Names() []string {
	return defaultRegistry.Names()
}
