// Package layer loads named GeoJSON datasets into in-memory feature
// collections. Layers are immutable after load and cached for the process
// lifetime.
package layer

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/paulmach/orb/geojson"
)

// ErrUnknownLayer is returned when a requested layer name is not configured.
var ErrUnknownLayer = errors.New("unknown layer")

// Layer is a named, read-only GeoJSON feature collection.
type Layer struct {
	Name       string
	Path       string
	Collection *geojson.FeatureCollection
}

// Count returns the number of features in the layer.
func (l *Layer) Count() int {
	if l.Collection == nil {
		return 0
	}
	return len(l.Collection.Features)
}

// Store maps layer names to datasets and caches collections on first use.
// Loads are idempotent: concurrent first-loads of the same layer retain a
// single cached copy. The store is constructed once at startup and injected
// into the tool dispatcher.
type Store struct {
	mu      sync.RWMutex
	sources map[string]string
	loaded  map[string]*Layer
}

// NewStore builds a store from a name -> GeoJSON path mapping.
func NewStore(sources map[string]string) *Store {
	srcs := make(map[string]string, len(sources))
	for name, path := range sources {
		srcs[name] = path
	}
	return &Store{
		sources: srcs,
		loaded:  make(map[string]*Layer),
	}
}

// Names lists the configured layer names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a layer name is configured (loaded or not).
func (s *Store) Has(name string) bool {
	_, ok := s.sources[name]
	return ok
}

// Get returns the named layer, loading it from disk on first use.
func (s *Store) Get(name string) (*Layer, error) {
	s.mu.RLock()
	l, ok := s.loaded[name]
	s.mu.RUnlock()
	if ok {
		return l, nil
	}

	path, ok := s.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayer, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have loaded it while we waited.
	if l, ok := s.loaded[name]; ok {
		return l, nil
	}

	fc, err := readCollection(path)
	if err != nil {
		return nil, err
	}

	l = &Layer{Name: name, Path: path, Collection: fc}
	s.loaded[name] = l
	return l, nil
}

func readCollection(path string) (*geojson.FeatureCollection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	return fc, nil
}
