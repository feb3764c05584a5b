package sector

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/oshokin/lidar-alarm/internal/domain/scan"
	"github.com/oshokin/lidar-alarm/internal/logger"
)

// Indices maps every sector of a table to a sample index. It is immutable.
type Indices struct {
	byName map[Name]int
}

// NewIndices copies m into an Indices value.
func NewIndices(m map[Name]int) Indices {
	byName := make(map[Name]int, len(m))
	for k, v := range m {
		byName[k] = v
	}

	return Indices{byName: byName}
}

// Get returns the index for name.
func (i Indices) Get(name Name) (int, bool) {
	idx, ok := i.byName[name]

	return idx, ok
}

// Len returns the number of resolved sectors.
func (i Indices) Len() int {
	return len(i.byName)
}

// Map returns a copy of the mapping.
func (i Indices) Map() map[Name]int {
	out := make(map[Name]int, len(i.byName))
	for k, v := range i.byName {
		out[k] = v
	}

	return out
}

// Equal reports whether both values map the same sectors to the same indices.
func (i Indices) Equal(other Indices) bool {
	if len(i.byName) != len(other.byName) {
		return false
	}

	for k, v := range i.byName {
		if w, ok := other.byName[k]; !ok || w != v {
			return false
		}
	}

	return true
}

// Index computes the sample index of a bearing.
//
// Bearings at or right of forward count steps up from AngleMin. Bearings on the
// left count steps down from AngleMax and convert back with (N-1)-steps, which
// keeps left sectors aligned with the last sample when a driver's sample count
// is off by one. When N-1 equals span/increment both forms give
// round((bearing-AngleMin)/increment).
func Index(g scan.Geometry, bearing float64) int {
	if bearing > 0 {
		return g.Samples - 1 - int(math.Round((g.AngleMax-bearing)/g.AngleIncrement))
	}

	return int(math.Round((bearing - g.AngleMin) / g.AngleIncrement))
}

// Resolve computes the index of every sector in t for geometry g.
// The first sector whose index leaves [0, Samples) fails the whole geometry.
func Resolve(g scan.Geometry, t *Table) (Indices, error) {
	if err := g.Validate(); err != nil {
		return Indices{}, err
	}

	byName := make(map[Name]int, t.Len())

	for _, s := range t.specs {
		idx := Index(g, s.Bearing)
		if idx < 0 || idx >= g.Samples {
			return Indices{}, &GeometryError{Sector: s.Name, Index: idx, Geometry: g}
		}

		byName[s.Name] = idx
	}

	return Indices{byName: byName}, nil
}

// resolution is one cached outcome of Resolve.
type resolution struct {
	geometry scan.Geometry
	indices  Indices
	err      error
}

// Resolver caches the indices of the last geometry it saw.
// A geometry is resolved once; later frames with an equal geometry reuse the
// result, including a failed one.
type Resolver struct {
	table *Table

	mu   sync.Mutex
	last *resolution
	runs int
}

// NewResolver returns a resolver for t with nothing cached.
func NewResolver(t *Table) *Resolver {
	return &Resolver{table: t}
}

// Resolve returns the indices for g, computing them only if g differs from the cached geometry.
func (r *Resolver) Resolve(ctx context.Context, g scan.Geometry) (Indices, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last != nil && r.last.geometry.Equal(g) {
		return r.last.indices, r.last.err
	}

	r.runs++

	indices, err := Resolve(g, r.table)
	if err != nil {
		err = fmt.Errorf("resolve sector indices: %w", err)
		r.last = &resolution{geometry: g, err: err}

		logger.ErrorKV(ctx, "Scan geometry rejected", "geometry", g.String(), "error", err)

		return Indices{}, err
	}

	r.last = &resolution{geometry: g, indices: indices}

	kvs := make([]any, 0, 2*r.table.Len()+2)
	kvs = append(kvs, "geometry", g.String())

	for _, s := range r.table.specs {
		idx, _ := indices.Get(s.Name)
		kvs = append(kvs, string(s.Name), idx)
	}

	logger.InfoKV(ctx, "Sector indices resolved", kvs...)

	return indices, nil
}

// Cached returns the last resolved indices, if any succeeded.
func (r *Resolver) Cached() (Indices, scan.Geometry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last == nil || r.last.err != nil {
		return Indices{}, scan.Geometry{}, false
	}

	return r.last.indices, r.last.geometry, true
}

// Runs returns how many times a geometry was actually resolved.
func (r *Resolver) Runs() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.runs
}
