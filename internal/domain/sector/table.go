package sector

import (
	"errors"
	"fmt"
	"math"
)

// Name identifies a monitored sector.
type Name string

// Sector names of the default table.
const (
	Front   Name = "front"
	Left90  Name = "left_90"
	Left45  Name = "left_45"
	Left30  Name = "left_30"
	Right90 Name = "right_90"
	Right45 Name = "right_45"
	Right30 Name = "right_30"
)

// Spec configures one sector.
type Spec struct {
	// Name identifies the sector in logs and alarm states.
	Name Name
	// Bearing is the sector direction in radians, 0 forward, positive to the left.
	Bearing float64
	// MinSafeDistance is the range in meters below which the sector raises the alarm.
	MinSafeDistance float64
}

// Left reports whether the sector lies on the counter-clockwise side of forward.
func (s Spec) Left() bool {
	return s.Bearing > 0
}

// Table is an immutable, priority-ordered set of sectors.
type Table struct {
	specs []Spec
}

var (
	// ErrEmptyTable is returned when no sectors are configured.
	ErrEmptyTable = errors.New("sector table is empty")
	// ErrNoFrontSector is returned when the table lacks the forward sector.
	ErrNoFrontSector = errors.New("sector table must contain the front sector")
	// ErrInvalidSpec is returned for sectors with a bad name, bearing or threshold.
	ErrInvalidSpec = errors.New("invalid sector spec")
)

// DefaultTable returns the seven standard sectors in priority order:
// front first, then the left side from 90 degrees inwards, then the right side.
func DefaultTable() *Table {
	return &Table{
		specs: []Spec{
			{Name: Front, Bearing: 0, MinSafeDistance: 1.0},
			{Name: Left90, Bearing: math.Pi / 2, MinSafeDistance: 0.6},
			{Name: Left45, Bearing: math.Pi / 4, MinSafeDistance: 0.75},
			{Name: Left30, Bearing: math.Pi / 6, MinSafeDistance: 0.8},
			{Name: Right90, Bearing: -math.Pi / 2, MinSafeDistance: 0.6},
			{Name: Right45, Bearing: -math.Pi / 4, MinSafeDistance: 0.75},
			{Name: Right30, Bearing: -math.Pi / 6, MinSafeDistance: 0.8},
		},
	}
}

// NewTable validates specs and returns them as a table in the given order.
func NewTable(specs ...Spec) (*Table, error) {
	if len(specs) == 0 {
		return nil, ErrEmptyTable
	}

	seen := make(map[Name]struct{}, len(specs))
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidSpec)
		}

		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate sector %q", ErrInvalidSpec, s.Name)
		}

		seen[s.Name] = struct{}{}

		if math.IsNaN(s.Bearing) || math.IsInf(s.Bearing, 0) || math.Abs(s.Bearing) > math.Pi {
			return nil, fmt.Errorf("%w: sector %q bearing %g outside [-pi, pi]", ErrInvalidSpec, s.Name, s.Bearing)
		}

		if !(s.MinSafeDistance > 0) || math.IsInf(s.MinSafeDistance, 0) {
			return nil, fmt.Errorf("%w: sector %q threshold %g must be positive", ErrInvalidSpec, s.Name, s.MinSafeDistance)
		}
	}

	if _, ok := seen[Front]; !ok {
		return nil, ErrNoFrontSector
	}

	return &Table{specs: append([]Spec(nil), specs...)}, nil
}

// Specs returns a copy of the sectors in priority order.
func (t *Table) Specs() []Spec {
	return append([]Spec(nil), t.specs...)
}

// Len returns the number of sectors.
func (t *Table) Len() int {
	return len(t.specs)
}

// Lookup returns the spec with the given name.
func (t *Table) Lookup(name Name) (Spec, bool) {
	for _, s := range t.specs {
		if s.Name == name {
			return s, true
		}
	}

	return Spec{}, false
}

// Each calls fn for every sector in priority order until fn returns false.
func (t *Table) Each(fn func(Spec) bool) {
	for _, s := range t.specs {
		if !fn(s) {
			return
		}
	}
}
