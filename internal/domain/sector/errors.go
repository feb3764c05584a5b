package sector

import (
	"fmt"

	"github.com/oshokin/lidar-alarm/internal/domain/scan"
)

// GeometryError reports a sector whose bearing falls outside the scan.
type GeometryError struct {
	// Sector is the first sector that could not be placed.
	Sector Name
	// Index is the computed, out-of-range sample index.
	Index int
	// Geometry is the scan layout the index was computed for.
	Geometry scan.Geometry
}

// Error implements error.
func (e *GeometryError) Error() string {
	return fmt.Sprintf("sector %q resolves to index %d outside [0, %d) for scan %s",
		e.Sector, e.Index, e.Geometry.Samples, e.Geometry)
}
