package scan

import (
	"fmt"
	"math"
)

// sampleTolerance is how far the sample count may drift from the count implied
// by the angular span. Drivers disagree on whether AngleMax is inclusive.
const sampleTolerance = 1

// Geometry is the part of a frame that determines bearing-to-index mapping.
// Two geometries are equal when all four fields are equal.
type Geometry struct {
	AngleMin       float64
	AngleMax       float64
	AngleIncrement float64
	Samples        int
}

// Equal reports whether g and other describe the same sample layout.
func (g Geometry) Equal(other Geometry) bool {
	return g == other
}

// Span returns AngleMax - AngleMin.
func (g Geometry) Span() float64 {
	return g.AngleMax - g.AngleMin
}

// ExpectedSamples is round(span/increment)+1, the count implied by the angles.
func (g Geometry) ExpectedSamples() int {
	return int(math.Round(g.Span()/g.AngleIncrement)) + 1
}

// Validate checks the geometry for values that make index arithmetic meaningless.
func (g Geometry) Validate() error {
	for name, v := range map[string]float64{
		"angle_min":       g.AngleMin,
		"angle_max":       g.AngleMax,
		"angle_increment": g.AngleIncrement,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrMalformedFrame, name)
		}
	}

	if g.AngleIncrement <= 0 {
		return fmt.Errorf("%w: angle_increment %g must be positive", ErrMalformedFrame, g.AngleIncrement)
	}

	if g.AngleMax < g.AngleMin {
		return fmt.Errorf("%w: angle_max %g is below angle_min %g", ErrMalformedFrame, g.AngleMax, g.AngleMin)
	}

	if g.Samples <= 0 {
		return fmt.Errorf("%w: no range samples", ErrMalformedFrame)
	}

	expected := g.ExpectedSamples()
	if diff := g.Samples - expected; diff > sampleTolerance || diff < -sampleTolerance {
		return fmt.Errorf("%w: %d samples, angles imply %d", ErrMalformedFrame, g.Samples, expected)
	}

	return nil
}

// String renders the geometry for log records.
func (g Geometry) String() string {
	return fmt.Sprintf("[%.4f, %.4f] step %.6f, %d samples", g.AngleMin, g.AngleMax, g.AngleIncrement, g.Samples)
}
