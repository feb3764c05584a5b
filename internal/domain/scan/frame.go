package scan

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMalformedFrame is returned by Validate for frames whose fields are inconsistent.
var ErrMalformedFrame = errors.New("malformed scan frame")

// Frame is one sweep of range measurements.
type Frame struct {
	// Timestamp is the acquisition time of the first sample.
	Timestamp time.Time
	// AngleMin is the bearing of Ranges[0], radians.
	AngleMin float64
	// AngleMax is the bearing of the last sample, radians.
	AngleMax float64
	// AngleIncrement is the angular step between samples, radians.
	AngleIncrement float64
	// RangeMin is the shortest distance the sensor reports reliably, meters.
	RangeMin float64
	// RangeMax is the longest distance the sensor reports reliably, meters.
	RangeMax float64
	// Ranges holds the measured distances in meters, ordered from AngleMin.
	Ranges []float64
}

// Geometry returns the fields that determine how bearings map to indices.
func (f *Frame) Geometry() Geometry {
	return Geometry{
		AngleMin:       f.AngleMin,
		AngleMax:       f.AngleMax,
		AngleIncrement: f.AngleIncrement,
		Samples:        len(f.Ranges),
	}
}

// Validate rejects frames that cannot be resolved to sector indices.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: frame is nil", ErrMalformedFrame)
	}

	if len(f.Ranges) == 0 {
		return fmt.Errorf("%w: no range samples", ErrMalformedFrame)
	}

	return f.Geometry().Validate()
}

// InCalibration reports whether the sample at i is finite and within [RangeMin, RangeMax].
// Bounds are only checked when the sensor declares them (RangeMax > 0).
func (f *Frame) InCalibration(i int) bool {
	if i < 0 || i >= len(f.Ranges) {
		return false
	}

	return InCalibration(f.Ranges[i], f.RangeMin, f.RangeMax)
}

// InCalibration reports whether r is a usable reading for the given sensor limits.
func InCalibration(r, rangeMin, rangeMax float64) bool {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return false
	}

	if rangeMax <= 0 {
		return true
	}

	return r >= rangeMin && r <= rangeMax
}
