package alarm

import (
	"fmt"

	"github.com/oshokin/lidar-alarm/internal/domain/scan"
	"github.com/oshokin/lidar-alarm/internal/domain/sector"
)

// Policy decides how readings outside the sensor's calibrated range are treated.
type Policy string

const (
	// PolicyPassThrough compares every reading against the threshold as is.
	PolicyPassThrough Policy = "passthrough"
	// PolicyViolate treats a non-finite or out-of-calibration reading as too close.
	PolicyViolate Policy = "violate"
)

// ParsePolicy converts a config value to a Policy. Empty selects PolicyPassThrough.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyPassThrough:
		return PolicyPassThrough, nil
	case PolicyViolate:
		return PolicyViolate, nil
	default:
		return "", fmt.Errorf("unknown invalid range policy %q", s)
	}
}

// NotResolvedError is returned when a sector has no resolved index.
type NotResolvedError struct {
	Sector sector.Name
}

// Error implements error.
func (e *NotResolvedError) Error() string {
	return fmt.Sprintf("sector %q has no resolved index", e.Sector)
}

// Limits describes the calibrated range of the sensor that produced the ranges.
type Limits struct {
	RangeMin float64
	RangeMax float64
}

// options collects the optional Evaluate parameters.
type options struct {
	policy Policy
	limits Limits
}

// Option configures Evaluate.
type Option func(*options)

// WithPolicy selects how out-of-calibration readings are compared.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		if p != "" {
			o.policy = p
		}
	}
}

// WithLimits supplies the sensor range limits used by PolicyViolate.
func WithLimits(l Limits) Option {
	return func(o *options) {
		o.limits = l
	}
}

// Evaluate decides the alarm for one frame.
//
// Sectors are checked in table order and the first whose range is strictly
// below its threshold wins. ForwardDistance always carries the front reading.
// The returned state has no Timestamp or Sequence; the caller stamps them.
func Evaluate(ranges []float64, indices sector.Indices, table *sector.Table, opts ...Option) (State, error) {
	o := options{policy: PolicyPassThrough}
	for _, opt := range opts {
		opt(&o)
	}

	// Every sector must be readable before any is compared, so a missing or
	// out-of-range index fails the frame even when a higher priority sector triggers.
	readings := make([]float64, 0, table.Len())

	var err error

	table.Each(func(s sector.Spec) bool {
		var r float64

		r, err = reading(ranges, indices, s.Name)
		if err != nil {
			return false
		}

		readings = append(readings, r)

		return true
	})

	if err != nil {
		return State{}, err
	}

	front, err := reading(ranges, indices, sector.Front)
	if err != nil {
		return State{}, err
	}

	state := State{ForwardDistance: front}

	for i, s := range table.Specs() {
		if !o.violates(readings[i], s.MinSafeDistance) {
			continue
		}

		state.Active = true
		state.TriggeringSector = s.Name
		state.TriggeringRange = readings[i]

		break
	}

	return state, nil
}

// violates applies the policy to one reading.
func (o *options) violates(r, threshold float64) bool {
	if o.policy == PolicyViolate && !scan.InCalibration(r, o.limits.RangeMin, o.limits.RangeMax) {
		return true
	}

	return r < threshold
}

// reading returns the range for a sector, or a typed error when it cannot be read.
func reading(ranges []float64, indices sector.Indices, name sector.Name) (float64, error) {
	idx, ok := indices.Get(name)
	if !ok {
		return 0, &NotResolvedError{Sector: name}
	}

	if idx < 0 || idx >= len(ranges) {
		return 0, &sector.GeometryError{Sector: name, Index: idx, Geometry: scanGeometryOf(ranges)}
	}

	return ranges[idx], nil
}

// scanGeometryOf describes a ranges slice whose angles are unknown at this level.
func scanGeometryOf(ranges []float64) scan.Geometry {
	return scan.Geometry{Samples: len(ranges)}
}
