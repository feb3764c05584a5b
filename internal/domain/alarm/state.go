package alarm

import (
	"time"

	"github.com/oshokin/lidar-alarm/internal/domain/sector"
)

// State is the outcome of one evaluation cycle.
type State struct {
	// Timestamp is the acquisition time of the frame the state was computed from.
	Timestamp time.Time
	// Sequence numbers evaluation cycles, starting at 1. Zero means no scan was evaluated yet.
	Sequence uint64
	// Active is true when at least one sector is closer than its threshold.
	Active bool
	// ForwardDistance is the range measured by the front sector, whatever triggered.
	ForwardDistance float64
	// TriggeringSector is the highest-priority violated sector, empty when inactive.
	TriggeringSector sector.Name
	// TriggeringRange is the range measured in TriggeringSector.
	TriggeringRange float64
}

// Clone returns a copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}

// Changed reports whether s differs from prev in a way consumers act upon:
// the alarm switched, or a different sector is now responsible for it.
func (s *State) Changed(prev *State) bool {
	if prev == nil {
		return true
	}

	return s.Active != prev.Active || s.TriggeringSector != prev.TriggeringSector
}

// Evaluated reports whether the state comes from an actual scan.
func (s *State) Evaluated() bool {
	return s != nil && s.Sequence > 0
}
