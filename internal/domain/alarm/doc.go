// Package alarm contains the proximity alarm decision.
//
// Evaluate walks a sector table in priority order over one frame's ranges and
// returns a State: whether any sector is closer than its threshold, which
// sector tripped first, and the forward clearance.
package alarm
