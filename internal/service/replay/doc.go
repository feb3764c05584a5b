// Package replay pushes recorded or synthesized scan frames to the alarm
// server. It stands in for the lidar driver on a bench: frames come from a
// YAML file or a uniform sweep with optional obstacles placed on sectors.
package replay
