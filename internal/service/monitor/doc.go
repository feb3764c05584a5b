// Package monitor runs the proximity evaluator over a stream of scan frames.
//
// A Monitor owns the sector table, the geometry resolver cache and the
// latest alarm state. Frames are processed one at a time; Submit keeps only
// the newest pending frame so a slow cycle never builds a backlog. Every
// cycle's state is swapped in atomically and then pushed to the sinks.
package monitor
