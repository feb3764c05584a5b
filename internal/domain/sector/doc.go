// Package sector holds the monitored bearings, their safety thresholds, and
// the resolver that turns a scan geometry into one sample index per bearing.
//
// A Table is ordered: the order is the priority in which sectors are
// evaluated, and the first violated sector is the one reported.
package sector
