// Package scan defines a single planar range scan and the geometry that maps
// its samples to bearings.
//
// Angles follow the right-handed sensor frame: zero points forward and angles
// grow counter-clockwise, so negative bearings are on the right.
package scan
