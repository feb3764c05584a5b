package alarm

import "time"

const (
	testTimeout = 2 * time.Second
	testTick    = 10 * time.Millisecond
)
