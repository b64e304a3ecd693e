package events

import "time"

// SchemaBuild is emitted once a federation schema build has finished, whether
// it succeeded or not.
type SchemaBuild struct {
	Gateway   bool
	Fragments int
	Types     int
	Entities  []string
	Err       error
	Duration  time.Duration
}
