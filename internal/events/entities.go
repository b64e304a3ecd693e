package events

import "time"

// EntitiesStart is emitted before the representations of one _entities call
// are resolved.
type EntitiesStart struct {
	Representations int
}

// EntitiesFinish is emitted after an _entities call. Errors counts the
// positions that failed; Loads counts batched loader invocations.
type EntitiesFinish struct {
	Representations int
	Errors          int
	Loads           int
	Duration        time.Duration
}
