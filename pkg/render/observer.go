package render

import "time"

// DrainStats describes one drain of the invalidation queue.
type DrainStats struct {
	// Invalidations is the number of distinct instances taken from the queue.
	Invalidations int
	// Rendered counts component render calls, including child components
	// re-rendered because their properties changed.
	Rendered int

	Created int
	Updated int
	Moved   int
	Removed int

	// Instances is the number of live component instances after the drain.
	Instances int

	Sync     bool
	Duration time.Duration
}

// Observer is notified around every drain. Implementations live in
// pkg/telemetry.
type Observer interface {
	DrainStarted()
	DrainFinished(stats DrainStats)
}
