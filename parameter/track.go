package parameter

import "time"

// Track Layout
const (
	// SegmentStride is the fixed forward length of every segment template
	SegmentStride = 50.0

	// InitialCursor is where the first segment of a new track is placed
	InitialCursor = 50.0

	// DestroyDistance is how far behind the player a segment survives before culling
	DestroyDistance = 100.0
)

// Spawn Pacing
const (
	// BaseSpawnDelay is the wait between spawns at or below SpeedThreshold
	BaseSpawnDelay = 2300 * time.Millisecond

	// FastSpawnDelay is the wait between spawns above SpeedThreshold
	FastSpawnDelay = 1000 * time.Millisecond

	// SpeedThreshold is the player speed that switches pacing to FastSpawnDelay
	SpeedThreshold = 20.0
)
