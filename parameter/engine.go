package parameter

import "time"

// Game Loop & Engine Timing
const (
	// FrameUpdateInterval is the terminal redraw interval (~30 FPS)
	FrameUpdateInterval = 33 * time.Millisecond

	// GameUpdateInterval is the simulation tick interval
	GameUpdateInterval = 20 * time.Millisecond

	// MaxDeltaTime caps a single tick's elapsed time after a stall or resume
	MaxDeltaTime = 250 * time.Millisecond

	// BroadcastInterval is how often the network feed publishes a snapshot
	BroadcastInterval = 250 * time.Millisecond
)
