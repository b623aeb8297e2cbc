package parameter

// Player Speed
// Speed = BaseSpeed * PickupSpeedMultiplier^pickups
const (
	// BaseSpeed is the forward speed with zero pickups collected (units/second)
	BaseSpeed = 10.0

	// PickupSpeedMultiplier compounds the speed once per collected pickup
	PickupSpeedMultiplier = 1.05

	// MaxSpeed caps the compounded speed
	MaxSpeed = 1000.0
)
