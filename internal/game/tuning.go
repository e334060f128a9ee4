package game

const (
	SimTickHz = 60

	PlayfieldWidth  = 800.0
	PlayfieldHeight = 400.0

	PaddleHeight = 80.0
	PaddleWidth  = 12.0
	PaddleSpeed  = 6.0 // per tick while a direction key is held

	BallBaseSpeed    = 4.0
	DefaultSpeedRamp = 1.05 // applied on every score event
	DefaultMaxSpeed  = 12.0
	ServeMaxVY       = 0.6 // bounds the serve angle off horizontal

	HazardHalfHeight = 30.0

	MaxSeats = 4
)

// Tuning carries the per-room overridable knobs; everything else above is
// fixed for all rooms.
type Tuning struct {
	SpeedRamp  float64
	MaxSpeed   float64
	HazardRate float64 // expected hazard relocations per second, 0 disables
}

func DefaultTuning() Tuning {
	return Tuning{SpeedRamp: DefaultSpeedRamp, MaxSpeed: DefaultMaxSpeed}
}
