package game

import (
	"math/rand"
	"time"
)

// SimState is the authoritative simulation state for one running match.
// Seats map onto the playfield by parity: even seats defend the left
// plane, odd seats the right. Scores are kept per side.
type SimState struct {
	Tick uint64

	PaddleY [MaxSeats]float64
	PaddleV [MaxSeats]float64
	Active  [MaxSeats]bool

	BallX, BallY   float64
	BallVX, BallVY float64 // direction, roughly unit length
	BallSpeed      float64

	Scores         [2]int
	Round          int
	RoundStartedAt time.Time

	HazardY      float64
	hazardArmed  bool
	Tuning       Tuning
}

// TeamOf maps a seat index to its side of the playfield.
func TeamOf(seat int) int { return seat % 2 }

func NewSim(active [MaxSeats]bool, tuning Tuning, rng *rand.Rand, now time.Time) *SimState {
	s := &SimState{
		Active:         active,
		BallSpeed:      BallBaseSpeed,
		Round:          0,
		RoundStartedAt: now,
		Tuning:         tuning,
	}
	for i := range s.PaddleY {
		s.PaddleY[i] = (PlayfieldHeight - PaddleHeight) / 2
	}
	s.Serve(rng)
	return s
}

// Serve puts the ball at the center with a fresh pseudo-random direction:
// horizontal sign is a coin flip, vertical component uniform within the
// serve angle bound. Speed is left to the caller.
func (s *SimState) Serve(rng *rand.Rand) {
	s.BallX = PlayfieldWidth / 2
	s.BallY = PlayfieldHeight / 2
	s.BallVX = 1
	if rng.Intn(2) == 0 {
		s.BallVX = -1
	}
	s.BallVY = (rng.Float64()*2 - 1) * ServeMaxVY
}

// ResetRound zeroes both scores and restarts the clock for the next round.
func (s *SimState) ResetRound(rng *rand.Rand, now time.Time) {
	s.Scores[0] = 0
	s.Scores[1] = 0
	s.Round++
	s.RoundStartedAt = now
	s.BallSpeed = BallBaseSpeed
	s.Serve(rng)
}

// Snapshot is the per-tick broadcast viewmodel. The left/right fields
// carry the primary pair of paddles; PaddleY carries all four in arena
// rooms.
type Snapshot struct {
	Type         string    `json:"type"`
	LeftScore    int       `json:"leftScore"`
	RightScore   int       `json:"rightScore"`
	BallX        float64   `json:"ball_x"`
	BallY        float64   `json:"ball_y"`
	LeftPaddleY  float64   `json:"left_paddle_y"`
	RightPaddleY float64   `json:"right_paddle_y"`
	LeftSpeed    float64   `json:"left_speed"`
	RightSpeed   float64   `json:"right_speed"`
	PaddleY      []float64 `json:"paddle_y,omitempty"`
	Round        int       `json:"round"`
	BallSpeed    float64   `json:"ball_speed"`
}

func (s *SimState) Snap() Snapshot {
	snap := Snapshot{
		Type:         "game_state",
		LeftScore:    s.Scores[0],
		RightScore:   s.Scores[1],
		BallX:        s.BallX,
		BallY:        s.BallY,
		LeftPaddleY:  s.PaddleY[0],
		RightPaddleY: s.PaddleY[1],
		LeftSpeed:    s.PaddleV[0],
		RightSpeed:   s.PaddleV[1],
		Round:        s.Round,
		BallSpeed:    s.BallSpeed,
	}
	if s.Active[2] || s.Active[3] {
		snap.PaddleY = append([]float64(nil), s.PaddleY[:]...)
	}
	return snap
}
