package game

import "math/rand"

// Step advances the simulation by one tick and returns the side that
// scored (0 or 1), or -1 when play continues. The caller owns all
// serialization; Step never blocks.
func Step(s *SimState, rng *rand.Rand) int {
	s.Tick++

	for seat := 0; seat < MaxSeats; seat++ {
		if !s.Active[seat] {
			continue
		}
		y := s.PaddleY[seat] + s.PaddleV[seat]
		if y < 0 {
			y = 0
		}
		if y > PlayfieldHeight-PaddleHeight {
			y = PlayfieldHeight - PaddleHeight
		}
		s.PaddleY[seat] = y
	}

	s.BallX += s.BallVX * s.BallSpeed
	s.BallY += s.BallVY * s.BallSpeed

	if s.BallY <= 0 {
		s.BallY = -s.BallY
		s.BallVY = -s.BallVY
	} else if s.BallY >= PlayfieldHeight {
		s.BallY = 2*PlayfieldHeight - s.BallY
		s.BallVY = -s.BallVY
	}

	s.stepHazard(rng)

	if s.BallVX < 0 && s.BallX <= PaddleWidth {
		if s.defended(0) {
			s.BallX = 2*PaddleWidth - s.BallX
			s.BallVX = -s.BallVX
			return -1
		}
		return s.score(1, rng)
	}
	if s.BallVX > 0 && s.BallX >= PlayfieldWidth-PaddleWidth {
		if s.defended(1) {
			s.BallX = 2*(PlayfieldWidth-PaddleWidth) - s.BallX
			s.BallVX = -s.BallVX
			return -1
		}
		return s.score(0, rng)
	}
	return -1
}

// defended reports whether any active paddle on the given side covers the
// ball's vertical position at its plane.
func (s *SimState) defended(team int) bool {
	for seat := team; seat < MaxSeats; seat += 2 {
		if !s.Active[seat] {
			continue
		}
		if s.BallY >= s.PaddleY[seat] && s.BallY <= s.PaddleY[seat]+PaddleHeight {
			return true
		}
	}
	return false
}

func (s *SimState) score(team int, rng *rand.Rand) int {
	s.Scores[team]++
	s.BallSpeed *= s.Tuning.SpeedRamp
	if s.BallSpeed > s.Tuning.MaxSpeed {
		s.BallSpeed = s.Tuning.MaxSpeed
	}
	s.Serve(rng)
	return team
}

// stepHazard relocates the midfield hazard band at the configured rate and
// deflects the ball vertically when it crosses the center inside the band.
func (s *SimState) stepHazard(rng *rand.Rand) {
	if s.Tuning.HazardRate <= 0 {
		return
	}
	if rng.Float64() < s.Tuning.HazardRate/SimTickHz {
		s.HazardY = rng.Float64() * PlayfieldHeight
		s.hazardArmed = true
	}
	if !s.hazardArmed {
		return
	}
	center := PlayfieldWidth / 2
	if s.BallX >= center-s.BallSpeed && s.BallX <= center+s.BallSpeed &&
		s.BallY >= s.HazardY-HazardHalfHeight && s.BallY <= s.HazardY+HazardHalfHeight {
		s.BallVY = -s.BallVY
		s.hazardArmed = false
	}
}
