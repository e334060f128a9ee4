package bracket

import (
	"fmt"
	"time"
)

type Format string

const (
	FormatSingleElim Format = "single_elimination"
	FormatRoundRobin Format = "round_robin"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchOngoing   MatchStatus = "ongoing"
	MatchCompleted MatchStatus = "completed"
)

type Match struct {
	ID          string
	Competitors [2]Competitor
	Scores      [2]int
	Winner      *Competitor
	Status      MatchStatus
	StartedAt   time.Time
	EndedAt     time.Time
}

// Finish records the outcome of a match. The winner must be one of the
// match's competitors.
func (m *Match) Finish(scores [2]int, winner Competitor, now time.Time) error {
	if winner != m.Competitors[0] && winner != m.Competitors[1] {
		return ErrUnknownCompetitor
	}
	m.Scores = scores
	w := winner
	m.Winner = &w
	m.Status = MatchCompleted
	m.EndedAt = now
	return nil
}

type RoundStatus string

const (
	RoundPending   RoundStatus = "pending"
	RoundOngoing   RoundStatus = "ongoing"
	RoundCompleted RoundStatus = "completed"
)

type Round struct {
	Number      int // 1-based
	Stage       string
	Matches     []*Match
	Winners     []Competitor
	Status      RoundStatus
	StartedAt   time.Time
	CompletedAt time.Time
}

// Complete marks the round finished, collecting winners in match order.
// A round with any undecided match cannot complete.
func (r *Round) Complete(now time.Time) error {
	for _, m := range r.Matches {
		if m.Winner == nil {
			return ErrMatchResultIncomplete
		}
	}
	r.Winners = r.Winners[:0]
	for _, m := range r.Matches {
		r.Winners = append(r.Winners, *m.Winner)
	}
	r.Status = RoundCompleted
	r.CompletedAt = now
	return nil
}

// StageLabel names a round from the competitor count still in play.
func StageLabel(remaining int, format Format) string {
	if format == FormatRoundRobin {
		return "group"
	}
	switch {
	case remaining <= 2:
		return "final"
	case remaining <= 4:
		return "semifinal"
	case remaining <= 8:
		return "quarterfinal"
	default:
		return fmt.Sprintf("round_of_%d", remaining)
	}
}

// TotalRounds computes the scheduled round count at tournament creation.
func TotalRounds(participants int, format Format) int {
	if participants < 2 {
		return 0
	}
	if format == FormatRoundRobin {
		// The rotation in Generate has period n-1, so that is the most
		// rounds a schedule can hold; odd fields sit one bye per round.
		return participants - 1
	}
	rounds := 0
	for n := 1; n < participants; n *= 2 {
		rounds++
	}
	return rounds
}
