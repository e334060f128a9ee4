package tournament

import (
	"sort"
	"time"

	"paddle-arena/internal/bracket"
)

// Reward tuning. Additive components first, then the multiplicative
// factors applied in a fixed order; the result is truncated to an int.
const (
	xpBaseParticipation = 50
	xpPerMatchWin       = 25
	xpPerRoundPlayed    = 10
	xpWinnerBonus       = 200

	xpFormatElimMult = 1.2
	xpFormatRRMult   = 1.0

	xpSurvivalWeight   = 0.5
	xpSemifinalBonus   = 0.10
	xpFinalBonus       = 0.15

	xpConsistencyHigh     = 0.75
	xpConsistencyHighMult = 1.2
	xpConsistencyMid      = 0.5
	xpConsistencyMidMult  = 1.1

	xpSizeStep = 0.05
	xpSizeCap  = 1.5
)

// Duration thresholds for the diminishing play-time bonus.
const (
	xpDurationFullRate = 2.0 // per minute for the first tier
	xpDurationTier1    = 10 * time.Minute
	xpDurationMidRate  = 1.0
	xpDurationTier2    = 30 * time.Minute
	xpDurationTailRate = 0.5
)

// CalculateXP computes the reward for every participant of a finished
// tournament, keyed by competitor key. AI filler slots earn nothing.
func (t *Tournament) CalculateXP() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Status != StatusCompleted {
		return nil
	}

	ranks := t.roundRobinRanks()
	out := make(map[string]int, len(t.Participants))
	for _, c := range t.Participants {
		if c.Kind == bracket.KindAI {
			continue
		}
		out[c.Key()] = int(t.xpFor(c, ranks))
	}
	return out
}

func (t *Tournament) xpFor(c bracket.Competitor, ranks map[string]int) float64 {
	k := c.Key()
	isWinner := t.Winner != nil && *t.Winner == c

	base := float64(xpBaseParticipation)
	base += float64(t.matchWins[k] * xpPerMatchWin)
	base += float64(t.roundsPlayed[k] * xpPerRoundPlayed)
	if isWinner {
		base += xpWinnerBonus
	}
	base += durationBonus(t.playTime[k])

	base *= t.formatMult()
	base *= t.progressionMult(k, isWinner)
	if t.Format == bracket.FormatRoundRobin {
		base *= t.performanceMult(k, ranks)
	}
	base *= t.sizeMult()
	return base
}

func durationBonus(d time.Duration) float64 {
	minutes := d.Minutes()
	tier1 := xpDurationTier1.Minutes()
	tier2 := xpDurationTier2.Minutes()
	switch {
	case minutes <= tier1:
		return minutes * xpDurationFullRate
	case minutes <= tier2:
		return tier1*xpDurationFullRate + (minutes-tier1)*xpDurationMidRate
	default:
		return tier1*xpDurationFullRate + (tier2-tier1)*xpDurationMidRate + (minutes-tier2)*xpDurationTailRate
	}
}

func (t *Tournament) formatMult() float64 {
	if t.Format == bracket.FormatSingleElim {
		return xpFormatElimMult
	}
	return xpFormatRRMult
}

// progressionMult grows with the fraction of rounds survived, plus fixed
// increments for reaching the named late stages of an elimination bracket.
func (t *Tournament) progressionMult(key string, isWinner bool) float64 {
	survived := float64(t.roundsPlayed[key]) / float64(t.TotalRounds)
	if isWinner {
		survived = 1
	}
	mult := 1 + xpSurvivalWeight*survived
	if t.Format == bracket.FormatSingleElim {
		reached := t.roundsPlayed[key]
		if isWinner {
			reached = t.TotalRounds
		}
		if reached >= t.TotalRounds {
			mult += xpFinalBonus
		}
		if reached >= t.TotalRounds-1 && t.TotalRounds > 1 {
			mult += xpSemifinalBonus
		}
	}
	return mult
}

// performanceMult keys off the final score-table rank, with a consistency
// bonus for a high win ratio.
func (t *Tournament) performanceMult(key string, ranks map[string]int) float64 {
	mult := 1.0
	switch ranks[key] {
	case 1:
		mult = 1.5
	case 2:
		mult = 1.25
	case 3:
		mult = 1.1
	}
	if played := t.matchesPlayed[key]; played > 0 {
		ratio := float64(t.matchWins[key]) / float64(played)
		switch {
		case ratio > xpConsistencyHigh:
			mult *= xpConsistencyHighMult
		case ratio > xpConsistencyMid:
			mult *= xpConsistencyMidMult
		}
	}
	return mult
}

func (t *Tournament) sizeMult() float64 {
	mult := 1 + xpSizeStep*float64(len(t.Participants)-2)
	if mult > xpSizeCap {
		mult = xpSizeCap
	}
	return mult
}

// roundRobinRanks assigns 1-based ranks from the score table, ties
// sharing the better rank, ordered deterministically by key within a tie.
func (t *Tournament) roundRobinRanks() map[string]int {
	if t.ScoreTable == nil {
		return nil
	}
	type entry struct {
		key string
		pts int
	}
	entries := make([]entry, 0, len(t.ScoreTable))
	for k, v := range t.ScoreTable {
		entries = append(entries, entry{k, v})
	}
	// Points descending, then key, so ranking never depends on map
	// iteration order.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].pts != entries[j].pts {
			return entries[i].pts > entries[j].pts
		}
		return entries[i].key < entries[j].key
	})
	ranks := make(map[string]int, len(entries))
	rank := 0
	prev := -1
	for i, e := range entries {
		if e.pts != prev {
			rank = i + 1
			prev = e.pts
		}
		ranks[e.key] = rank
	}
	return ranks
}
