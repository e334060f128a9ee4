package tournament

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"paddle-arena/internal/bracket"
)

type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
)

const pointsPerWin = 1

// Tournament sequences rounds for one competition. It is the only writer
// to its rounds' winner fields; every public method serializes on the
// tournament's own mutex, so concurrent advancement cannot double-step.
type Tournament struct {
	mu sync.Mutex

	ID           string
	Format       bracket.Format
	Participants []bracket.Competitor
	Rounds       []*bracket.Round
	TotalRounds  int
	ScoreTable   map[string]int // round robin only
	Winner       *bracket.Competitor
	Status       Status
	CreatedAt    time.Time
	CompletedAt  time.Time

	current       int // index into Rounds
	prior         bracket.PairSet
	byes          map[int]bracket.Competitor // round number -> bye
	matchWins     map[string]int
	matchesPlayed map[string]int
	roundsPlayed  map[string]int // deepest round number reached
	playTime      map[string]time.Duration
	headToHead    map[bracket.PairKey]string
	now           func() time.Time
}

func New(format bracket.Format, participants []bracket.Competitor) (*Tournament, error) {
	if len(participants) < 2 {
		return nil, bracket.ErrInsufficientParticipants
	}
	t := &Tournament{
		ID:            uuid.NewString(),
		Format:        format,
		Participants:  append([]bracket.Competitor(nil), participants...),
		TotalRounds:   bracket.TotalRounds(len(participants), format),
		prior:         bracket.PairSet{},
		byes:          map[int]bracket.Competitor{},
		matchWins:     map[string]int{},
		matchesPlayed: map[string]int{},
		roundsPlayed:  map[string]int{},
		playTime:      map[string]time.Duration{},
		headToHead:    map[bracket.PairKey]string{},
		Status:        StatusOngoing,
		now:           time.Now,
	}
	if format == bracket.FormatRoundRobin {
		t.ScoreTable = map[string]int{}
		for _, c := range participants {
			t.ScoreTable[c.Key()] = 0
		}
	}
	t.CreatedAt = t.now()
	if err := t.startRound(participants); err != nil {
		return nil, err
	}
	return t, nil
}

// startRound generates the next round's matches. Caller holds the mutex
// (or is the constructor).
func (t *Tournament) startRound(participants []bracket.Competitor) error {
	res, err := bracket.Generate(participants, t.Format, t.current, t.prior)
	if err != nil {
		return err
	}
	for _, m := range res.Matches {
		m.ID = uuid.NewString()
		m.Status = bracket.MatchOngoing
		m.StartedAt = t.now()
	}
	round := &bracket.Round{
		Number:    t.current + 1,
		Stage:     bracket.StageLabel(len(participants), t.Format),
		Matches:   res.Matches,
		Status:    bracket.RoundOngoing,
		StartedAt: t.now(),
	}
	if res.Bye != nil {
		t.byes[round.Number] = *res.Bye
	}
	t.Rounds = append(t.Rounds, round)
	log.Info().
		Str("tournament_id", t.ID).
		Int("round", round.Number).
		Str("stage", round.Stage).
		Int("matches", len(round.Matches)).
		Msg("round_generated")
	return nil
}

// RecordResult finalizes one match of the given round and updates the
// accumulated statistics feeding the score table and reward computation.
func (t *Tournament) RecordResult(roundNumber int, matchID string, scores [2]int, winner bracket.Competitor, duration time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Status == StatusCompleted {
		return ErrTournamentFinished
	}
	round := t.round(roundNumber)
	if round == nil {
		return ErrRoundNotFound
	}
	var match *bracket.Match
	for _, m := range round.Matches {
		if m.ID == matchID {
			match = m
			break
		}
	}
	if match == nil {
		return ErrMatchNotFound
	}
	if err := match.Finish(scores, winner, t.now()); err != nil {
		return err
	}

	wk := winner.Key()
	t.matchWins[wk]++
	for _, c := range match.Competitors {
		k := c.Key()
		t.matchesPlayed[k]++
		t.roundsPlayed[k] = roundNumber
		t.playTime[k] += duration
	}
	t.headToHead[bracket.CanonicalPair(match.Competitors[0], match.Competitors[1])] = wk
	if t.ScoreTable != nil {
		t.ScoreTable[wk] += pointsPerWin
	}
	log.Info().
		Str("tournament_id", t.ID).
		Int("round", roundNumber).
		Str("winner", winner.Display()).
		Msg("match_result_recorded")
	return nil
}

// MatchCompetitors returns the scheduled slots of one match.
func (t *Tournament) MatchCompetitors(roundNumber int, matchID string) ([2]bracket.Competitor, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	round := t.round(roundNumber)
	if round == nil {
		return [2]bracket.Competitor{}, ErrRoundNotFound
	}
	for _, m := range round.Matches {
		if m.ID == matchID {
			return m.Competitors, nil
		}
	}
	return [2]bracket.Competitor{}, ErrMatchNotFound
}

func (t *Tournament) round(number int) *bracket.Round {
	for _, r := range t.Rounds {
		if r.Number == number {
			return r
		}
	}
	return nil
}

// AdvanceRound closes the current round and either generates the next one
// or resolves the tournament. A round with undecided matches cannot be
// advanced past.
func (t *Tournament) AdvanceRound() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Status == StatusCompleted {
		return ErrTournamentFinished
	}
	if t.current >= len(t.Rounds) {
		return ErrRoundNotFound
	}
	round := t.Rounds[t.current]
	if round.Status != bracket.RoundCompleted {
		if err := round.Complete(t.now()); err != nil {
			log.Error().
				Str("tournament_id", t.ID).
				Int("round", round.Number).
				Err(err).
				Msg("round_advance_blocked")
			return ErrRoundIncomplete
		}
	}

	winners := append([]bracket.Competitor(nil), round.Winners...)
	if bye, ok := t.byes[round.Number]; ok {
		// A bye is an automatic round win.
		winners = append(winners, bye)
		t.roundsPlayed[bye.Key()] = round.Number
	}

	if t.Format == bracket.FormatSingleElim && len(winners) == 1 {
		t.finish(winners[0])
		return nil
	}
	if t.Format == bracket.FormatRoundRobin && round.Number >= t.TotalRounds {
		t.finish(t.resolveRoundRobinWinner())
		return nil
	}

	// Validate before touching the round pointer so a rejected advance
	// leaves the tournament where it was.
	if t.Format == bracket.FormatSingleElim {
		if len(winners) == 0 {
			return bracket.ErrInsufficientParticipants
		}
		for _, w := range winners {
			if !t.isParticipant(w) {
				return bracket.ErrInsufficientParticipants
			}
		}
		t.current++
		return t.startRound(winners)
	}
	t.current++
	return t.startRound(t.Participants)
}

func (t *Tournament) isParticipant(c bracket.Competitor) bool {
	for _, p := range t.Participants {
		if p == c {
			return true
		}
	}
	return false
}

// resolveRoundRobinWinner picks the participant with the highest score.
// Ties go to the head-to-head result when exactly two share the top
// score, then to the smallest competitor key.
func (t *Tournament) resolveRoundRobinWinner() bracket.Competitor {
	top := []bracket.Competitor{}
	best := -1
	for _, c := range t.Participants {
		pts := t.ScoreTable[c.Key()]
		switch {
		case pts > best:
			best = pts
			top = []bracket.Competitor{c}
		case pts == best:
			top = append(top, c)
		}
	}
	if len(top) == 1 {
		return top[0]
	}
	sort.Slice(top, func(i, j int) bool { return top[i].Key() < top[j].Key() })
	if len(top) == 2 {
		if w, ok := t.headToHead[bracket.CanonicalPair(top[0], top[1])]; ok && w == top[1].Key() {
			return top[1]
		}
	}
	return top[0]
}

func (t *Tournament) finish(winner bracket.Competitor) {
	w := winner
	t.Winner = &w
	t.Status = StatusCompleted
	t.CompletedAt = t.now()
	log.Info().
		Str("tournament_id", t.ID).
		Str("winner", winner.Display()).
		Str("format", string(t.Format)).
		Msg("tournament_end")
}

// CurrentRound returns the round the tournament is waiting on, nil once
// terminal.
func (t *Tournament) CurrentRound() *bracket.Round {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Status == StatusCompleted || t.current >= len(t.Rounds) {
		return nil
	}
	return t.Rounds[t.current]
}

// Snapshot is a lock-free copy for the HTTP surface and persistence.
type Snapshot struct {
	ID           string          `json:"id"`
	Format       bracket.Format  `json:"format"`
	Status       Status          `json:"status"`
	TotalRounds  int             `json:"total_rounds"`
	CurrentRound int             `json:"current_round"`
	Winner       string          `json:"winner,omitempty"`
	Participants []string        `json:"participants"`
	ScoreTable   map[string]int  `json:"score_table,omitempty"`
	Rounds       []RoundSnapshot `json:"rounds"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  time.Time       `json:"completed_at,omitempty"`
}

type RoundSnapshot struct {
	Number  int                 `json:"number"`
	Stage   string              `json:"stage"`
	Status  bracket.RoundStatus `json:"status"`
	Matches []MatchSnapshot     `json:"matches"`
	Bye     string              `json:"bye,omitempty"`
}

type MatchSnapshot struct {
	ID          string              `json:"id"`
	Competitors [2]string           `json:"competitors"`
	Scores      [2]int              `json:"scores"`
	Winner      string              `json:"winner,omitempty"`
	Status      bracket.MatchStatus `json:"status"`
}

func (t *Tournament) Snap() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := Snapshot{
		ID:           t.ID,
		Format:       t.Format,
		Status:       t.Status,
		TotalRounds:  t.TotalRounds,
		CurrentRound: t.current + 1,
		CreatedAt:    t.CreatedAt,
		CompletedAt:  t.CompletedAt,
	}
	if t.Winner != nil {
		snap.Winner = t.Winner.Key()
	}
	for _, p := range t.Participants {
		snap.Participants = append(snap.Participants, p.Key())
	}
	if t.ScoreTable != nil {
		snap.ScoreTable = make(map[string]int, len(t.ScoreTable))
		for k, v := range t.ScoreTable {
			snap.ScoreTable[k] = v
		}
	}
	for _, r := range t.Rounds {
		rs := RoundSnapshot{Number: r.Number, Stage: r.Stage, Status: r.Status}
		if bye, ok := t.byes[r.Number]; ok {
			rs.Bye = bye.Key()
		}
		for _, m := range r.Matches {
			ms := MatchSnapshot{
				ID:          m.ID,
				Competitors: [2]string{m.Competitors[0].Key(), m.Competitors[1].Key()},
				Scores:      m.Scores,
				Status:      m.Status,
			}
			if m.Winner != nil {
				ms.Winner = m.Winner.Key()
			}
			rs.Matches = append(rs.Matches, ms)
		}
		snap.Rounds = append(snap.Rounds, rs)
	}
	return snap
}
