package tournament

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"paddle-arena/internal/bracket"
	"paddle-arena/internal/session"
)

// Observers are the explicit completion events emitted by the manager,
// mirroring the session hooks: wired by main to progression credit,
// persistence, and notifications. They must not block.
type Observers struct {
	OnTournamentCompleted func(snap Snapshot, xp map[string]int)
}

type matchRef struct {
	tournamentID string
	roundNumber  int
	matchID      string
}

// Manager owns the tournament registry and binds live rooms to bracket
// matches so session outcomes feed round progression.
type Manager struct {
	mu          sync.RWMutex
	tournaments map[string]*Tournament
	bindings    map[string]matchRef // room id -> bracket match
	observers   Observers
}

func NewManager(observers Observers) *Manager {
	return &Manager{
		tournaments: make(map[string]*Tournament),
		bindings:    make(map[string]matchRef),
		observers:   observers,
	}
}

func (m *Manager) Create(format bracket.Format, participants []bracket.Competitor) (*Tournament, error) {
	t, err := New(format, participants)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.tournaments[t.ID] = t
	m.mu.Unlock()
	log.Info().
		Str("tournament_id", t.ID).
		Str("format", string(format)).
		Int("participants", len(participants)).
		Msg("tournament_created")
	return t, nil
}

func (m *Manager) Get(id string) (*Tournament, error) {
	m.mu.RLock()
	t, ok := m.tournaments[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

// BindRoom links a live room to a bracket match; when that room's match
// completes, the result is recorded and the round advanced if possible.
func (m *Manager) BindRoom(roomID, tournamentID string, roundNumber int, matchID string) error {
	if _, err := m.Get(tournamentID); err != nil {
		return err
	}
	m.mu.Lock()
	m.bindings[roomID] = matchRef{tournamentID: tournamentID, roundNumber: roundNumber, matchID: matchID}
	m.mu.Unlock()
	return nil
}

// HandleMatchCompleted is the session hook. Rooms without a binding are
// casual matches and are ignored here.
func (m *Manager) HandleMatchCompleted(res session.MatchResult) {
	m.mu.Lock()
	ref, ok := m.bindings[res.RoomID]
	if ok {
		delete(m.bindings, res.RoomID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	if res.WinnerTeam < 0 || len(res.Winners) == 0 {
		// A voided match cannot decide a bracket slot. Progression halts
		// here rather than guessing a winner; the round stays incomplete
		// until the result is reported explicitly.
		log.Error().
			Str("tournament_id", ref.tournamentID).
			Str("room_id", res.RoomID).
			Msg("voided match result for bound bracket match")
		return
	}

	var wins [2]int
	for _, rr := range res.Rounds {
		wins[rr.WinnerTeam]++
	}
	winner, err := m.resolveWinner(ref, res.Winners)
	if err != nil {
		log.Error().
			Str("tournament_id", ref.tournamentID).
			Str("room_id", res.RoomID).
			Strs("winners", res.Winners).
			Err(err).
			Msg("session winner not in bracket match")
		return
	}
	if err := m.ReportResult(ref.tournamentID, ref.roundNumber, ref.matchID, wins, winner, res.Duration()); err != nil {
		log.Error().
			Str("tournament_id", ref.tournamentID).
			Str("room_id", res.RoomID).
			Err(err).
			Msg("record session result failed")
	}
}

// resolveWinner maps a room's winner names onto the bound match's slots.
// Session participants are keyed by display name, which is the ID for
// registered users and the chosen name for local players.
func (m *Manager) resolveWinner(ref matchRef, names []string) (bracket.Competitor, error) {
	t, err := m.Get(ref.tournamentID)
	if err != nil {
		return bracket.Competitor{}, err
	}
	comps, err := t.MatchCompetitors(ref.roundNumber, ref.matchID)
	if err != nil {
		return bracket.Competitor{}, err
	}
	for _, c := range comps {
		if c.Kind == bracket.KindAI {
			continue
		}
		for _, name := range names {
			if c.Display() == name {
				return c, nil
			}
		}
	}
	return bracket.Competitor{}, bracket.ErrUnknownCompetitor
}

// ReportResult records a match outcome (from a live session or reported
// externally) and advances the round when it was the last one missing.
func (m *Manager) ReportResult(tournamentID string, roundNumber int, matchID string, scores [2]int, winner bracket.Competitor, duration time.Duration) error {
	t, err := m.Get(tournamentID)
	if err != nil {
		return err
	}
	if err := t.RecordResult(roundNumber, matchID, scores, winner, duration); err != nil {
		return err
	}
	if err := t.AdvanceRound(); err != nil {
		if err == ErrRoundIncomplete {
			return nil // other matches still playing
		}
		return err
	}
	m.afterAdvance(t)
	return nil
}

// Advance drives progression for rounds resolved without a new result
// (all byes, externally completed).
func (m *Manager) Advance(tournamentID string) error {
	t, err := m.Get(tournamentID)
	if err != nil {
		return err
	}
	if err := t.AdvanceRound(); err != nil {
		return err
	}
	m.afterAdvance(t)
	return nil
}

func (m *Manager) afterAdvance(t *Tournament) {
	snap := t.Snap()
	if snap.Status != StatusCompleted {
		return
	}
	xp := t.CalculateXP()
	if m.observers.OnTournamentCompleted != nil {
		m.observers.OnTournamentCompleted(snap, xp)
	}
}

// List returns snapshots of every registered tournament.
func (m *Manager) List() []Snapshot {
	m.mu.RLock()
	ts := make([]*Tournament, 0, len(m.tournaments))
	for _, t := range m.tournaments {
		ts = append(ts, t)
	}
	m.mu.RUnlock()
	out := make([]Snapshot, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Snap())
	}
	return out
}
