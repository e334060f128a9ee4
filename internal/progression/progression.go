package progression

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"paddle-arena/internal/session"
	"paddle-arena/internal/store"
	"paddle-arena/internal/tournament"
)

const writeTimeout = 5 * time.Second

// Progression is the write-through layer between the in-memory engines
// and the database: match results, tournament standings, and XP credits
// all land here the moment their source event fires.
type Progression struct {
	Store *store.Store
}

func New(s *store.Store) *Progression {
	return &Progression{Store: s}
}

// RecordMatch persists a completed room session and its rounds.
func (p *Progression) RecordMatch(ctx context.Context, res session.MatchResult) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	rec := store.MatchRecord{
		RoomID:     res.RoomID,
		Format:     string(res.Format),
		Seats:      res.Seats,
		WinnerTeam: res.WinnerTeam,
		Winners:    res.Winners,
		Forfeit:    res.Forfeit,
		StartedAt:  res.StartedAt,
		EndedAt:    res.EndedAt,
	}
	rounds := make([]store.MatchRoundRecord, 0, len(res.Rounds))
	for _, r := range res.Rounds {
		rounds = append(rounds, store.MatchRoundRecord{
			RoundIndex: r.Index,
			LeftScore:  r.Scores[0],
			RightScore: r.Scores[1],
			WinnerTeam: r.WinnerTeam,
			StartedAt:  r.StartedAt,
			DurationMS: r.Duration.Milliseconds(),
		})
	}
	id, err := p.Store.InsertMatchResult(ctx, rec, rounds)
	if err != nil {
		return "", err
	}
	log.Info().
		Str("match_id", id).
		Str("room_id", res.RoomID).
		Int("rounds", len(rounds)).
		Msg("match_persisted")
	return id, nil
}

// RecordTournament persists a finished tournament and credits the XP
// rewards. Only registered users hold accounts; locally named players
// keep their standing row but receive no credit.
func (p *Progression) RecordTournament(ctx context.Context, snap tournament.Snapshot, xp map[string]int) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	rec := store.TournamentRecord{
		ID:           snap.ID,
		Format:       string(snap.Format),
		Participants: snap.Participants,
		TotalRounds:  snap.TotalRounds,
		Winner:       snap.Winner,
		CreatedAt:    snap.CreatedAt,
		CompletedAt:  snap.CompletedAt,
	}
	scores := make([]store.TournamentScoreRecord, 0, len(snap.Participants))
	for _, key := range snap.Participants {
		scores = append(scores, store.TournamentScoreRecord{
			TournamentID: snap.ID,
			Participant:  key,
			Points:       snap.ScoreTable[key],
			XPAwarded:    xp[key],
		})
	}
	if err := p.Store.InsertTournamentResult(ctx, rec, scores); err != nil {
		return err
	}

	for key, amount := range xp {
		userID, ok := strings.CutPrefix(key, "h:")
		if !ok || amount <= 0 {
			continue
		}
		balance, err := p.Store.CreditXP(ctx, userID, int64(amount), "tournament_reward", "tournament", snap.ID)
		if err != nil {
			log.Error().
				Str("user_id", userID).
				Str("tournament_id", snap.ID).
				Err(err).
				Msg("xp credit failed")
			continue
		}
		log.Info().
			Str("user_id", userID).
			Int("amount", amount).
			Int64("balance", balance).
			Msg("xp_credited")
	}
	return nil
}
