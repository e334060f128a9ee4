package store

import (
	"context"
)

// InsertMatchResult persists a finished match and its rounds in one
// transaction. Returns the generated match id.
func (s *Store) InsertMatchResult(ctx context.Context, m MatchRecord, rounds []MatchRoundRecord) (string, error) {
	id := NewID()
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO match_results (id, room_id, format, seats, winner_team, winners, forfeit, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, m.RoomID, m.Format, m.Seats, m.WinnerTeam, m.Winners, m.Forfeit, m.StartedAt, m.EndedAt)
	if err != nil {
		return "", err
	}
	for _, r := range rounds {
		_, err = tx.Exec(ctx,
			`INSERT INTO match_round_results (match_id, round_index, left_score, right_score, winner_team, started_at, duration_ms)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, r.RoundIndex, r.LeftScore, r.RightScore, r.WinnerTeam, r.StartedAt, r.DurationMS)
		if err != nil {
			return "", err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetMatchResult(ctx context.Context, id string) (*MatchRecord, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT id, room_id, format, seats, winner_team, winners, forfeit, started_at, ended_at
		 FROM match_results WHERE id = $1`, id)
	var m MatchRecord
	if err := row.Scan(&m.ID, &m.RoomID, &m.Format, &m.Seats, &m.WinnerTeam, &m.Winners, &m.Forfeit, &m.StartedAt, &m.EndedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &m, nil
}

func (s *Store) ListMatchResults(ctx context.Context, roomID string, limit, offset int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, room_id, format, seats, winner_team, winners, forfeit, started_at, ended_at
		 FROM match_results
		 WHERE ($1 = '' OR room_id = $1)
		 ORDER BY ended_at DESC
		 LIMIT $2 OFFSET $3`, roomID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []MatchRecord{}
	for rows.Next() {
		var m MatchRecord
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Format, &m.Seats, &m.WinnerTeam, &m.Winners, &m.Forfeit, &m.StartedAt, &m.EndedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
