package store

import "context"

// InsertTournamentResult persists a finished tournament with its final
// standings in one transaction.
func (s *Store) InsertTournamentResult(ctx context.Context, t TournamentRecord, scores []TournamentScoreRecord) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO tournament_results (id, format, participants, total_rounds, winner, created_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		t.ID, t.Format, t.Participants, t.TotalRounds, t.Winner, t.CreatedAt, t.CompletedAt)
	if err != nil {
		return err
	}
	for _, sc := range scores {
		_, err = tx.Exec(ctx,
			`INSERT INTO tournament_scores (tournament_id, participant, points, xp_awarded)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (tournament_id, participant) DO UPDATE SET points = $3, xp_awarded = $4`,
			sc.TournamentID, sc.Participant, sc.Points, sc.XPAwarded)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) GetTournamentResult(ctx context.Context, id string) (*TournamentRecord, []TournamentScoreRecord, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT id, format, participants, total_rounds, winner, created_at, completed_at
		 FROM tournament_results WHERE id = $1`, id)
	var t TournamentRecord
	if err := row.Scan(&t.ID, &t.Format, &t.Participants, &t.TotalRounds, &t.Winner, &t.CreatedAt, &t.CompletedAt); err != nil {
		return nil, nil, mapNotFound(err)
	}

	rows, err := s.Pool.Query(ctx,
		`SELECT tournament_id, participant, points, xp_awarded
		 FROM tournament_scores WHERE tournament_id = $1 ORDER BY points DESC, participant`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	scores := []TournamentScoreRecord{}
	for rows.Next() {
		var sc TournamentScoreRecord
		if err := rows.Scan(&sc.TournamentID, &sc.Participant, &sc.Points, &sc.XPAwarded); err != nil {
			return nil, nil, err
		}
		scores = append(scores, sc)
	}
	return &t, scores, rows.Err()
}
