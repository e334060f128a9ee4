package store

import "context"

// Bootstrap creates the schema when it does not exist yet. Idempotent;
// run once at startup before serving traffic.
func (s *Store) Bootstrap(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS match_results (
			id           TEXT PRIMARY KEY,
			room_id      TEXT NOT NULL,
			format       TEXT NOT NULL,
			seats        TEXT[] NOT NULL,
			winner_team  INT NOT NULL,
			winners      TEXT[] NOT NULL,
			forfeit      BOOLEAN NOT NULL DEFAULT FALSE,
			started_at   TIMESTAMPTZ NOT NULL,
			ended_at     TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_match_results_room ON match_results (room_id)`,
		`CREATE TABLE IF NOT EXISTS match_round_results (
			match_id     TEXT NOT NULL REFERENCES match_results (id),
			round_index  INT NOT NULL,
			left_score   INT NOT NULL,
			right_score  INT NOT NULL,
			winner_team  INT NOT NULL,
			started_at   TIMESTAMPTZ NOT NULL,
			duration_ms  BIGINT NOT NULL,
			PRIMARY KEY (match_id, round_index)
		)`,
		`CREATE TABLE IF NOT EXISTS tournament_results (
			id            TEXT PRIMARY KEY,
			format        TEXT NOT NULL,
			participants  TEXT[] NOT NULL,
			total_rounds  INT NOT NULL,
			winner        TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL,
			completed_at  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tournament_scores (
			tournament_id TEXT NOT NULL REFERENCES tournament_results (id),
			participant   TEXT NOT NULL,
			points        INT NOT NULL DEFAULT 0,
			xp_awarded    INT NOT NULL DEFAULT 0,
			PRIMARY KEY (tournament_id, participant)
		)`,
		`CREATE TABLE IF NOT EXISTS xp_accounts (
			user_id    TEXT PRIMARY KEY,
			balance_xp BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS xp_entries (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			amount_xp  BIGINT NOT NULL,
			reason     TEXT NOT NULL,
			ref_type   TEXT NOT NULL,
			ref_id     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_xp_entries_user ON xp_entries (user_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
