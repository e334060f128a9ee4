package tournament

import "errors"

var (
	ErrNotFound           = errors.New("tournament_not_found")
	ErrRoundNotFound      = errors.New("round_not_found")
	ErrRoundIncomplete    = errors.New("round_incomplete")
	ErrMatchNotFound      = errors.New("match_not_found")
	ErrTournamentFinished = errors.New("tournament_finished")
)
