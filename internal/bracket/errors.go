package bracket

import "errors"

var (
	ErrInsufficientParticipants = errors.New("insufficient_participants")
	ErrNoMatchesGenerated       = errors.New("no_matches_generated")
	ErrMatchResultIncomplete    = errors.New("match_result_incomplete")
	ErrUnknownCompetitor        = errors.New("unknown_competitor")
)
