package store

import "time"

// MatchRecord is one completed room session.
type MatchRecord struct {
	ID         string
	RoomID     string
	Format     string
	Seats      []string
	WinnerTeam int
	Winners    []string
	Forfeit    bool
	StartedAt  time.Time
	EndedAt    time.Time
}

// MatchRoundRecord is one scored round inside a match.
type MatchRoundRecord struct {
	MatchID    string
	RoundIndex int
	LeftScore  int
	RightScore int
	WinnerTeam int
	StartedAt  time.Time
	DurationMS int64
}

// TournamentRecord is the terminal state of a finished tournament.
type TournamentRecord struct {
	ID           string
	Format       string
	Participants []string
	TotalRounds  int
	Winner       string
	CreatedAt    time.Time
	CompletedAt  time.Time
}

// TournamentScoreRecord is one participant's final standing and reward.
type TournamentScoreRecord struct {
	TournamentID string
	Participant  string
	Points       int
	XPAwarded    int
}

// XPAccount is a user's lifetime experience balance.
type XPAccount struct {
	UserID    string
	BalanceXP int64
	UpdatedAt time.Time
}

// XPEntry is one credit against an account, with its source reference.
type XPEntry struct {
	ID        string
	UserID    string
	AmountXP  int64
	Reason    string
	RefType   string
	RefID     string
	CreatedAt time.Time
}
