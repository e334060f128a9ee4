package session

import "time"

// Sender delivers one encoded message to a connected participant.
// Implementations must not block the caller; the ws layer backs this with
// a buffered per-client channel.
type Sender interface {
	Send(msg []byte) error
}

// Mailbox commands. Every external interaction with a room is one of
// these, consumed by the room's single goroutine, so state access is
// totally ordered with tick effects.

type joinMsg struct {
	participant string
	conn        Sender
	reply       chan joinReply
}

type joinReply struct {
	seat int
	err  error
}

type readyMsg struct {
	participant string
	ready       bool
	reply       chan error
}

type leaveMsg struct {
	participant string
}

type startMsg struct {
	participant string
	reply       chan error
}

type inputMsg struct {
	participant string
	dir         int // -1 up, +1 down
	pressed     bool
	reply       chan error
}

type infoMsg struct {
	reply chan RoomInfo
}

// RoomInfo is the coordinator's read-only view of a room, served on the
// room list endpoint.
type RoomInfo struct {
	ID       string   `json:"id"`
	Format   Format   `json:"format"`
	Phase    string   `json:"phase"`
	Seats    []string `json:"seats"`
	Occupied int      `json:"occupied"`
}

// Outbound broadcast payloads (one JSON shape per event type).

type readyStatusMsg struct {
	Type         string     `json:"type"`
	Host         string     `json:"host"`
	Guest        string     `json:"guest"`
	IsHostReady  bool       `json:"isHostReady"`
	IsGuestReady bool       `json:"isGuestReady"`
	AllReady     bool       `json:"allReady"`
	Seats        []seatView `json:"seats"`
}

type seatView struct {
	Participant string `json:"participant"`
	Ready       bool   `json:"ready"`
	Connected   bool   `json:"connected"`
}

type initialStateMsg struct {
	Type            string     `json:"type"`
	RoomID          string     `json:"room_id"`
	Format          Format     `json:"format"`
	Seat            int        `json:"seat"`
	MaxRounds       int        `json:"max_rounds"`
	RoundScoreLimit int        `json:"round_score_limit"`
	Phase           string     `json:"phase"`
	Seats           []seatView `json:"seats"`
}

type gameStartedMsg struct {
	Type string `json:"type"`
}

type roundCompletedMsg struct {
	Type      string      `json:"type"`
	RoundData RoundResult `json:"round_data"`
}

type gameEndedMsg struct {
	Type    string   `json:"type"`
	Winner  string   `json:"winner"` // "left", "right" or "" on a tie
	Winners []string `json:"winners"`
	Forfeit bool     `json:"forfeit"`
}

type alertMsg struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	UserRole string `json:"user_role"`
}

// RoundResult is one finalized scoring segment.
type RoundResult struct {
	Index      int           `json:"index"`
	Scores     [2]int        `json:"scores"`
	WinnerTeam int           `json:"winner_team"` // 0 left, 1 right
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ms"`
}

// MatchResult is the terminal outcome of a session, reported once on the
// transition to Completed.
type MatchResult struct {
	RoomID     string
	Format     Format
	Seats      []string // participant per seat at start time
	Rounds     []RoundResult
	WinnerTeam int // -1 when no winner (tie or voided forfeit)
	Winners    []string
	Forfeit    bool
	StartedAt  time.Time
	EndedAt    time.Time
}

func (r MatchResult) Duration() time.Duration { return r.EndedAt.Sub(r.StartedAt) }

// Hooks are the explicit completion events consumed by observers
// (persistence, notifications, tournament progression). Fire-and-forget:
// they run on the room goroutine and must not block.
type Hooks struct {
	OnRoundCompleted func(roomID string, r RoundResult)
	OnMatchCompleted func(res MatchResult)
}

func teamName(team int) string {
	switch team {
	case 0:
		return "left"
	case 1:
		return "right"
	default:
		return ""
	}
}
