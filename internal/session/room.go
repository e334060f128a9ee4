package session

import (
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"paddle-arena/internal/game"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	default:
		return "idle"
	}
}

type Format string

const (
	FormatDuel  Format = "duel"
	FormatArena Format = "arena"
)

func (f Format) Seats() int {
	if f == FormatArena {
		return 4
	}
	return 2
}

// Config is immutable for the room's lifetime.
type Config struct {
	Format          Format
	MaxRounds       int
	RoundScoreLimit int
	TickHz          int
	Tuning          game.Tuning
}

type seatState struct {
	participant string
	ready       bool
	conn        Sender
	cmdV        float64 // commanded paddle velocity, applied while running
}

// Room is the authoritative owner of one session's state. All mutation
// happens on the run goroutine; callers talk to it through the inbox.
type Room struct {
	ID    string
	inbox chan any

	quit     chan struct{}
	stopOnce sync.Once

	// Everything below is owned by the run goroutine.
	cfg       Config
	phase     Phase
	seats     []seatState
	sim       *game.SimState
	rng       *rand.Rand
	rounds    []RoundResult
	startedAt time.Time
	hooks     Hooks
	onEmpty   func(id string)
	now       func() time.Time
}

func newRoom(id string, cfg Config, hooks Hooks, onEmpty func(string)) *Room {
	if cfg.TickHz <= 0 {
		cfg.TickHz = game.SimTickHz
	}
	if cfg.Tuning.SpeedRamp == 0 {
		cfg.Tuning = game.DefaultTuning()
	}
	return &Room{
		ID:      id,
		inbox:   make(chan any, 256),
		quit:    make(chan struct{}),
		cfg:     cfg,
		seats:   make([]seatState, cfg.Format.Seats()),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		hooks:   hooks,
		onEmpty: onEmpty,
		now:     time.Now,
	}
}

func (r *Room) stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

func (r *Room) run() {
	ticker := time.NewTicker(time.Second / time.Duration(r.cfg.TickHz))
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case m := <-r.inbox:
			r.handle(m)
		case <-ticker.C:
			if r.phase == PhaseRunning {
				r.step()
			}
		}
	}
}

func (r *Room) handle(m any) {
	switch c := m.(type) {
	case joinMsg:
		c.reply <- r.handleJoin(c)
	case readyMsg:
		c.reply <- r.handleReady(c)
	case startMsg:
		c.reply <- r.handleStart(c)
	case inputMsg:
		c.reply <- r.handleInput(c)
	case leaveMsg:
		r.handleLeave(c.participant)
	case infoMsg:
		c.reply <- r.info()
	}
}

func (r *Room) seatOf(participant string) int {
	for i := range r.seats {
		if r.seats[i].participant == participant && participant != "" {
			return i
		}
	}
	return -1
}

func (r *Room) handleJoin(c joinMsg) joinReply {
	if seat := r.seatOf(c.participant); seat >= 0 {
		// Re-join of an occupied seat is idempotent; refresh the connection.
		r.seats[seat].conn = c.conn
		r.sendInitialState(seat)
		r.broadcastReadyStatus()
		return joinReply{seat: seat}
	}
	if r.phase != PhaseIdle {
		return joinReply{seat: -1, err: ErrRoomFull}
	}
	for i := range r.seats {
		if r.seats[i].participant == "" {
			r.seats[i] = seatState{participant: c.participant, conn: c.conn}
			r.sendInitialState(i)
			r.broadcastReadyStatus()
			log.Info().Str("room_id", r.ID).Str("participant", c.participant).Int("seat", i).Msg("seat_joined")
			return joinReply{seat: i}
		}
	}
	return joinReply{seat: -1, err: ErrRoomFull}
}

func (r *Room) handleReady(c readyMsg) error {
	seat := r.seatOf(c.participant)
	if seat < 0 {
		return ErrNotAMember
	}
	r.seats[seat].ready = c.ready
	r.broadcastReadyStatus()
	return nil
}

func (r *Room) handleStart(c startMsg) error {
	seat := r.seatOf(c.participant)
	if seat < 0 {
		return ErrNotAMember
	}
	if seat != 0 {
		return ErrNotOwner
	}
	if r.phase == PhaseRunning {
		return nil // already started, repeated calls are no-ops
	}
	if r.phase == PhaseCompleted {
		return ErrRoomClosed
	}
	for i := range r.seats {
		if r.seats[i].participant == "" {
			return ErrNotAllReady
		}
		if i != 0 && !r.seats[i].ready {
			return ErrNotAllReady
		}
	}

	var active [game.MaxSeats]bool
	for i := range r.seats {
		active[i] = true
	}
	r.sim = game.NewSim(active, r.cfg.Tuning, r.rng, r.now())
	for i := range r.seats {
		r.sim.PaddleV[i] = r.seats[i].cmdV
	}
	r.phase = PhaseRunning
	r.startedAt = r.now()
	r.broadcast(gameStartedMsg{Type: "game_started"})
	log.Info().Str("room_id", r.ID).Str("format", string(r.cfg.Format)).Msg("match_start")
	return nil
}

func (r *Room) handleInput(c inputMsg) error {
	seat := r.seatOf(c.participant)
	if seat < 0 {
		return ErrNotAMember
	}
	v := 0.0
	if c.pressed {
		v = float64(c.dir) * game.PaddleSpeed
	}
	r.seats[seat].cmdV = v
	if r.sim != nil && r.phase == PhaseRunning {
		r.sim.PaddleV[seat] = v
	}
	return nil
}

func (r *Room) handleLeave(participant string) {
	seat := r.seatOf(participant)
	if seat < 0 {
		return
	}
	if seat == 0 {
		r.ownerLeft()
		return
	}

	if r.phase == PhaseRunning {
		// Non-owner disconnect is not a forfeit: the paddle just stops.
		r.seats[seat].conn = nil
		r.seats[seat].cmdV = 0
		r.sim.PaddleV[seat] = 0
		r.broadcast(alertMsg{Type: "alert", Message: "participant disconnected", UserRole: "guest"})
		return
	}

	r.seats[seat] = seatState{}
	r.broadcastReadyStatus()
	if r.occupied() == 0 {
		r.teardown()
	}
}

// ownerLeft destroys the room. A match in progress is forfeited in favor
// of the remaining side; every other occupant gets a forced-termination
// alert first.
func (r *Room) ownerLeft() {
	if r.phase == PhaseRunning {
		winner := r.remainingTeam(0)
		r.completeMatch(winner, true)
	}
	r.seats[0] = seatState{}
	r.broadcast(alertMsg{Type: "alert", Message: "host closed the room", UserRole: "host"})
	r.teardown()
}

// remainingTeam picks the forfeit beneficiary: the opposing side, as long
// as it still has a connected seat.
func (r *Room) remainingTeam(leaving int) int {
	other := 1 - game.TeamOf(leaving)
	for i := range r.seats {
		if game.TeamOf(i) == other && r.seats[i].participant != "" && r.seats[i].conn != nil {
			return other
		}
	}
	return -1
}

func (r *Room) occupied() int {
	n := 0
	for i := range r.seats {
		if r.seats[i].participant != "" {
			n++
		}
	}
	return n
}

func (r *Room) teardown() {
	r.stop()
	if r.onEmpty != nil {
		r.onEmpty(r.ID)
	}
}

// step advances one simulated instant. It runs on the room goroutine, so
// no input application can interleave with it.
func (r *Room) step() {
	team := game.Step(r.sim, r.rng)
	if team >= 0 && r.sim.Scores[team] >= r.cfg.RoundScoreLimit {
		r.finalizeRound()
	}
	if r.phase == PhaseRunning || team >= 0 {
		r.broadcast(r.sim.Snap())
	}
}

// finalizeRound records the finished round. Scoring stops exactly at the
// threshold, so the higher score decides; equality is unreachable.
func (r *Room) finalizeRound() {
	winner := 0
	if r.sim.Scores[1] > r.sim.Scores[0] {
		winner = 1
	}
	now := r.now()
	res := RoundResult{
		Index:      r.sim.Round,
		Scores:     r.sim.Scores,
		WinnerTeam: winner,
		StartedAt:  r.sim.RoundStartedAt,
		Duration:   now.Sub(r.sim.RoundStartedAt),
	}
	r.rounds = append(r.rounds, res)
	r.broadcast(roundCompletedMsg{Type: "round_completed", RoundData: res})
	if r.hooks.OnRoundCompleted != nil {
		r.hooks.OnRoundCompleted(r.ID, res)
	}
	log.Info().Str("room_id", r.ID).Int("round", res.Index).Ints("scores", res.Scores[:]).Msg("round_completed")

	if len(r.rounds) >= r.cfg.MaxRounds {
		r.completeMatch(r.matchWinner(), false)
		return
	}
	r.sim.ResetRound(r.rng, now)
}

// matchWinner compares accumulated round wins; a tie yields no winner.
func (r *Room) matchWinner() int {
	var wins [2]int
	for _, rr := range r.rounds {
		wins[rr.WinnerTeam]++
	}
	switch {
	case wins[0] > wins[1]:
		return 0
	case wins[1] > wins[0]:
		return 1
	default:
		return -1
	}
}

func (r *Room) completeMatch(winnerTeam int, forfeit bool) {
	if r.phase == PhaseCompleted {
		return
	}
	r.phase = PhaseCompleted

	seats := make([]string, len(r.seats))
	var winners []string
	for i := range r.seats {
		seats[i] = r.seats[i].participant
		if winnerTeam >= 0 && game.TeamOf(i) == winnerTeam && r.seats[i].participant != "" {
			winners = append(winners, r.seats[i].participant)
		}
	}
	res := MatchResult{
		RoomID:     r.ID,
		Format:     r.cfg.Format,
		Seats:      seats,
		Rounds:     append([]RoundResult(nil), r.rounds...),
		WinnerTeam: winnerTeam,
		Winners:    winners,
		Forfeit:    forfeit,
		StartedAt:  r.startedAt,
		EndedAt:    r.now(),
	}
	r.broadcast(gameEndedMsg{
		Type:    "game_ended",
		Winner:  teamName(winnerTeam),
		Winners: winners,
		Forfeit: forfeit,
	})
	if r.hooks.OnMatchCompleted != nil {
		r.hooks.OnMatchCompleted(res)
	}
	log.Info().
		Str("room_id", r.ID).
		Str("winner", teamName(winnerTeam)).
		Bool("forfeit", forfeit).
		Int64("duration_ms", res.Duration().Milliseconds()).
		Msg("match_end")
}

func (r *Room) info() RoomInfo {
	seats := make([]string, len(r.seats))
	for i := range r.seats {
		seats[i] = r.seats[i].participant
	}
	return RoomInfo{
		ID:       r.ID,
		Format:   r.cfg.Format,
		Phase:    r.phase.String(),
		Seats:    seats,
		Occupied: r.occupied(),
	}
}

func (r *Room) seatViews() []seatView {
	views := make([]seatView, len(r.seats))
	for i := range r.seats {
		views[i] = seatView{
			Participant: r.seats[i].participant,
			Ready:       r.seats[i].ready,
			Connected:   r.seats[i].conn != nil,
		}
	}
	return views
}

func (r *Room) broadcastReadyStatus() {
	allReady := true
	for i := range r.seats {
		if r.seats[i].participant == "" || (i != 0 && !r.seats[i].ready) {
			allReady = false
			break
		}
	}
	r.broadcast(readyStatusMsg{
		Type:         "ready_status",
		Host:         r.seats[0].participant,
		Guest:        r.seats[1].participant,
		IsHostReady:  r.seats[0].ready,
		IsGuestReady: r.seats[1].ready,
		AllReady:     allReady,
		Seats:        r.seatViews(),
	})
}

// sendInitialState gives one seat everything needed to reconstruct the
// lobby without replaying history.
func (r *Room) sendInitialState(seat int) {
	if r.seats[seat].conn == nil {
		return
	}
	msg := initialStateMsg{
		Type:            "initial_state",
		RoomID:          r.ID,
		Format:          r.cfg.Format,
		Seat:            seat,
		MaxRounds:       r.cfg.MaxRounds,
		RoundScoreLimit: r.cfg.RoundScoreLimit,
		Phase:           r.phase.String(),
		Seats:           r.seatViews(),
	}
	if b, err := json.Marshal(msg); err == nil {
		_ = r.seats[seat].conn.Send(b)
	}
}

// broadcast marshals once and fans out to every connected seat.
// Fire-and-forget: a slow client never delays the next tick.
func (r *Room) broadcast(payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for i := range r.seats {
		if r.seats[i].conn != nil {
			_ = r.seats[i].conn.Send(b)
		}
	}
}
