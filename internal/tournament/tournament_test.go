package tournament

import (
	"testing"
	"time"

	"paddle-arena/internal/bracket"
	"paddle-arena/internal/session"
)

func sessionResult(roomID string, winners []string, now time.Time) session.MatchResult {
	return session.MatchResult{
		RoomID: roomID,
		Format: session.FormatDuel,
		Rounds: []session.RoundResult{
			{Index: 1, Scores: [2]int{5, 3}, WinnerTeam: 0},
			{Index: 2, Scores: [2]int{5, 1}, WinnerTeam: 0},
		},
		WinnerTeam: 0,
		Winners:    winners,
		StartedAt:  now.Add(-8 * time.Minute),
		EndedAt:    now,
	}
}

func humans(ids ...string) []bracket.Competitor {
	out := make([]bracket.Competitor, 0, len(ids))
	for _, id := range ids {
		out = append(out, bracket.Human(id))
	}
	return out
}

// winAll records a win for the lexicographically first competitor of
// every undecided match in the current round.
func winAll(t *testing.T, tr *Tournament) {
	t.Helper()
	round := tr.CurrentRound()
	if round == nil {
		t.Fatal("no current round")
	}
	for _, m := range round.Matches {
		if m.Winner != nil {
			continue
		}
		winner := m.Competitors[0]
		if m.Competitors[1].Key() < winner.Key() {
			winner = m.Competitors[1]
		}
		if err := tr.RecordResult(round.Number, m.ID, [2]int{2, 1}, winner, 5*time.Minute); err != nil {
			t.Fatalf("record result: %v", err)
		}
	}
}

func TestNewRequiresTwoParticipants(t *testing.T) {
	if _, err := New(bracket.FormatSingleElim, humans("a")); err != bracket.ErrInsufficientParticipants {
		t.Fatalf("got %v, want ErrInsufficientParticipants", err)
	}
}

func TestSingleElimRunsToChampion(t *testing.T) {
	tr, err := New(bracket.FormatSingleElim, humans("a", "b", "c", "d"))
	if err != nil {
		t.Fatal(err)
	}
	if tr.TotalRounds != 2 {
		t.Fatalf("TotalRounds = %d, want 2", tr.TotalRounds)
	}

	winAll(t, tr)
	if err := tr.AdvanceRound(); err != nil {
		t.Fatalf("advance round 1: %v", err)
	}
	if got := tr.CurrentRound(); got == nil || got.Number != 2 {
		t.Fatalf("expected round 2, got %+v", got)
	}
	if tr.CurrentRound().Stage != "final" {
		t.Fatalf("stage = %q, want final", tr.CurrentRound().Stage)
	}

	winAll(t, tr)
	if err := tr.AdvanceRound(); err != nil {
		t.Fatalf("advance round 2: %v", err)
	}
	if tr.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed", tr.Status)
	}
	if tr.Winner == nil || *tr.Winner != bracket.Human("a") {
		t.Fatalf("winner = %v, want a", tr.Winner)
	}
}

func TestAdvanceBlockedByUndecidedMatch(t *testing.T) {
	tr, err := New(bracket.FormatSingleElim, humans("a", "b", "c", "d"))
	if err != nil {
		t.Fatal(err)
	}
	round := tr.CurrentRound()
	m := round.Matches[0]
	if err := tr.RecordResult(round.Number, m.ID, [2]int{2, 0}, m.Competitors[0], time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := tr.AdvanceRound(); err != ErrRoundIncomplete {
		t.Fatalf("got %v, want ErrRoundIncomplete", err)
	}
}

func TestAdvanceAfterCompletionFails(t *testing.T) {
	tr, err := New(bracket.FormatSingleElim, humans("a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	winAll(t, tr)
	if err := tr.AdvanceRound(); err != nil {
		t.Fatal(err)
	}
	if err := tr.AdvanceRound(); err != ErrTournamentFinished {
		t.Fatalf("got %v, want ErrTournamentFinished", err)
	}
	if tr.CurrentRound() != nil {
		t.Fatal("terminal tournament still reports a current round")
	}
}

func TestByeAdvancesAutomatically(t *testing.T) {
	tr, err := New(bracket.FormatSingleElim, humans("a", "b", "c"))
	if err != nil {
		t.Fatal(err)
	}
	round := tr.CurrentRound()
	if len(round.Matches) != 1 {
		t.Fatalf("round 1 matches = %d, want 1", len(round.Matches))
	}
	winAll(t, tr)
	if err := tr.AdvanceRound(); err != nil {
		t.Fatal(err)
	}

	// Round 2 must contain the bye holder.
	round = tr.CurrentRound()
	found := false
	for _, m := range round.Matches {
		for _, c := range m.Competitors {
			if c == bracket.Human("c") {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("bye competitor missing from the next round")
	}
}

func TestRecordResultUnknownRoundAndMatch(t *testing.T) {
	tr, err := New(bracket.FormatSingleElim, humans("a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.RecordResult(9, "x", [2]int{1, 0}, bracket.Human("a"), 0); err != ErrRoundNotFound {
		t.Fatalf("got %v, want ErrRoundNotFound", err)
	}
	if err := tr.RecordResult(1, "nope", [2]int{1, 0}, bracket.Human("a"), 0); err != ErrMatchNotFound {
		t.Fatalf("got %v, want ErrMatchNotFound", err)
	}
}

func TestRoundRobinResolvesByPoints(t *testing.T) {
	tr, err := New(bracket.FormatRoundRobin, humans("a", "b", "c", "d"))
	if err != nil {
		t.Fatal(err)
	}
	// "a" wins every match it plays; everyone else loses to it at least
	// once, so it tops the table outright.
	for tr.Status != StatusCompleted {
		round := tr.CurrentRound()
		for _, m := range round.Matches {
			winner := m.Competitors[0]
			if m.Competitors[1].Key() < winner.Key() {
				winner = m.Competitors[1]
			}
			if err := tr.RecordResult(round.Number, m.ID, [2]int{2, 0}, winner, time.Minute); err != nil {
				t.Fatal(err)
			}
		}
		if err := tr.AdvanceRound(); err != nil {
			t.Fatal(err)
		}
	}
	if tr.Winner == nil || *tr.Winner != bracket.Human("a") {
		t.Fatalf("winner = %v, want a", tr.Winner)
	}
	if got := tr.ScoreTable["h:a"]; got != 3 {
		t.Fatalf("score for a = %d, want 3", got)
	}
	if len(tr.Rounds) != tr.TotalRounds {
		t.Fatalf("rounds played = %d, want %d", len(tr.Rounds), tr.TotalRounds)
	}
}

func TestRoundRobinHeadToHeadTieBreak(t *testing.T) {
	tr, err := New(bracket.FormatRoundRobin, humans("a", "b", "c", "d"))
	if err != nil {
		t.Fatal(err)
	}
	// a beats c and d, b beats a and d, c beats b, d beats c. a and b tie
	// on 2 points; b took their head-to-head, so b is champion.
	winners := map[string]bracket.Competitor{
		"h:a|h:c": bracket.Human("a"),
		"h:a|h:d": bracket.Human("a"),
		"h:a|h:b": bracket.Human("b"),
		"h:b|h:d": bracket.Human("b"),
		"h:b|h:c": bracket.Human("c"),
		"h:c|h:d": bracket.Human("d"),
	}
	for tr.Status != StatusCompleted {
		round := tr.CurrentRound()
		for _, m := range round.Matches {
			w := winners[string(bracket.CanonicalPair(m.Competitors[0], m.Competitors[1]))]
			if err := tr.RecordResult(round.Number, m.ID, [2]int{2, 1}, w, time.Minute); err != nil {
				t.Fatal(err)
			}
		}
		if err := tr.AdvanceRound(); err != nil {
			t.Fatal(err)
		}
	}
	if tr.Winner == nil || *tr.Winner != bracket.Human("b") {
		t.Fatalf("winner = %v, want b via head-to-head", tr.Winner)
	}
}

func TestAdvanceRejectedLeavesRoundPointer(t *testing.T) {
	tr, err := New(bracket.FormatSingleElim, humans("a", "b", "c", "d"))
	if err != nil {
		t.Fatal(err)
	}
	winAll(t, tr)

	// Corrupt the completed round with a winner that never entered the
	// bracket. The advance must fail without generating a round or moving
	// the round pointer.
	round := tr.CurrentRound()
	round.Status = bracket.RoundCompleted
	round.Winners = []bracket.Competitor{bracket.Human("a"), bracket.Human("zz")}

	before := len(tr.Rounds)
	if err := tr.AdvanceRound(); err != bracket.ErrInsufficientParticipants {
		t.Fatalf("got %v, want ErrInsufficientParticipants", err)
	}
	if len(tr.Rounds) != before {
		t.Fatalf("rounds = %d after rejected advance, want %d", len(tr.Rounds), before)
	}
	if tr.current != 0 {
		t.Fatalf("round pointer = %d after rejected advance, want 0", tr.current)
	}
}

func TestSnapshotShape(t *testing.T) {
	tr, err := New(bracket.FormatSingleElim, humans("a", "b", "c"))
	if err != nil {
		t.Fatal(err)
	}
	snap := tr.Snap()
	if snap.ID != tr.ID || snap.Status != StatusOngoing {
		t.Fatalf("snapshot header mismatch: %+v", snap)
	}
	if len(snap.Participants) != 3 || len(snap.Rounds) != 1 {
		t.Fatalf("snapshot shape: %+v", snap)
	}
	if snap.Rounds[0].Bye == "" {
		t.Fatal("snapshot missing bye for odd bracket")
	}
	if len(snap.Rounds[0].Matches) != 1 {
		t.Fatalf("snapshot matches = %d, want 1", len(snap.Rounds[0].Matches))
	}
}

func TestManagerBridgesSessionResults(t *testing.T) {
	var completed *Snapshot
	var rewards map[string]int
	mgr := NewManager(Observers{
		OnTournamentCompleted: func(snap Snapshot, xp map[string]int) {
			completed = &snap
			rewards = xp
		},
	})

	tr, err := mgr.Create(bracket.FormatSingleElim, humans("a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	m := tr.CurrentRound().Matches[0]
	if err := mgr.BindRoom("room-1", tr.ID, 1, m.ID); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	mgr.HandleMatchCompleted(sessionResult("room-1", []string{"a"}, now))

	if completed == nil {
		t.Fatal("completion observer not fired")
	}
	if completed.Winner != "h:a" {
		t.Fatalf("winner = %q, want h:a", completed.Winner)
	}
	if rewards["h:a"] <= rewards["h:b"] {
		t.Fatalf("winner xp %d not above loser xp %d", rewards["h:a"], rewards["h:b"])
	}
}

func TestManagerResolvesLocalWinner(t *testing.T) {
	var completed *Snapshot
	mgr := NewManager(Observers{
		OnTournamentCompleted: func(snap Snapshot, xp map[string]int) { completed = &snap },
	})
	tr, err := mgr.Create(bracket.FormatSingleElim, []bracket.Competitor{
		bracket.Human("a"),
		bracket.NamedLocal("guest"),
	})
	if err != nil {
		t.Fatal(err)
	}
	m := tr.CurrentRound().Matches[0]
	if err := mgr.BindRoom("room-1", tr.ID, 1, m.ID); err != nil {
		t.Fatal(err)
	}

	// The room only knows the winner's display name; the manager must map
	// it onto the locally named slot, not assume a registered user.
	mgr.HandleMatchCompleted(sessionResult("room-1", []string{"guest"}, time.Now()))

	if m.Winner == nil || *m.Winner != bracket.NamedLocal("guest") {
		t.Fatalf("match winner = %v, want local guest", m.Winner)
	}
	if completed == nil || completed.Winner != "n:guest" {
		t.Fatalf("tournament winner = %+v, want n:guest", completed)
	}
}

func TestManagerIgnoresUnboundAndVoidedResults(t *testing.T) {
	mgr := NewManager(Observers{})
	tr, err := mgr.Create(bracket.FormatSingleElim, humans("a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	m := tr.CurrentRound().Matches[0]

	// Unbound room: nothing happens.
	mgr.HandleMatchCompleted(sessionResult("casual", []string{"a"}, time.Now()))

	// Voided result on a bound room: binding consumed, round untouched.
	if err := mgr.BindRoom("room-1", tr.ID, 1, m.ID); err != nil {
		t.Fatal(err)
	}
	void := sessionResult("room-1", nil, time.Now())
	void.WinnerTeam = -1
	mgr.HandleMatchCompleted(void)

	if tr.Status != StatusOngoing {
		t.Fatalf("status = %q, want ongoing", tr.Status)
	}
	if m.Winner != nil {
		t.Fatal("voided result decided the match")
	}
}

func TestManagerGetUnknown(t *testing.T) {
	mgr := NewManager(Observers{})
	if _, err := mgr.Get("missing"); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := mgr.Advance("missing"); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := mgr.BindRoom("r", "missing", 1, "m"); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
