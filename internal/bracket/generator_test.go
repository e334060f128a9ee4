package bracket

import (
	"fmt"
	"testing"
	"time"
)

func humans(n int) []Competitor {
	out := make([]Competitor, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, Human(fmt.Sprintf("p%d", i)))
	}
	return out
}

func TestGenerateEmptyFails(t *testing.T) {
	if _, err := Generate(nil, FormatSingleElim, 0, nil); err != ErrInsufficientParticipants {
		t.Fatalf("expected ErrInsufficientParticipants, got %v", err)
	}
	if _, err := Generate(nil, FormatRoundRobin, 0, PairSet{}); err != ErrInsufficientParticipants {
		t.Fatalf("expected ErrInsufficientParticipants, got %v", err)
	}
}

func TestSingleElimEvenCount(t *testing.T) {
	for _, n := range []int{2, 4, 8, 16} {
		res, err := Generate(humans(n), FormatSingleElim, 0, nil)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(res.Matches) != n/2 {
			t.Fatalf("n=%d: expected %d matches, got %d", n, n/2, len(res.Matches))
		}
		if res.Bye != nil {
			t.Fatalf("n=%d: unexpected bye %v", n, res.Bye)
		}
		seen := map[string]bool{}
		for _, m := range res.Matches {
			for _, c := range m.Competitors {
				if seen[c.Key()] {
					t.Fatalf("n=%d: %s paired twice", n, c.Key())
				}
				seen[c.Key()] = true
			}
		}
	}
}

func TestSingleElimOddCountLeavesBye(t *testing.T) {
	res, err := Generate(humans(5), FormatSingleElim, 0, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(res.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(res.Matches))
	}
	if res.Bye == nil || res.Bye.Key() != "h:p5" {
		t.Fatalf("expected p5 bye, got %v", res.Bye)
	}
}

func TestSingleElimConsecutivePairing(t *testing.T) {
	ps := humans(4)
	res, err := Generate(ps, FormatSingleElim, 0, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Matches[0].Competitors != [2]Competitor{ps[0], ps[1]} {
		t.Fatalf("match 0 not 0v1: %v", res.Matches[0].Competitors)
	}
	if res.Matches[1].Competitors != [2]Competitor{ps[2], ps[3]} {
		t.Fatalf("match 1 not 2v3: %v", res.Matches[1].Competitors)
	}
}

func TestRoundRobinFullCycleNoRepeats(t *testing.T) {
	for _, n := range []int{4, 6, 8} {
		ps := humans(n)
		prior := PairSet{}
		total := TotalRounds(n, FormatRoundRobin)
		if total != n-1 {
			t.Fatalf("n=%d: expected %d rounds, got %d", n, n-1, total)
		}
		seen := map[PairKey]int{}
		matchCount := 0
		for r := 0; r < total; r++ {
			res, err := Generate(ps, FormatRoundRobin, r, prior)
			if err != nil {
				t.Fatalf("n=%d round %d: %v", n, r, err)
			}
			for _, m := range res.Matches {
				key := CanonicalPair(m.Competitors[0], m.Competitors[1])
				if prev, dup := seen[key]; dup {
					t.Fatalf("n=%d: pair %s repeated in rounds %d and %d", n, key, prev, r)
				}
				seen[key] = r
				matchCount++
			}
		}
		if want := n * (n - 1) / 2; matchCount != want {
			t.Fatalf("n=%d: expected %d matches over the cycle, got %d", n, want, matchCount)
		}
	}
}

func TestRoundRobinDeterministic(t *testing.T) {
	ps := humans(6)
	a, err := Generate(ps, FormatRoundRobin, 2, PairSet{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := Generate(ps, FormatRoundRobin, 2, PairSet{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(a.Matches) != len(b.Matches) {
		t.Fatalf("nondeterministic match count: %d vs %d", len(a.Matches), len(b.Matches))
	}
	for i := range a.Matches {
		if a.Matches[i].Competitors != b.Matches[i].Competitors {
			t.Fatalf("match %d differs across invocations", i)
		}
	}
}

func TestRoundRobinExhaustedFails(t *testing.T) {
	ps := humans(4)
	prior := PairSet{}
	for r := 0; r < 3; r++ {
		if _, err := Generate(ps, FormatRoundRobin, r, prior); err != nil {
			t.Fatalf("round %d: %v", r, err)
		}
	}
	// Rotation wraps; every pair is now in prior.
	if _, err := Generate(ps, FormatRoundRobin, 3, prior); err != ErrNoMatchesGenerated {
		t.Fatalf("expected ErrNoMatchesGenerated, got %v", err)
	}
}

func TestRoundCompleteRequiresAllWinners(t *testing.T) {
	ps := humans(4)
	res, _ := Generate(ps, FormatSingleElim, 0, nil)
	round := &Round{Number: 1, Stage: StageLabel(4, FormatSingleElim), Matches: res.Matches, Status: RoundOngoing}

	now := time.Now()
	if err := round.Complete(now); err != ErrMatchResultIncomplete {
		t.Fatalf("expected ErrMatchResultIncomplete, got %v", err)
	}
	if round.Status == RoundCompleted {
		t.Fatal("round marked completed with undecided matches")
	}

	for _, m := range res.Matches {
		if err := m.Finish([2]int{2, 1}, m.Competitors[0], now); err != nil {
			t.Fatalf("finish: %v", err)
		}
	}
	if err := round.Complete(now); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(round.Winners) != 2 || round.Winners[0] != ps[0] || round.Winners[1] != ps[2] {
		t.Fatalf("unexpected winners: %v", round.Winners)
	}
}

func TestFinishRejectsOutsider(t *testing.T) {
	m := &Match{Competitors: [2]Competitor{Human("a"), Human("b")}, Status: MatchPending}
	if err := m.Finish([2]int{1, 0}, Human("c"), time.Now()); err != ErrUnknownCompetitor {
		t.Fatalf("expected ErrUnknownCompetitor, got %v", err)
	}
}

func TestCanonicalPairOrderIndependent(t *testing.T) {
	a, b := Human("x"), NamedLocal("y")
	if CanonicalPair(a, b) != CanonicalPair(b, a) {
		t.Fatal("canonical pair key depends on argument order")
	}
}

func TestStageLabels(t *testing.T) {
	cases := map[int]string{2: "final", 4: "semifinal", 8: "quarterfinal", 16: "round_of_16"}
	for remaining, want := range cases {
		if got := StageLabel(remaining, FormatSingleElim); got != want {
			t.Fatalf("remaining=%d: expected %q, got %q", remaining, want, got)
		}
	}
	if got := StageLabel(6, FormatRoundRobin); got != "group" {
		t.Fatalf("round robin stage: %q", got)
	}
}
