package session

import (
	"testing"
	"time"

	"paddle-arena/internal/config"
)

func testCoordinator(hooks Hooks) *Coordinator {
	return NewCoordinator(config.GameConfig{
		TickHz:          200,
		MaxRounds:       3,
		RoundScoreLimit: 3,
		BallSpeedRamp:   1.05,
		BallMaxSpeed:    12,
	}, hooks)
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestCoordinatorRoomNotFound(t *testing.T) {
	c := testCoordinator(Hooks{})
	defer c.Shutdown()

	if _, err := c.Join("missing", "alice", &captureConn{}); err != ErrRoomNotFound {
		t.Fatalf("join: expected ErrRoomNotFound, got %v", err)
	}
	if err := c.SetReady("missing", "alice", true); err != ErrRoomNotFound {
		t.Fatalf("set ready: expected ErrRoomNotFound, got %v", err)
	}
	if err := c.Start("missing", "alice"); err != ErrRoomNotFound {
		t.Fatalf("start: expected ErrRoomNotFound, got %v", err)
	}
}

func TestCoordinatorDuplicateRoomID(t *testing.T) {
	c := testCoordinator(Hooks{})
	defer c.Shutdown()

	if _, err := c.CreateRoom("r1", Config{}, "alice", &captureConn{}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := c.CreateRoom("r1", Config{}, "bob", &captureConn{}); err != ErrRoomExists {
		t.Fatalf("expected ErrRoomExists, got %v", err)
	}
}

func TestCoordinatorLobbyFlow(t *testing.T) {
	c := testCoordinator(Hooks{})
	defer c.Shutdown()

	host, guest := &captureConn{}, &captureConn{}
	id, err := c.CreateRoom("", Config{Format: FormatDuel}, "alice", host)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated room id")
	}

	seat, err := c.Join(id, "bob", guest)
	if err != nil || seat != 1 {
		t.Fatalf("guest join: seat=%d err=%v", seat, err)
	}
	if err := c.SetReady(id, "bob", true); err != nil {
		t.Fatalf("ready: %v", err)
	}
	if err := c.Start(id, "bob"); err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := c.Start(id, "alice"); err != nil {
		t.Fatalf("start: %v", err)
	}

	waitFor(t, func() bool { return guest.countType("game_started") == 1 }, "game_started broadcast")
	waitFor(t, func() bool { return host.countType("game_state") > 0 }, "state broadcasts")

	if err := c.Input(id, "bob", -1, true); err != nil {
		t.Fatalf("input: %v", err)
	}
	if err := c.Input(id, "mallory", -1, true); err != ErrNotAMember {
		t.Fatalf("expected ErrNotAMember for outsider input, got %v", err)
	}
}

func TestCoordinatorOwnerLeaveDestroysRoom(t *testing.T) {
	done := make(chan MatchResult, 1)
	c := testCoordinator(Hooks{OnMatchCompleted: func(res MatchResult) { done <- res }})
	defer c.Shutdown()

	host, guest := &captureConn{}, &captureConn{}
	id, err := c.CreateRoom("", Config{Format: FormatDuel}, "alice", host)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := c.Join(id, "bob", guest); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := c.SetReady(id, "bob", true); err != nil {
		t.Fatalf("ready: %v", err)
	}
	if err := c.Start(id, "alice"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := c.Leave(id, "alice"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	select {
	case res := <-done:
		if !res.Forfeit || res.WinnerTeam != 1 {
			t.Fatalf("unexpected forfeit result: %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no match result after owner disconnect")
	}
	waitFor(t, func() bool { return len(c.Rooms()) == 0 }, "room removal")
}

func TestCoordinatorRoomsListing(t *testing.T) {
	c := testCoordinator(Hooks{})
	defer c.Shutdown()

	if _, err := c.CreateRoom("b-room", Config{}, "bob", &captureConn{}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := c.CreateRoom("a-room", Config{Format: FormatArena}, "alice", &captureConn{}); err != nil {
		t.Fatalf("create: %v", err)
	}

	infos := c.Rooms()
	if len(infos) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(infos))
	}
	if infos[0].ID != "a-room" || infos[1].ID != "b-room" {
		t.Fatalf("rooms not ordered by id: %v, %v", infos[0].ID, infos[1].ID)
	}
	if infos[0].Format != FormatArena || infos[0].Occupied != 1 {
		t.Fatalf("unexpected room info: %+v", infos[0])
	}

	info, err := c.Info("a-room")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Phase != "idle" || len(info.Seats) != 4 {
		t.Fatalf("unexpected info: %+v", info)
	}
}
