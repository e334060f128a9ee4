package session

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"paddle-arena/internal/config"
)

// Coordinator owns the room registry and fronts every room's mailbox.
// Rooms are created and destroyed continuously, so the registry itself is
// guarded; everything per-room is serialized by the room goroutine.
type Coordinator struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	defaults config.GameConfig
	hooks    Hooks
}

func NewCoordinator(defaults config.GameConfig, hooks Hooks) *Coordinator {
	return &Coordinator{
		rooms:    make(map[string]*Room),
		defaults: defaults,
		hooks:    hooks,
	}
}

// CreateRoom registers a room and seats the owner at seat 0. An empty id
// gets a generated one. The owner's connection may be nil when the room
// is created over HTTP ahead of the websocket join.
func (c *Coordinator) CreateRoom(id string, cfg Config, owner string, conn Sender) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if cfg.Format == "" {
		cfg.Format = FormatDuel
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = c.defaults.MaxRounds
	}
	if cfg.RoundScoreLimit <= 0 {
		cfg.RoundScoreLimit = c.defaults.RoundScoreLimit
	}
	if cfg.TickHz <= 0 {
		cfg.TickHz = c.defaults.TickHz
	}
	if cfg.Tuning.SpeedRamp == 0 {
		cfg.Tuning.SpeedRamp = c.defaults.BallSpeedRamp
	}
	if cfg.Tuning.MaxSpeed == 0 {
		cfg.Tuning.MaxSpeed = c.defaults.BallMaxSpeed
	}
	if cfg.Tuning.HazardRate == 0 {
		cfg.Tuning.HazardRate = c.defaults.HazardRate
	}

	c.mu.Lock()
	if _, exists := c.rooms[id]; exists {
		c.mu.Unlock()
		return "", ErrRoomExists
	}
	room := newRoom(id, cfg, c.hooks, c.remove)
	c.rooms[id] = room
	c.mu.Unlock()

	go room.run()
	log.Info().Str("room_id", id).Str("format", string(cfg.Format)).Str("owner", owner).Msg("room_created")

	if owner != "" {
		if _, err := c.Join(id, owner, conn); err != nil {
			return id, err
		}
	}
	return id, nil
}

func (c *Coordinator) room(id string) (*Room, error) {
	c.mu.RLock()
	room, ok := c.rooms[id]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (c *Coordinator) remove(id string) {
	c.mu.Lock()
	if room, ok := c.rooms[id]; ok {
		room.stop()
		delete(c.rooms, id)
	}
	c.mu.Unlock()
	log.Info().Str("room_id", id).Msg("room_destroyed")
}

// Join assigns the participant a seat, or returns their existing one.
func (c *Coordinator) Join(roomID, participant string, conn Sender) (int, error) {
	room, err := c.room(roomID)
	if err != nil {
		return -1, err
	}
	reply := make(chan joinReply, 1)
	select {
	case room.inbox <- joinMsg{participant: participant, conn: conn, reply: reply}:
	case <-room.quit:
		return -1, ErrRoomNotFound
	}
	select {
	case res := <-reply:
		return res.seat, res.err
	case <-room.quit:
		return -1, ErrRoomNotFound
	}
}

func (c *Coordinator) SetReady(roomID, participant string, ready bool) error {
	room, err := c.room(roomID)
	if err != nil {
		return err
	}
	reply := make(chan error, 1)
	select {
	case room.inbox <- readyMsg{participant: participant, ready: ready, reply: reply}:
	case <-room.quit:
		return ErrRoomNotFound
	}
	select {
	case err := <-reply:
		return err
	case <-room.quit:
		return ErrRoomNotFound
	}
}

// Start triggers the session exactly once; repeat calls while running are
// no-ops inside the room.
func (c *Coordinator) Start(roomID, participant string) error {
	room, err := c.room(roomID)
	if err != nil {
		return err
	}
	reply := make(chan error, 1)
	select {
	case room.inbox <- startMsg{participant: participant, reply: reply}:
	case <-room.quit:
		return ErrRoomNotFound
	}
	select {
	case err := <-reply:
		return err
	case <-room.quit:
		return ErrRoomNotFound
	}
}

// Input forwards a paddle command. dir is -1 for up, +1 for down.
func (c *Coordinator) Input(roomID, participant string, dir int, pressed bool) error {
	room, err := c.room(roomID)
	if err != nil {
		return err
	}
	reply := make(chan error, 1)
	select {
	case room.inbox <- inputMsg{participant: participant, dir: dir, pressed: pressed, reply: reply}:
	case <-room.quit:
		return ErrRoomNotFound
	}
	select {
	case err := <-reply:
		return err
	case <-room.quit:
		return ErrRoomNotFound
	}
}

func (c *Coordinator) Leave(roomID, participant string) error {
	room, err := c.room(roomID)
	if err != nil {
		return err
	}
	select {
	case room.inbox <- leaveMsg{participant: participant}:
	case <-room.quit:
	}
	return nil
}

// Rooms lists active rooms, ordered by id for a stable API response.
func (c *Coordinator) Rooms() []RoomInfo {
	c.mu.RLock()
	rooms := make([]*Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		rooms = append(rooms, r)
	}
	c.mu.RUnlock()

	infos := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		reply := make(chan RoomInfo, 1)
		select {
		case room.inbox <- infoMsg{reply: reply}:
			select {
			case info := <-reply:
				infos = append(infos, info)
			case <-room.quit:
			}
		case <-room.quit:
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

func (c *Coordinator) Info(roomID string) (RoomInfo, error) {
	room, err := c.room(roomID)
	if err != nil {
		return RoomInfo{}, err
	}
	reply := make(chan RoomInfo, 1)
	select {
	case room.inbox <- infoMsg{reply: reply}:
	case <-room.quit:
		return RoomInfo{}, ErrRoomNotFound
	}
	select {
	case info := <-reply:
		return info, nil
	case <-room.quit:
		return RoomInfo{}, ErrRoomNotFound
	}
}

// Shutdown stops every room goroutine. Idempotent per room.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, room := range c.rooms {
		room.stop()
		delete(c.rooms, id)
	}
}
