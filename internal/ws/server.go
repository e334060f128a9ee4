package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"paddle-arena/internal/session"
)

var errSendBufferFull = errors.New("send_buffer_full")

// Client is one websocket connection. Outbound frames go through the
// buffered send channel so the engine's tick loop never blocks on a
// slow socket; the write loop drains it.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	playerID string

	mu     sync.Mutex
	roomID string
}

// Send implements session.Sender. Nonblocking: a client that cannot
// keep up with the tick rate loses frames instead of stalling the room.
func (c *Client) Send(msg []byte) error {
	defer func() { _ = recover() }()
	select {
	case c.send <- msg:
		return nil
	default:
		return errSendBufferFull
	}
}

func (c *Client) room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

func (c *Client) setRoom(id string) {
	c.mu.Lock()
	c.roomID = id
	c.mu.Unlock()
}

type Server struct {
	coord    *session.Coordinator
	upgrader websocket.Upgrader

	mu       sync.Mutex
	byPlayer map[string]*Client
}

func NewServer(coord *session.Coordinator) *Server {
	return &Server{
		coord:    coord,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		byPlayer: map[string]*Client{},
	}
}

// HandleWS upgrades the connection. Identity travels in the player_id
// query parameter; authentication happened upstream, the engine only
// needs a stable name to key seats by.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		http.Error(w, "player_id required", http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{conn: conn, send: make(chan []byte, 64), playerID: playerID}

	s.mu.Lock()
	if old := s.byPlayer[playerID]; old != nil {
		safeClose(old.send)
		_ = old.conn.Close()
	}
	s.byPlayer[playerID] = client
	s.mu.Unlock()

	log.Info().Str("player_id", playerID).Msg("ws_connected")
	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}
		switch base.Type {
		case "join":
			var join JoinMessage
			if err := json.Unmarshal(msg, &join); err != nil {
				continue
			}
			s.handleJoin(c, join)
		case "set_ready":
			var ready ReadyMessage
			if err := json.Unmarshal(msg, &ready); err != nil {
				continue
			}
			if err := s.coord.SetReady(c.room(), c.playerID, ready.Ready); err != nil {
				s.sendError(c, err)
			}
		case "start_game":
			if err := s.coord.Start(c.room(), c.playerID); err != nil {
				s.sendError(c, err)
			}
		case "keydown", "keyup":
			var key KeyMessage
			if err := json.Unmarshal(msg, &key); err != nil {
				continue
			}
			dir, ok := dirForKey(key.Key)
			if !ok {
				continue
			}
			if err := s.coord.Input(c.room(), c.playerID, dir, base.Type == "keydown"); err != nil {
				s.sendError(c, err)
			}
		case "leave":
			if err := s.coord.Leave(c.room(), c.playerID); err == nil {
				c.setRoom("")
			}
		}
	}
}

func (s *Server) handleJoin(c *Client, join JoinMessage) {
	if prev := c.room(); prev != "" && prev != join.RoomID {
		_ = s.coord.Leave(prev, c.playerID)
	}
	seat, err := s.coord.Join(join.RoomID, c.playerID, c)
	if err != nil {
		s.sendJSON(c, JoinResult{Type: "join_result", Ok: false, Error: err.Error(), Seat: -1})
		return
	}
	c.setRoom(join.RoomID)
	s.sendJSON(c, JoinResult{Type: "join_result", Ok: true, RoomID: join.RoomID, Seat: seat})
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

// unregister tears the client out of its room. The engine treats the
// departure as a leave: an owner disconnect forfeits the match. A
// connection superseded by a reconnect must not leave on behalf of the
// live one, so only the registered connection gets to.
func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	current := s.byPlayer[c.playerID] == c
	if current {
		delete(s.byPlayer, c.playerID)
	}
	s.mu.Unlock()
	if current {
		if roomID := c.room(); roomID != "" {
			_ = s.coord.Leave(roomID, c.playerID)
		}
	}
	safeClose(c.send)
	log.Info().Str("player_id", c.playerID).Msg("ws_disconnected")
}

func (s *Server) sendError(c *Client, err error) {
	s.sendJSON(c, ErrorMessage{Type: "error", Error: err.Error()})
}

func (s *Server) sendJSON(c *Client, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Send(msg)
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}
