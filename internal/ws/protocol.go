package ws

// Client-to-server messages. Every frame carries a type discriminator;
// unknown types are ignored rather than closing the socket.

type JoinMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

type ReadyMessage struct {
	Type  string `json:"type"`
	Ready bool   `json:"ready"`
}

type KeyMessage struct {
	Type string `json:"type"` // keydown or keyup
	Key  string `json:"key"`  // ArrowUp or ArrowDown
}

type JoinResult struct {
	Type   string `json:"type"`
	Ok     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	RoomID string `json:"room_id,omitempty"`
	Seat   int    `json:"seat"`
}

type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// dirForKey maps the arrow keys to a paddle direction. Screen
// coordinates: up is negative y.
func dirForKey(key string) (int, bool) {
	switch key {
	case "ArrowUp":
		return -1, true
	case "ArrowDown":
		return 1, true
	default:
		return 0, false
	}
}
