package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Event is one outbound webhook notification.
type Event struct {
	Kind string         `json:"kind"`
	At   time.Time      `json:"at"`
	Data map[string]any `json:"data"`
}

// Notifier delivers events to a webhook from a single worker goroutine
// behind a bounded queue. Publishing never blocks the game loop: when
// the queue is full the event is dropped and counted, not waited on.
type Notifier struct {
	endpoint string
	client   *Client
	events   chan Event
	done     chan struct{}
}

func New(endpoint string, queueSize int) *Notifier {
	if queueSize <= 0 {
		queueSize = 256
	}
	n := &Notifier{
		endpoint: endpoint,
		client:   NewClient(5 * time.Second),
		events:   make(chan Event, queueSize),
		done:     make(chan struct{}),
	}
	go n.worker()
	return n
}

// Publish enqueues an event. A nil receiver or empty endpoint turns the
// notifier into a no-op so callers never need to guard.
func (n *Notifier) Publish(kind string, data map[string]any) {
	if n == nil || n.endpoint == "" {
		return
	}
	ev := Event{Kind: kind, At: time.Now(), Data: data}
	select {
	case n.events <- ev:
	default:
		log.Warn().Str("kind", kind).Msg("notify queue full, event dropped")
	}
}

func (n *Notifier) Close() {
	if n == nil {
		return
	}
	close(n.done)
}

func (n *Notifier) worker() {
	for {
		select {
		case <-n.done:
			return
		case ev := <-n.events:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := n.client.PostJSON(ctx, n.endpoint, ev)
			cancel()
			if err != nil {
				log.Warn().Str("kind", ev.Kind).Err(err).Msg("notify delivery failed")
			}
		}
	}
}
