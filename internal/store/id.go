package store

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// idSource serializes access to the monotonic entropy so concurrent
// writers get strictly ordered, collision-free ids.
type idSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

var ids = &idSource{
	entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
}

// NewID returns a ULID for persisted records: sortable by creation time,
// unlike the uuids used for live room and tournament identities.
func NewID() string {
	ids.mu.Lock()
	defer ids.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ids.entropy).String()
}
