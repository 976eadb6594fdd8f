package persist

import "context"

// Keys for the full-set snapshots written after every mutation.
const (
	KeyAppointments = "appointments"
	KeyWaitlist     = "waitlist"
)

// Store is the durable key-value boundary. Load reports ok=false on missing
// data; callers treat any error as "start empty" and log Save failures
// without rolling back in-memory state.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, payload []byte) error
}

// Noop degrades the session to in-memory-only durability.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Load(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (n *Noop) Save(ctx context.Context, key string, payload []byte) error {
	return nil
}
