package outbox

import "time"

// Message is an outbox row persisted by the dispatcher adapter.
// The worker relay reads pending rows and publishes them to the bus.
type Message struct {
	OutboxID   string
	EventType  string
	Payload    []byte
	Status     string // pending, published, failed
	RetryCount int
	CreatedAt  time.Time
	SentAt     *time.Time
}
