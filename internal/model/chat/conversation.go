package chat

import "time"

// Conversation is the local view of an upstream conversation context. The
// identifier is opaque and owned by the upstream service; only counters and
// timestamps are tracked here, never message bodies.
type Conversation struct {
	ID           string    `json:"id"`
	Turns        int       `json:"turns"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
}
