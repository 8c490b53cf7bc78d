package chat

// Roles of a conversation turn as reported by the upstream service.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn. Bodies are never persisted locally;
// the struct exists only while a turn is in flight.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
