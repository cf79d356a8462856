package api

// Conversation roles accepted in question requests.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in the interview conversation.
type Message struct {
	Role    string `json:"role"`    // "user" or "assistant"
	Content string `json:"content"` // The message text
}
