package chat

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn. Content is usually plain text, but
// json-mode input may carry any JSON value.
type Message struct {
	Role    Role `json:"role"`
	Content any  `json:"content"`
}

// History is the ordered conversation sent with every request. Entries are
// only ever appended or cleared, never reordered.
type History struct {
	messages []Message
}

// Append adds messages to the end of the conversation.
func (h *History) Append(msgs ...Message) {
	h.messages = append(h.messages, msgs...)
}

// Clear empties the conversation.
func (h *History) Clear() {
	h.messages = nil
}

// Len returns the number of messages in the conversation.
func (h *History) Len() int {
	return len(h.messages)
}

// Snapshot returns a copy of the conversation in order. Mutating the
// returned slice does not affect the history.
func (h *History) Snapshot() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}
