package chat

const (
	ChatRoleUser   = "user"
	ChatRoleAgent  = "assistant" // narrator voice
	ChatRoleSystem = "system"
)

// ChatMessage represents a single message in a play session transcript.
// The role/content structure matches what the chat-completion providers
// expect on the wire.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Transcript is the ordered conversation for one play session. The system
// message is always first and is fixed for the life of the session.
type Transcript []ChatMessage

// WithSystemInstruction returns a copy of the transcript with an extra
// system message prepended for a single generation call. The receiver is
// never mutated; per-call instructions must not leak into the stored
// transcript.
func (t Transcript) WithSystemInstruction(instruction string) Transcript {
	if instruction == "" {
		return t
	}
	out := make(Transcript, 0, len(t)+1)
	out = append(out, ChatMessage{Role: ChatRoleSystem, Content: instruction})
	out = append(out, t...)
	return out
}

// Append returns the transcript with a new message added.
func (t Transcript) Append(role, content string) Transcript {
	return append(t, ChatMessage{Role: role, Content: content})
}
