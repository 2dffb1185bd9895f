// Task 8.2: Bounded conversation memory.
package aiclient

// DefaultBufferSize is the conversation cap applied when Config omits one.
const DefaultBufferSize = 50

// Buffer holds the rolling conversation window sent with each chat request.
// When the cap is exceeded the oldest non-system turns are dropped first, so
// persona and instruction turns survive arbitrarily long conversations.
// Not safe for concurrent use; the Client serializes access.
type Buffer struct {
	max  int
	msgs []Message
}

// NewBuffer creates a Buffer capped at max turns (DefaultBufferSize if max <= 0).
func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = DefaultBufferSize
	}
	return &Buffer{max: max}
}

// Append adds one turn and trims to the cap.
func (b *Buffer) Append(msg Message) {
	b.msgs = append(b.msgs, msg)
	b.trim()
}

// AppendExchange records one completed user/assistant round trip.
// Called once per successful send, never per retry attempt.
func (b *Buffer) AppendExchange(userText, assistantText string) {
	b.msgs = append(b.msgs,
		Message{Role: RoleUser, Content: userText},
		Message{Role: RoleAssistant, Content: assistantText},
	)
	b.trim()
}

// Messages returns a copy of the current window, oldest first.
func (b *Buffer) Messages() []Message {
	out := make([]Message, len(b.msgs))
	copy(out, b.msgs)
	return out
}

// Len returns the number of buffered turns.
func (b *Buffer) Len() int { return len(b.msgs) }

// trim drops the oldest non-system turns until the window fits the cap.
// If every remaining turn is a system turn the window stays over cap —
// instructions are never silently discarded.
func (b *Buffer) trim() {
	for len(b.msgs) > b.max {
		dropped := false
		for i, m := range b.msgs {
			if m.Role != RoleSystem {
				b.msgs = append(b.msgs[:i], b.msgs[i+1:]...)
				dropped = true
				break
			}
		}
		if !dropped {
			return
		}
	}
}
