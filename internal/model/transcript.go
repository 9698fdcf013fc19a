package model

import (
	"encoding/json"
	"fmt"
)

// Transcript is the ordered, append-only entry list of one conversation
// session. Only the system prompt at index 0 is ever replaced.
type Transcript struct {
	sessionID string
	entries   []Message
}

// NewTranscript creates an empty transcript for a session.
func NewTranscript(sessionID string) *Transcript {
	return &Transcript{
		sessionID: sessionID,
		entries:   make([]Message, 0, 16),
	}
}

// SessionID returns the owning session.
func (t *Transcript) SessionID() string {
	return t.sessionID
}

// SetSystemPrompt installs content as entry 0, replacing a previous system prompt.
func (t *Transcript) SetSystemPrompt(content string) {
	msg := SystemMessage(content)
	if len(t.entries) > 0 && t.entries[0].Role == RoleSystem {
		t.entries[0] = msg
		return
	}
	t.entries = append([]Message{msg}, t.entries...)
}

// Append adds an entry to the end of the transcript.
func (t *Transcript) Append(msg Message) {
	msg.ToolCalls = append([]ToolCallRequest(nil), msg.ToolCalls...)
	t.entries = append(t.entries, msg)
}

// Messages returns a copy of all entries.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Last returns the final entry.
func (t *Transcript) Last() (Message, bool) {
	if len(t.entries) == 0 {
		return Message{}, false
	}
	return t.entries[len(t.entries)-1], true
}

type transcriptJSON struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

// MarshalJSON implements json.Marshaler.
func (t *Transcript) MarshalJSON() ([]byte, error) {
	return json.Marshal(transcriptJSON{SessionID: t.sessionID, Messages: t.entries})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Transcript) UnmarshalJSON(data []byte) error {
	var raw transcriptJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode transcript: %w", err)
	}
	t.sessionID = raw.SessionID
	t.entries = raw.Messages
	if t.entries == nil {
		t.entries = make([]Message, 0, 16)
	}
	return nil
}

// Clone returns an independent copy of the transcript.
func (t *Transcript) Clone() *Transcript {
	c := &Transcript{
		sessionID: t.sessionID,
		entries:   make([]Message, 0, len(t.entries)+4),
	}
	for _, msg := range t.entries {
		c.Append(msg)
	}
	return c
}
