// Package model defines data structures for the reservation assistant.
package model

import (
	"time"
)

// Session describes one live conversation.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Turns     int       `json:"turns"`
}

// SessionRecord is what a session store persists for the session lifetime.
type SessionRecord struct {
	Session    Session     `json:"session"`
	Transcript *Transcript `json:"transcript"`
}

// SendMessageRequest is the request to run one user turn.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessageResponse is the assistant reply for one user turn.
type SendMessageResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	// Error carries the failure code when Reply is a fallback text.
	Error string `json:"error,omitempty"`
}

// TranscriptResponse is the response for reading a session transcript.
type TranscriptResponse struct {
	Session  Session   `json:"session"`
	Messages []Message `json:"messages"`
}

// TurnEventsResponse lists the audit events of a session.
type TurnEventsResponse struct {
	SessionID string      `json:"session_id"`
	Events    []TurnEvent `json:"events"`
}

// ErrorEvent represents an SSE error event.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
