package model

import (
	"time"
)

// TurnEventType represents the type of turn progress event.
type TurnEventType string

const (
	TurnEventToolCall   TurnEventType = "tool_call"
	TurnEventToolResult TurnEventType = "tool_result"
	TurnEventReply      TurnEventType = "reply"
	TurnEventError      TurnEventType = "error"
)

// TurnEvent reports orchestrator progress for one user turn. Tool results are
// reduced to an outcome code so calendar contents never leave the core.
type TurnEvent struct {
	ID         string        `json:"id"`
	SessionID  string        `json:"session_id"`
	Type       TurnEventType `json:"type"`
	Round      int           `json:"round"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
	ToolName   string        `json:"tool_name,omitempty"`
	Outcome    string        `json:"outcome,omitempty"`
	Content    string        `json:"content,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}
