package model

import (
	"time"
)

// Role represents the role of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ToolCallRequest is one tool invocation requested by the model.
type ToolCallRequest struct {
	ID            string `json:"id"`
	FunctionName  string `json:"function_name"`
	ArgumentsJSON string `json:"arguments"`
}

// Message represents one transcript entry.
type Message struct {
	Role Role `json:"role"`

	// Content is nil when an assistant entry only carries tool-call requests.
	Content *string `json:"content"`

	ToolCalls []ToolCallRequest `json:"tool_calls,omitempty"`

	// Tool-role entries only.
	ToolCallID string `json:"tool_call_id,omitempty"`
	Name       string `json:"name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Text returns the content or an empty string.
func (m Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

// HasToolCalls reports whether the entry requests tool execution.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// SystemMessage builds a system entry.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: &content, CreatedAt: time.Now()}
}

// UserMessage builds a user entry.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: &content, CreatedAt: time.Now()}
}

// AssistantMessage builds a plain assistant reply.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: &content, CreatedAt: time.Now()}
}

// AssistantToolCallMessage builds the assistant entry that carries tool-call
// requests. Empty content is stored as null.
func AssistantToolCallMessage(content string, calls []ToolCallRequest) Message {
	msg := Message{
		Role:      RoleAssistant,
		ToolCalls: append([]ToolCallRequest(nil), calls...),
		CreatedAt: time.Now(),
	}
	if content != "" {
		msg.Content = &content
	}
	return msg
}

// ToolResultMessage builds the tool-role entry answering one tool call.
func ToolResultMessage(toolCallID, name, content string) Message {
	return Message{
		Role:       RoleTool,
		Content:    &content,
		ToolCallID: toolCallID,
		Name:       name,
		CreatedAt:  time.Now(),
	}
}
