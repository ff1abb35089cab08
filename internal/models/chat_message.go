package models

import (
	"github.com/kamtechie/zenji/internal/datatypes"
)

// ChatMessage is one entry of a conversation. It is a value type; copies never alias.
type ChatMessage struct {
	Role    datatypes.Role `json:"role"`
	Content string         `json:"content"`
}

// NewChatMessage builds a message from a wire role string. Unknown roles are rejected.
func NewChatMessage(role, content string) (ChatMessage, error) {
	r, err := datatypes.ParseRole(role)
	if err != nil {
		return ChatMessage{}, err
	}

	return ChatMessage{Role: r, Content: content}, nil
}

// SystemMessage returns a system-authored message.
func SystemMessage(content string) ChatMessage {
	return ChatMessage{Role: datatypes.RoleSystem, Content: content}
}

// UserMessage returns a user-authored message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: datatypes.RoleUser, Content: content}
}

// AssistantMessage returns an assistant-authored message.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: datatypes.RoleAssistant, Content: content}
}

// LastContent returns the content of the last message, or "" for an empty conversation.
func LastContent(history []ChatMessage) string {
	if len(history) == 0 {
		return ""
	}

	return history[len(history)-1].Content
}
