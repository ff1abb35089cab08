package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kamtechie/zenji/internal/datatypes"
	"github.com/kamtechie/zenji/internal/models"
)

// ChatService answers a conversation turn.
type ChatService interface {
	SendMessage(ctx context.Context, history []models.ChatMessage) (models.ChatMessage, error)
}

// MessageBody is a chat message on the wire.
type MessageBody struct {
	Role    string `json:"role" enum:"system,user,assistant" doc:"Message author"`
	Content string `json:"content" doc:"Message text"`
}

// SendMessageInput is the request for POST /v1/messages.
type SendMessageInput struct {
	Body struct {
		Messages []MessageBody `json:"messages" doc:"Full conversation so far, oldest first; the last message drives retrieval"`
	}
}

// SendMessageOutput is the response for POST /v1/messages.
type SendMessageOutput struct {
	Body struct {
		Message MessageBody `json:"message" doc:"The assistant's reply"`
	}
}

// ChatHandler exposes the conversation service over HTTP.
type ChatHandler struct {
	service ChatService
	logger  *slog.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(service ChatService, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ChatHandler{service: service, logger: logger}
}

// Register adds the chat operations to api.
func (h *ChatHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "send-message",
		Method:      http.MethodPost,
		Path:        "/v1/messages",
		Summary:     "Send a conversation turn",
		Description: "Returns one assistant reply grounded in the remedy excerpts most similar to the last message.",
		Tags:        []string{"Chat"},
		Errors:      []int{http.StatusUnprocessableEntity, http.StatusBadGateway, http.StatusGatewayTimeout},
	}, h.SendMessage)
}

// SendMessage handles POST /v1/messages.
func (h *ChatHandler) SendMessage(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error) {
	history, err := toChatMessages(input.Body.Messages)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	reply, err := h.service.SendMessage(ctx, history)
	if err != nil {
		h.logger.ErrorContext(ctx, "conversation turn failed", "error", err, "history", len(history))

		if errors.Is(err, context.DeadlineExceeded) {
			return nil, huma.Error504GatewayTimeout("timed out waiting for a reply")
		}

		return nil, huma.Error502BadGateway("failed to generate a reply")
	}

	out := &SendMessageOutput{}
	out.Body.Message = MessageBody{Role: reply.Role.String(), Content: reply.Content}

	return out, nil
}

// toChatMessages converts wire messages. huma's enum validation normally rejects unknown roles
// before this runs.
func toChatMessages(in []MessageBody) ([]models.ChatMessage, error) {
	history := make([]models.ChatMessage, 0, len(in))

	for i, m := range in {
		msg, err := models.NewChatMessage(m.Role, m.Content)
		if err != nil {
			return nil, fmt.Errorf("messages[%d]: %w (expected one of %s)", i, err, strings.Join(datatypes.RoleStrings(), ", "))
		}

		history = append(history, msg)
	}

	return history, nil
}
