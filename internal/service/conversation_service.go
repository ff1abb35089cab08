package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kamtechie/zenji/internal/models"
	"github.com/kamtechie/zenji/internal/observability"
	"github.com/kamtechie/zenji/internal/prompts"
)

// RemedyRetriever returns remedy excerpts relevant to a query.
type RemedyRetriever interface {
	RetrieveRelevantRemedies(ctx context.Context, query string) ([]string, error)
}

// ResponseClient sends a model input sequence and returns the completion.
type ResponseClient interface {
	CreateResponse(ctx context.Context, input []models.ChatMessage) (*models.CompletionResponse, error)
}

// ConversationService answers one conversation turn with retrieval-grounded advice.
type ConversationService struct {
	retriever RemedyRetriever
	responses ResponseClient
	metrics   observability.ChatMetrics
	logger    *slog.Logger
}

// ConversationServiceParams configures ConversationService. Metrics may be nil.
type ConversationServiceParams struct {
	Retriever RemedyRetriever
	Responses ResponseClient
	Metrics   observability.ChatMetrics
	Logger    *slog.Logger
}

// NewConversationService creates a ConversationService.
func NewConversationService(p ConversationServiceParams) *ConversationService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ConversationService{
		retriever: p.Retriever,
		responses: p.Responses,
		metrics:   p.Metrics,
		logger:    logger,
	}
}

// SendMessage produces the assistant's reply to history. The history is not modified; the
// retrieval query is the content of its last message.
func (s *ConversationService) SendMessage(ctx context.Context, history []models.ChatMessage) (models.ChatMessage, error) {
	ctx, span := tracer.Start(ctx, "service.send_message")
	defer span.End()

	span.SetAttributes(attribute.Int("conversation.history_length", len(history)))

	start := time.Now()

	excerpts, err := s.retriever.RetrieveRelevantRemedies(ctx, models.LastContent(history))
	if err != nil {
		span.RecordError(err)
		s.recordTurn(ctx, observability.OutcomeRetrievalFailed, start)

		return models.ChatMessage{}, fmt.Errorf("retrieve remedies: %w", err)
	}

	callStart := time.Now()
	resp, err := s.responses.CreateResponse(ctx, BuildModelInput(history, excerpts))

	if s.metrics != nil {
		s.metrics.RecordOpenAICall(ctx, observability.OperationResponse, err, time.Since(callStart))
	}

	if err != nil {
		span.RecordError(err)
		s.recordTurn(ctx, observability.OutcomeCompletionFailed, start)

		return models.ChatMessage{}, fmt.Errorf("create response: %w", err)
	}

	reply := models.AssistantMessage(ReplyText(resp))

	s.recordTurn(ctx, observability.OutcomeSuccess, start)
	s.logger.DebugContext(ctx, "conversation turn completed",
		"history", len(history),
		"excerpts", len(excerpts),
		"reply_length", len(reply.Content),
	)

	return reply, nil
}

func (s *ConversationService) recordTurn(ctx context.Context, outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordChatTurn(ctx, outcome, time.Since(start))
	}
}

// BuildModelInput frames history between the advisory system prompt and a trailing system
// message carrying the retrieved excerpts. The result always has len(history)+2 entries.
func BuildModelInput(history []models.ChatMessage, excerpts []string) []models.ChatMessage {
	input := make([]models.ChatMessage, 0, len(history)+2)
	input = append(input, models.SystemMessage(prompts.SystemPrompt))
	input = append(input, history...)
	input = append(input, models.SystemMessage(prompts.RemedyExcerpts(excerpts)))

	return input
}

// replyTextAccessor extracts reply text from one location in a completion, reporting whether
// that location was populated.
type replyTextAccessor func(resp *models.CompletionResponse) (string, bool)

// replyTextAccessors are tried in order; the first populated location wins.
var replyTextAccessors = []replyTextAccessor{
	flattenedOutputText,
	firstOutputContentText,
}

func flattenedOutputText(resp *models.CompletionResponse) (string, bool) {
	if resp.OutputText == nil {
		return "", false
	}

	return *resp.OutputText, true
}

func firstOutputContentText(resp *models.CompletionResponse) (string, bool) {
	if len(resp.Output) == 0 || len(resp.Output[0].Content) == 0 {
		return "", false
	}

	return resp.Output[0].Content[0].Text, true
}

// ReplyText returns the reply text of resp, or "" when no accessor finds any.
func ReplyText(resp *models.CompletionResponse) string {
	if resp == nil {
		return ""
	}

	for _, accessor := range replyTextAccessors {
		if text, ok := accessor(resp); ok {
			return text
		}
	}

	return ""
}
