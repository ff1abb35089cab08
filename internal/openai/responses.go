package openai

import (
	"context"
	"fmt"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kamtechie/zenji/internal/datatypes"
	"github.com/kamtechie/zenji/internal/models"
)

var easyRoles = map[datatypes.Role]responses.EasyInputMessageRole{
	datatypes.RoleSystem:    responses.EasyInputMessageRoleSystem,
	datatypes.RoleUser:      responses.EasyInputMessageRoleUser,
	datatypes.RoleAssistant: responses.EasyInputMessageRoleAssistant,
}

// CreateResponse sends input to the responses endpoint with the configured chat model and waits
// for one non-streaming reply.
func (c *Client) CreateResponse(ctx context.Context, input []models.ChatMessage) (*models.CompletionResponse, error) {
	ctx, span := tracer.Start(ctx, "openai.responses.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("openai.model", c.chatModel),
		attribute.Int("openai.input_messages", len(input)),
	)

	items, err := toInputItems(input)
	if err != nil {
		span.RecordError(err)

		return nil, err
	}

	resp, err := c.sdk.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.chatModel),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: items,
		},
	})
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("openai response: %w", err)
	}

	return fromResponse(resp), nil
}

func toInputItems(input []models.ChatMessage) (responses.ResponseInputParam, error) {
	items := make(responses.ResponseInputParam, 0, len(input))

	for i, msg := range input {
		role, ok := easyRoles[msg.Role]
		if !ok {
			return nil, fmt.Errorf("input message %d: %w", i, datatypes.ErrInvalidRole)
		}

		items = append(items, responses.ResponseInputItemUnionParam{
			OfMessage: &responses.EasyInputMessageParam{
				Role: role,
				Content: responses.EasyInputMessageContentUnionParam{
					OfString: openaisdk.String(msg.Content),
				},
			},
		})
	}

	return items, nil
}

// fromResponse maps the SDK reply onto the provider-neutral model. The SDK's flattened text
// is empty when the reply has no output_text content; that maps to a nil OutputText.
func fromResponse(resp *responses.Response) *models.CompletionResponse {
	out := &models.CompletionResponse{}
	if resp == nil {
		return out
	}

	if text := resp.OutputText(); text != "" {
		out.OutputText = &text
	}

	out.Output = make([]models.CompletionOutputItem, 0, len(resp.Output))
	for _, item := range resp.Output {
		msg := item.AsMessage()

		blocks := make([]models.CompletionContentBlock, 0, len(msg.Content))
		for _, content := range msg.Content {
			blocks = append(blocks, models.CompletionContentBlock{Text: content.Text})
		}

		out.Output = append(out.Output, models.CompletionOutputItem{Content: blocks})
	}

	return out
}
