package openai

import (
	"context"
	"errors"
	"fmt"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// ErrNoEmbeddingInResponse is returned when the API response contains no embedding data.
	ErrNoEmbeddingInResponse = errors.New("openai: no embedding in response")
	// ErrEmbeddingCountMismatch is returned when a batch response does not have one vector per input.
	ErrEmbeddingCountMismatch = errors.New("openai: embedding count mismatch")
)

var tracer = otel.Tracer("github.com/kamtechie/zenji/internal/openai")

// CreateEmbedding returns the embedding vector for text. Any string is accepted, including "".
// Exactly one API call is made; the first vector of the response is returned.
func (c *Client) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	ctx, span := tracer.Start(ctx, "openai.embeddings.create")
	defer span.End()

	span.SetAttributes(attribute.String("openai.model", c.embeddingModel))

	resp, err := c.sdk.Embeddings.New(ctx, c.embeddingParams(openaisdk.EmbeddingNewParamsInputUnion{
		OfString: param.NewOpt(text),
	}))
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("openai embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, ErrNoEmbeddingInResponse
	}

	return toFloat32(resp.Data[0].Embedding), nil
}

// CreateEmbeddings embeds a batch of texts in one API call, one vector per input in input order.
// An empty batch returns an empty result without calling the API.
func (c *Client) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	ctx, span := tracer.Start(ctx, "openai.embeddings.create_batch")
	defer span.End()

	span.SetAttributes(
		attribute.String("openai.model", c.embeddingModel),
		attribute.Int("openai.inputs", len(texts)),
	)

	resp, err := c.sdk.Embeddings.New(ctx, c.embeddingParams(openaisdk.EmbeddingNewParamsInputUnion{
		OfArrayOfStrings: texts,
	}))
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("openai embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrEmbeddingCountMismatch, len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, fmt.Errorf("%w: index %d out of range", ErrEmbeddingCountMismatch, d.Index)
		}

		out[d.Index] = toFloat32(d.Embedding)
	}

	return out, nil
}

func (c *Client) embeddingParams(input openaisdk.EmbeddingNewParamsInputUnion) openaisdk.EmbeddingNewParams {
	params := openaisdk.EmbeddingNewParams{
		Input: input,
		Model: openaisdk.EmbeddingModel(c.embeddingModel),
	}
	if c.dimensions > 0 {
		params.Dimensions = param.NewOpt(int64(c.dimensions))
	}

	return params
}

func toFloat32(emb []float64) []float32 {
	out := make([]float32, len(emb))
	for i := range emb {
		out[i] = float32(emb[i])
	}

	return out
}
