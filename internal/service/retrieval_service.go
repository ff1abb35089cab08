package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kamtechie/zenji/internal/observability"
	"github.com/kamtechie/zenji/internal/vectorstore"
)

// RemedyResultCount is the number of nearest remedy excerpts requested per turn.
const RemedyResultCount = 5

var tracer = otel.Tracer("github.com/kamtechie/zenji/internal/service")

// EmbeddingClient embeds a single query text.
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)
}

// CollectionProvider returns the remedies collection handle.
type CollectionProvider interface {
	GetCollection(ctx context.Context) (vectorstore.CollectionHandle, error)
}

// RetrievalService finds the remedy excerpts most similar to a query.
type RetrievalService struct {
	collections     CollectionProvider
	embeddingClient EmbeddingClient
	metrics         observability.ChatMetrics
	logger          *slog.Logger
}

// RetrievalServiceParams configures RetrievalService. Metrics may be nil.
type RetrievalServiceParams struct {
	Collections     CollectionProvider
	EmbeddingClient EmbeddingClient
	Metrics         observability.ChatMetrics
	Logger          *slog.Logger
}

// NewRetrievalService creates a RetrievalService.
func NewRetrievalService(p RetrievalServiceParams) *RetrievalService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RetrievalService{
		collections:     p.Collections,
		embeddingClient: p.EmbeddingClient,
		metrics:         p.Metrics,
		logger:          logger,
	}
}

// RetrieveRelevantRemedies returns up to RemedyResultCount remedy excerpts for query, most similar
// first. An empty store response yields an empty, non-nil slice.
func (s *RetrievalService) RetrieveRelevantRemedies(ctx context.Context, query string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "service.retrieve_relevant_remedies")
	defer span.End()

	collection, err := s.collections.GetCollection(ctx)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("open remedies collection: %w", err)
	}

	start := time.Now()
	embedding, err := s.embeddingClient.CreateEmbedding(ctx, query)

	if s.metrics != nil {
		s.metrics.RecordOpenAICall(ctx, observability.OperationEmbedding, err, time.Since(start))
	}

	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("embed query: %w", err)
	}

	result, err := collection.Query(ctx, vectorstore.QueryParams{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        RemedyResultCount,
	})
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("query remedies: %w", err)
	}

	excerpts := firstGroup(result.Documents)

	span.SetAttributes(attribute.Int("retrieval.documents", len(excerpts)))

	if s.metrics != nil {
		s.metrics.RecordRetrievedDocuments(ctx, len(excerpts))
	}

	s.logger.DebugContext(ctx, "remedies retrieved",
		"collection", collection.Name(),
		"count", len(excerpts),
	)

	return excerpts, nil
}

// firstGroup returns the match group for the single submitted query vector.
func firstGroup(documents [][]string) []string {
	if len(documents) == 0 || len(documents[0]) == 0 {
		return []string{}
	}

	return documents[0]
}
