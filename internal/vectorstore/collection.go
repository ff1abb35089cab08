package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kamtechie/zenji/internal/models"
)

var (
	// ErrInvalidNResults is returned when a query asks for fewer than one result.
	ErrInvalidNResults = errors.New("vectorstore: nResults must be positive")
	// ErrNoEmbeddingFunction is returned by QueryTexts on a collection opened without one.
	ErrNoEmbeddingFunction = errors.New("vectorstore: collection has no embedding function")
)

var tracer = otel.Tracer("github.com/kamtechie/zenji/internal/vectorstore")

// QueryParams is a nearest-neighbor request: NResults matches for each query vector.
type QueryParams struct {
	QueryEmbeddings [][]float32
	NResults        int
}

// CollectionHandle is an opened collection.
type CollectionHandle interface {
	Name() string
	Query(ctx context.Context, params QueryParams) (models.QueryResult, error)
	QueryTexts(ctx context.Context, texts []string, nResults int) (models.QueryResult, error)
}

// Collection is a handle on one named collection, bound to its embedding function.
type Collection struct {
	db          DB
	meta        models.VectorCollection
	embeddingFn EmbeddingFunction
}

var _ CollectionHandle = (*Collection)(nil)

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.meta.Name
}

// Metadata returns the collection row.
func (c *Collection) Metadata() models.VectorCollection {
	return c.meta
}

// Query returns, for each query vector, up to NResults documents ordered by cosine distance,
// nearest first. The result has exactly one group per query vector.
func (c *Collection) Query(ctx context.Context, params QueryParams) (models.QueryResult, error) {
	if params.NResults <= 0 {
		return models.QueryResult{}, ErrInvalidNResults
	}

	ctx, span := tracer.Start(ctx, "vectorstore.query")
	defer span.End()

	span.SetAttributes(
		attribute.String("vectorstore.collection", c.meta.Name),
		attribute.Int("vectorstore.query_vectors", len(params.QueryEmbeddings)),
		attribute.Int("vectorstore.n_results", params.NResults),
	)

	documents := make([][]string, 0, len(params.QueryEmbeddings))

	for _, embedding := range params.QueryEmbeddings {
		group, err := c.nearest(ctx, embedding, params.NResults)
		if err != nil {
			span.RecordError(err)

			return models.QueryResult{}, err
		}

		documents = append(documents, group)
	}

	return models.QueryResult{Documents: documents}, nil
}

// QueryTexts embeds texts with the collection's embedding function and queries with the result.
func (c *Collection) QueryTexts(ctx context.Context, texts []string, nResults int) (models.QueryResult, error) {
	if c.embeddingFn == nil {
		return models.QueryResult{}, ErrNoEmbeddingFunction
	}

	embeddings, err := c.embeddingFn.CreateEmbeddings(ctx, texts)
	if err != nil {
		return models.QueryResult{}, fmt.Errorf("embed query texts: %w", err)
	}

	return c.Query(ctx, QueryParams{QueryEmbeddings: embeddings, NResults: nResults})
}

func (c *Collection) nearest(ctx context.Context, embedding []float32, limit int) ([]string, error) {
	rows, err := c.db.Query(ctx, `
		SELECT document
		FROM vector_documents
		WHERE collection_id = $1 AND embedding IS NOT NULL
		ORDER BY embedding <=> $2
		LIMIT $3`,
		c.meta.ID, pgvector.NewHalfVector(embedding), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query collection %q: %w", c.meta.Name, err)
	}
	defer rows.Close()

	group := make([]string, 0, limit)

	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}

		group = append(group, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return group, nil
}
