// Package app wires configuration, storage, OpenAI and services into runnable components for the
// HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kamtechie/zenji/internal/config"
	"github.com/kamtechie/zenji/internal/observability"
	"github.com/kamtechie/zenji/internal/openai"
	"github.com/kamtechie/zenji/internal/service"
	"github.com/kamtechie/zenji/internal/vectorstore"
	"github.com/kamtechie/zenji/pkg/database"
)

// Components are the conversation pipeline's long-lived dependencies.
type Components struct {
	Pool         *pgxpool.Pool
	OpenAI       *openai.Client
	Collections  *vectorstore.Accessor
	Retrieval    *service.RetrievalService
	Conversation *service.ConversationService
}

// ComponentsParams carries optional instrumentation. Nil metrics disable recording.
type ComponentsParams struct {
	Metrics      observability.ChatMetrics
	CacheMetrics observability.CacheMetrics
	Logger       *slog.Logger
}

// NewComponents connects to the vector store, provisions the schema when configured to, and
// builds the retrieval and conversation services. Call Close when done.
func NewComponents(ctx context.Context, cfg *config.Config, p ComponentsParams) (*Components, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	openaiOpts := []openai.ClientOption{
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
		openai.WithChatModel(cfg.ChatModel),
		openai.WithDimensions(cfg.EmbeddingDimensions),
	}
	if cfg.OpenAIBaseURL != "" {
		openaiOpts = append(openaiOpts, openai.WithBaseURL(cfg.OpenAIBaseURL))
	}

	client, err := openai.NewClient(cfg.OpenAIAPIKey, openaiOpts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	if cfg.SchemaAutoMigrate {
		if err := database.EnsureVectorExtension(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	store := vectorstore.NewStore(pool)

	if cfg.SchemaAutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()

			return nil, err
		}
	}

	accessor, err := vectorstore.NewAccessor(vectorstore.AccessorParams{
		Opener:            store,
		CollectionName:    cfg.VectorCollectionName,
		EmbeddingFunction: client,
		CacheMetrics:      p.CacheMetrics,
		Logger:            logger,
	})
	if err != nil {
		pool.Close()

		return nil, fmt.Errorf("create collection accessor: %w", err)
	}

	retrieval := service.NewRetrievalService(service.RetrievalServiceParams{
		Collections:     accessor,
		EmbeddingClient: client,
		Metrics:         p.Metrics,
		Logger:          logger,
	})

	conversation := service.NewConversationService(service.ConversationServiceParams{
		Retriever: retrieval,
		Responses: client,
		Metrics:   p.Metrics,
		Logger:    logger,
	})

	logger.Info("conversation pipeline ready",
		"embedding_model", client.EmbeddingModel(),
		"chat_model", client.ChatModel(),
		"collection", accessor.CollectionName(),
	)

	return &Components{
		Pool:         pool,
		OpenAI:       client,
		Collections:  accessor,
		Retrieval:    retrieval,
		Conversation: conversation,
	}, nil
}

// Close releases the database pool.
func (c *Components) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
