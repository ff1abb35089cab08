// Package vectorstore is the vector store accessor: named collections of remedy documents in
// PostgreSQL/pgvector, queried by nearest-neighbor search on embeddings.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kamtechie/zenji/internal/models"
)

// ErrEmptyCollectionName is returned when a collection is requested without a name.
var ErrEmptyCollectionName = errors.New("vectorstore: collection name is required")

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EmbeddingFunction embeds documents for the collection's server-side embedding needs.
type EmbeddingFunction interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Store provisions and opens collections.
type Store struct {
	db DB
}

// NewStore creates a store on the given pool.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the vector extension and collection tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure vector store schema: %w", err)
		}
	}

	return nil
}

// GetOrCreateCollection returns the collection called name, creating it on first use.
// It is idempotent: concurrent or repeated calls with the same name resolve to the same row.
func (s *Store) GetOrCreateCollection(ctx context.Context, name string, embeddingFn EmbeddingFunction) (*Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyCollectionName
	}

	var meta models.VectorCollection

	err := s.db.QueryRow(ctx, `
		INSERT INTO vector_collections (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at`,
		uuid.Must(uuid.NewV7()), name,
	).Scan(&meta.ID, &meta.Name, &meta.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %q: %w", name, err)
	}

	return &Collection{db: s.db, meta: meta, embeddingFn: embeddingFn}, nil
}
