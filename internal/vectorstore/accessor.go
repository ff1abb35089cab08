package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kamtechie/zenji/internal/observability"
	"github.com/kamtechie/zenji/pkg/cache"
)

// collectionCacheSize bounds the opened-collection cache. One service reads one collection,
// so a handful of entries is plenty.
const collectionCacheSize = 16

// CollectionOpener opens or creates a named collection. *Store implements it.
type CollectionOpener interface {
	GetOrCreateCollection(ctx context.Context, name string, embeddingFn EmbeddingFunction) (*Collection, error)
}

// AccessorParams configures an Accessor.
type AccessorParams struct {
	Opener            CollectionOpener
	CollectionName    string
	EmbeddingFunction EmbeddingFunction
	CacheMetrics      observability.CacheMetrics
	Logger            *slog.Logger
}

// Accessor hands out the service's configured remedies collection. The handle is cached after
// the first successful open; failures are retried on the next call.
type Accessor struct {
	opener      CollectionOpener
	name        string
	embeddingFn EmbeddingFunction
	cache       *cache.LoaderCache[CollectionHandle]
	metrics     observability.CacheMetrics
	logger      *slog.Logger
}

// NewAccessor creates an Accessor for params.CollectionName.
func NewAccessor(params AccessorParams) (*Accessor, error) {
	name := strings.TrimSpace(params.CollectionName)
	if name == "" {
		return nil, ErrEmptyCollectionName
	}

	c, err := cache.NewLoaderCache[CollectionHandle](collectionCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create collection cache: %w", err)
	}

	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Accessor{
		opener:      params.Opener,
		name:        name,
		embeddingFn: params.EmbeddingFunction,
		cache:       c,
		metrics:     params.CacheMetrics,
		logger:      logger,
	}, nil
}

// CollectionName returns the configured collection name.
func (a *Accessor) CollectionName() string {
	return a.name
}

// GetCollection returns the configured collection, creating it in the store if it does not exist.
func (a *Accessor) GetCollection(ctx context.Context) (CollectionHandle, error) {
	handle, hit, err := a.cache.Get(ctx, a.name, func(ctx context.Context, name string) (CollectionHandle, error) {
		col, err := a.opener.GetOrCreateCollection(ctx, name, a.embeddingFn)
		if err != nil {
			return nil, err
		}

		a.logger.InfoContext(ctx, "collection opened", "collection", name)

		return col, nil
	})

	if err != nil {
		a.logger.ErrorContext(ctx, "failed to open collection", "collection", a.name, "error", err)

		return nil, fmt.Errorf("get collection %q: %w", a.name, err)
	}

	// One miss per store open; callers that joined an in-flight open count as hits.
	if a.metrics != nil {
		if hit {
			a.metrics.RecordHit(ctx, observability.CacheCollection)
		} else {
			a.metrics.RecordMiss(ctx, observability.CacheCollection)
		}
	}

	return handle, nil
}

// Invalidate drops the cached handle, forcing the next GetCollection to reopen it.
func (a *Accessor) Invalidate() {
	a.cache.Invalidate(a.name)
}
