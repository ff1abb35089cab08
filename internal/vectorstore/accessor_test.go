package vectorstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamtechie/zenji/internal/models"
)

type mockOpener struct {
	mu    sync.Mutex
	calls []string
	fn    func(ctx context.Context, name string) (*Collection, error)
}

func (m *mockOpener) GetOrCreateCollection(ctx context.Context, name string, _ EmbeddingFunction) (*Collection, error) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()

	if m.fn != nil {
		return m.fn(ctx, name)
	}

	return &Collection{meta: models.VectorCollection{Name: name}}, nil
}

func (m *mockOpener) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.calls)
}

type mockCacheMetrics struct {
	mu     sync.Mutex
	hits   int
	misses int
}

func (m *mockCacheMetrics) RecordHit(_ context.Context, _ string) {
	m.mu.Lock()
	m.hits++
	m.mu.Unlock()
}

func (m *mockCacheMetrics) RecordMiss(_ context.Context, _ string) {
	m.mu.Lock()
	m.misses++
	m.mu.Unlock()
}

func TestNewAccessor_RequiresName(t *testing.T) {
	_, err := NewAccessor(AccessorParams{Opener: &mockOpener{}, CollectionName: "  "})
	assert.ErrorIs(t, err, ErrEmptyCollectionName)
}

func TestAccessor_GetCollection(t *testing.T) {
	t.Run("opens configured collection once", func(t *testing.T) {
		opener := &mockOpener{}
		metrics := &mockCacheMetrics{}

		acc, err := NewAccessor(AccessorParams{
			Opener:         opener,
			CollectionName: "remedies",
			CacheMetrics:   metrics,
		})
		require.NoError(t, err)

		first, err := acc.GetCollection(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "remedies", first.Name())

		second, err := acc.GetCollection(context.Background())
		require.NoError(t, err)
		assert.Same(t, first, second)

		assert.Equal(t, []string{"remedies"}, opener.calls)
		assert.Equal(t, 1, metrics.hits)
		assert.Equal(t, 1, metrics.misses)
	})

	t.Run("failure is wrapped and retried", func(t *testing.T) {
		storeErr := errors.New("connection refused")
		fail := true
		opener := &mockOpener{}
		opener.fn = func(_ context.Context, name string) (*Collection, error) {
			if fail {
				return nil, storeErr
			}

			return &Collection{meta: models.VectorCollection{Name: name}}, nil
		}

		acc, err := NewAccessor(AccessorParams{Opener: opener, CollectionName: "remedies"})
		require.NoError(t, err)

		_, err = acc.GetCollection(context.Background())
		require.ErrorIs(t, err, storeErr)
		assert.Contains(t, err.Error(), `"remedies"`)

		fail = false

		col, err := acc.GetCollection(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "remedies", col.Name())
		assert.Equal(t, 2, opener.callCount())
	})

	t.Run("invalidate reopens", func(t *testing.T) {
		opener := &mockOpener{}

		acc, err := NewAccessor(AccessorParams{Opener: opener, CollectionName: "remedies"})
		require.NoError(t, err)

		_, err = acc.GetCollection(context.Background())
		require.NoError(t, err)

		acc.Invalidate()

		_, err = acc.GetCollection(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, opener.callCount())
	})

	t.Run("concurrent first calls open once", func(t *testing.T) {
		release := make(chan struct{})
		opener := &mockOpener{}
		opener.fn = func(_ context.Context, name string) (*Collection, error) {
			<-release

			return &Collection{meta: models.VectorCollection{Name: name}}, nil
		}

		metrics := &mockCacheMetrics{}

		acc, err := NewAccessor(AccessorParams{Opener: opener, CollectionName: "remedies", CacheMetrics: metrics})
		require.NoError(t, err)

		var wg sync.WaitGroup

		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, errs[i] = acc.GetCollection(context.Background())
			}()
		}

		close(release)
		wg.Wait()

		for _, err := range errs {
			assert.NoError(t, err)
		}

		assert.Equal(t, 1, opener.callCount())

		metrics.mu.Lock()
		defer metrics.mu.Unlock()

		assert.Equal(t, 1, metrics.misses)
		assert.Equal(t, 7, metrics.hits)
	})

	t.Run("cancelled caller does not fail concurrent callers", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		opener := &mockOpener{}
		opener.fn = func(ctx context.Context, name string) (*Collection, error) {
			close(started)
			<-release

			if err := ctx.Err(); err != nil {
				return nil, err
			}

			return &Collection{meta: models.VectorCollection{Name: name}}, nil
		}

		acc, err := NewAccessor(AccessorParams{Opener: opener, CollectionName: "remedies"})
		require.NoError(t, err)

		firstCtx, cancel := context.WithCancel(context.Background())
		firstErr := make(chan error, 1)

		go func() {
			_, getErr := acc.GetCollection(firstCtx)
			firstErr <- getErr
		}()

		<-started

		secondErr := make(chan error, 1)

		go func() {
			_, getErr := acc.GetCollection(context.Background())
			secondErr <- getErr
		}()

		cancel()
		require.ErrorIs(t, <-firstErr, context.Canceled)

		close(release)
		require.NoError(t, <-secondErr)

		col, err := acc.GetCollection(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "remedies", col.Name())
		assert.Equal(t, 1, opener.callCount())
	})
}

func TestCollection_QueryValidation(t *testing.T) {
	col := &Collection{meta: models.VectorCollection{Name: "remedies"}}

	_, err := col.Query(context.Background(), QueryParams{QueryEmbeddings: [][]float32{{0.1}}, NResults: 0})
	assert.ErrorIs(t, err, ErrInvalidNResults)

	_, err = col.QueryTexts(context.Background(), []string{"sleep"}, 5)
	assert.ErrorIs(t, err, ErrNoEmbeddingFunction)
}

func TestCollection_QueryNoVectors(t *testing.T) {
	col := &Collection{meta: models.VectorCollection{Name: "remedies"}}

	res, err := col.Query(context.Background(), QueryParams{NResults: 5})
	require.NoError(t, err)
	assert.NotNil(t, res.Documents)
	assert.Empty(t, res.Documents)
}

func TestStore_GetOrCreateCollection_EmptyName(t *testing.T) {
	store := NewStore(nil)

	_, err := store.GetOrCreateCollection(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrEmptyCollectionName)
}
