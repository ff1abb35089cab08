package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kamtechie/zenji/internal/datatypes"
	"github.com/kamtechie/zenji/internal/models"
)

var (
	spansOnce sync.Once
	spans     *tracetest.SpanRecorder
)

// recordSpans routes the package tracer to an in-memory recorder shared by all tests.
func recordSpans() *tracetest.SpanRecorder {
	spansOnce.Do(func() {
		spans = tracetest.NewSpanRecorder()
		otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)))
	})

	return spans
}

// lastEndedSpan returns the most recently ended span with the given name.
func lastEndedSpan(t *testing.T, rec *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()

	ended := rec.Ended()
	for i := len(ended) - 1; i >= 0; i-- {
		if ended[i].Name() == name {
			return ended[i]
		}
	}

	t.Fatalf("no ended span named %q", name)

	return nil
}

type recordedRequest struct {
	path string
	body map[string]any
}

// recorder collects the requests a test server received.
type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recorder) add(req recordedRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, req)
}

func (r *recorder) at(i int) recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.requests[i]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.requests)
}

// newTestServer serves a canned JSON body and records every request it receives.
func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()

	rec := &recorder{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var decoded map[string]any
		assert.NoError(t, json.Unmarshal(raw, &decoded))

		rec.add(recordedRequest{path: r.URL.Path, body: decoded})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, rec
}

func newTestClient(t *testing.T, baseURL string, opts ...ClientOption) *Client {
	t.Helper()

	opts = append([]ClientOption{WithBaseURL(baseURL)}, opts...)
	client, err := NewClient("test-api-key", opts...)
	require.NoError(t, err)

	return client
}

func TestNewClient(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		client, err := NewClient("")
		assert.Nil(t, client)
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("defaults", func(t *testing.T) {
		client, err := NewClient("key")
		require.NoError(t, err)
		assert.Equal(t, "text-embedding-3-large", client.EmbeddingModel())
		assert.Equal(t, "gpt-4.1-mini", client.ChatModel())
	})

	t.Run("options override models, empty keeps default", func(t *testing.T) {
		client, err := NewClient("key", WithEmbeddingModel("custom-embedding-model"), WithChatModel(""))
		require.NoError(t, err)
		assert.Equal(t, "custom-embedding-model", client.EmbeddingModel())
		assert.Equal(t, "gpt-4.1-mini", client.ChatModel())
	})
}

const embeddingResponse = `{
	"object": "list",
	"model": "text-embedding-3-large",
	"data": [{"object": "embedding", "index": 0, "embedding": [0.1, 0.2, 0.3]}],
	"usage": {"prompt_tokens": 2, "total_tokens": 2}
}`

func TestClient_CreateEmbedding(t *testing.T) {
	t.Run("sends model and single string input", func(t *testing.T) {
		srv, rec := newTestServer(t, http.StatusOK, embeddingResponse)
		client := newTestClient(t, srv.URL)

		vec, err := client.CreateEmbedding(context.Background(), "test text")
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3}, vec, 1e-6)

		require.Equal(t, 1, rec.count())
		assert.Equal(t, "/embeddings", rec.at(0).path)
		assert.Equal(t, "text-embedding-3-large", rec.at(0).body["model"])
		assert.Equal(t, "test text", rec.at(0).body["input"])
	})

	t.Run("empty text is still sent", func(t *testing.T) {
		srv, rec := newTestServer(t, http.StatusOK, embeddingResponse)
		client := newTestClient(t, srv.URL)

		_, err := client.CreateEmbedding(context.Background(), "")
		require.NoError(t, err)
		require.Equal(t, 1, rec.count())
		assert.Equal(t, "", rec.at(0).body["input"])
	})

	t.Run("dimensions are requested when set", func(t *testing.T) {
		srv, rec := newTestServer(t, http.StatusOK, embeddingResponse)
		client := newTestClient(t, srv.URL, WithDimensions(256))

		_, err := client.CreateEmbedding(context.Background(), "x")
		require.NoError(t, err)
		assert.InDelta(t, 256, rec.at(0).body["dimensions"], 0)
	})

	t.Run("empty data", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, `{"object":"list","data":[]}`)
		client := newTestClient(t, srv.URL)

		_, err := client.CreateEmbedding(context.Background(), "x")
		assert.ErrorIs(t, err, ErrNoEmbeddingInResponse)
	})

	t.Run("api error propagates without retry", func(t *testing.T) {
		srv, rec := newTestServer(t, http.StatusTooManyRequests,
			`{"error":{"message":"quota exceeded","type":"insufficient_quota","code":"insufficient_quota"}}`)
		client := newTestClient(t, srv.URL)

		_, err := client.CreateEmbedding(context.Background(), "x")
		require.Error(t, err)

		var apiErr *openaisdk.Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
		assert.Equal(t, 1, rec.count())
	})
}

func TestClient_CreateEmbeddings(t *testing.T) {
	t.Run("empty input makes no call", func(t *testing.T) {
		srv, rec := newTestServer(t, http.StatusOK, embeddingResponse)
		client := newTestClient(t, srv.URL)

		out, err := client.CreateEmbeddings(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Equal(t, 0, rec.count())
	})

	t.Run("batch keeps input order", func(t *testing.T) {
		srv, rec := newTestServer(t, http.StatusOK, `{
			"object": "list",
			"data": [
				{"object": "embedding", "index": 1, "embedding": [0.4, 0.5, 0.6]},
				{"object": "embedding", "index": 0, "embedding": [0.1, 0.2, 0.3]},
				{"object": "embedding", "index": 2, "embedding": [0.7, 0.8, 0.9]}
			]
		}`)
		client := newTestClient(t, srv.URL, WithEmbeddingModel("custom-embedding-model"))

		out, err := client.CreateEmbeddings(context.Background(), []string{"text1", "text2", "text3"})
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3}, out[0], 1e-6)
		assert.InDeltaSlice(t, []float32{0.4, 0.5, 0.6}, out[1], 1e-6)
		assert.InDeltaSlice(t, []float32{0.7, 0.8, 0.9}, out[2], 1e-6)

		assert.Equal(t, "custom-embedding-model", rec.at(0).body["model"])
		assert.Equal(t, []any{"text1", "text2", "text3"}, rec.at(0).body["input"])
	})

	t.Run("count mismatch", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, embeddingResponse)
		client := newTestClient(t, srv.URL)

		_, err := client.CreateEmbeddings(context.Background(), []string{"a", "b"})
		assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
	})
}

func TestClient_CreateResponse(t *testing.T) {
	t.Run("sends model and typed input in order", func(t *testing.T) {
		srv, rec := newTestServer(t, http.StatusOK, `{
			"id": "resp_1",
			"object": "response",
			"created_at": 1700000000,
			"status": "completed",
			"model": "gpt-4.1-mini",
			"output": [{
				"type": "message",
				"id": "msg_1",
				"status": "completed",
				"role": "assistant",
				"content": [{"type": "output_text", "text": "I recommend trying Remedy 1.", "annotations": []}]
			}]
		}`)
		client := newTestClient(t, srv.URL)

		input := []models.ChatMessage{
			models.SystemMessage("be kind"),
			models.UserMessage("I feel anxious"),
			models.AssistantMessage("Tell me more"),
			models.SystemMessage("Relevant remedy excerpts:\n"),
		}

		resp, err := client.CreateResponse(context.Background(), input)
		require.NoError(t, err)
		require.Equal(t, 1, rec.count())

		req := rec.at(0)
		assert.Equal(t, "/responses", req.path)
		assert.Equal(t, "gpt-4.1-mini", req.body["model"])

		sent, ok := req.body["input"].([]any)
		require.True(t, ok)
		require.Len(t, sent, len(input))

		for i, msg := range input {
			item, ok := sent[i].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, msg.Role.String(), item["role"])
			assert.Equal(t, msg.Content, item["content"])
		}

		require.NotNil(t, resp.OutputText)
		assert.Equal(t, "I recommend trying Remedy 1.", *resp.OutputText)
		require.Len(t, resp.Output, 1)
		require.Len(t, resp.Output[0].Content, 1)
		assert.Equal(t, "I recommend trying Remedy 1.", resp.Output[0].Content[0].Text)
	})

	t.Run("no output maps to nil text", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, `{"id":"resp_2","object":"response","output":[]}`)
		client := newTestClient(t, srv.URL)

		resp, err := client.CreateResponse(context.Background(), []models.ChatMessage{models.UserMessage("hi")})
		require.NoError(t, err)
		assert.Nil(t, resp.OutputText)
		assert.Empty(t, resp.Output)
	})

	t.Run("invalid role is rejected before calling the api", func(t *testing.T) {
		srv, rec := newTestServer(t, http.StatusOK, `{}`)
		client := newTestClient(t, srv.URL)

		spanRec := recordSpans()

		_, err := client.CreateResponse(context.Background(), []models.ChatMessage{{Content: "no role"}})
		require.ErrorIs(t, err, datatypes.ErrInvalidRole)
		assert.Equal(t, 0, rec.count())

		span := lastEndedSpan(t, spanRec, "openai.responses.create")

		var names []string
		for _, ev := range span.Events() {
			names = append(names, ev.Name)
		}

		assert.Contains(t, names, "exception")
	})

	t.Run("api error propagates without retry", func(t *testing.T) {
		srv, rec := newTestServer(t, http.StatusUnauthorized,
			`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
		client := newTestClient(t, srv.URL)

		_, err := client.CreateResponse(context.Background(), []models.ChatMessage{models.UserMessage("hi")})
		require.Error(t, err)

		var apiErr *openaisdk.Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, 1, rec.count())
	})
}
