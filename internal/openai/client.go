// Package openai wraps the official OpenAI Go SDK for the two calls a conversation turn needs:
// embeddings for retrieval and the responses endpoint for the reply.
package openai

import (
	"errors"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrMissingAPIKey is returned by NewClient when no API key is configured.
var ErrMissingAPIKey = errors.New("openai: API key is required")

const (
	defaultEmbeddingModel = "text-embedding-3-large"
	defaultChatModel      = "gpt-4.1-mini"
)

// Client calls the OpenAI embeddings and responses APIs via the official SDK.
// SDK retries are disabled: a failed call fails the turn.
type Client struct {
	sdk            openaisdk.Client
	embeddingModel string
	chatModel      string
	dimensions     int
	baseURL        string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithEmbeddingModel sets the embedding model id. Empty keeps the default.
func WithEmbeddingModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.embeddingModel = model
		}
	}
}

// WithChatModel sets the responses model id. Empty keeps the default.
func WithChatModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.chatModel = model
		}
	}
}

// WithDimensions requests a reduced embedding size. Zero uses the model's native size.
func WithDimensions(dim int) ClientOption {
	return func(c *Client) {
		c.dimensions = dim
	}
}

// WithBaseURL points the SDK at a different API host (proxy, gateway, or test server).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// NewClient creates a client for the given API key.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := &Client{
		embeddingModel: defaultEmbeddingModel,
		chatModel:      defaultChatModel,
	}

	for _, opt := range opts {
		opt(client)
	}

	sdkOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if client.baseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(client.baseURL))
	}

	client.sdk = openaisdk.NewClient(sdkOpts...)

	return client, nil
}

// EmbeddingModel returns the configured embedding model id.
func (c *Client) EmbeddingModel() string {
	return c.embeddingModel
}

// ChatModel returns the configured responses model id.
func (c *Client) ChatModel() string {
	return c.chatModel
}
