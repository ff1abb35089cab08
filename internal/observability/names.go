// Package observability provides OpenTelemetry metrics and tracing for the remedy chat service.
package observability

// Metric names (Prometheus / OpenTelemetry).
const (
	MetricNameRequestCount        = "zenji_http_requests_total"
	MetricNameRequestDuration     = "zenji_http_request_duration_seconds"
	MetricNameChatTurns           = "zenji_chat_turns_total"
	MetricNameChatTurnDuration    = "zenji_chat_turn_duration_seconds"
	MetricNameRetrievedDocuments  = "zenji_retrieved_documents"
	MetricNameOpenAICalls         = "zenji_openai_calls_total"
	MetricNameOpenAICallDuration  = "zenji_openai_call_duration_seconds"
	MetricNameCacheHits           = "zenji_cache_hits_total"
	MetricNameCacheMisses         = "zenji_cache_misses_total"
	MetricNameRequestBodyTooLarge = "zenji_request_body_too_large_total"
	MetricNameRateLimited         = "zenji_rate_limited_total"
)

// Attribute keys.
const (
	AttrOutcome   = "outcome"
	AttrOperation = "operation"
	AttrCache     = "cache"
)

// Chat turn outcomes.
const (
	OutcomeSuccess          = "success"
	OutcomeRetrievalFailed  = "retrieval_failed"
	OutcomeCompletionFailed = "completion_failed"
	OutcomeInvalidInput     = "invalid_input"
)

// OpenAI operations.
const (
	OperationEmbedding = "embedding"
	OperationResponse  = "response"
)

// Cache names.
const (
	CacheCollection = "collection"
)

// NormalizeOutcome returns outcome if it is a known chat turn outcome, otherwise "unknown".
func NormalizeOutcome(outcome string) string {
	switch outcome {
	case OutcomeSuccess, OutcomeRetrievalFailed, OutcomeCompletionFailed, OutcomeInvalidInput:
		return outcome
	default:
		return "unknown"
	}
}

// NormalizeOperation returns op if it is a known OpenAI operation, otherwise "other".
func NormalizeOperation(op string) string {
	switch op {
	case OperationEmbedding, OperationResponse:
		return op
	default:
		return "other"
	}
}

// NormalizeCacheName returns name if it is a known cache, otherwise "other".
func NormalizeCacheName(name string) string {
	if name == CacheCollection {
		return name
	}

	return "other"
}

// StatusClass maps an HTTP status code to its class label ("2xx", "4xx", ...).
func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
