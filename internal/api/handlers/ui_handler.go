package handlers

import (
	_ "embed"
	"log/slog"
	"net/http"
)

//go:embed static/index.html
var indexHTML []byte

// UIHandler serves the single-page chat client.
type UIHandler struct{}

// NewUIHandler creates a UI handler.
func NewUIHandler() *UIHandler {
	return &UIHandler{}
}

// Index handles GET /.
func (h *UIHandler) Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(indexHTML); err != nil {
		slog.Error("Failed to write chat page", "error", err)
	}
}
