package models

import (
	"time"

	"github.com/google/uuid"
)

// VectorCollection is a named group of documents and their embeddings in the vector store.
type VectorCollection struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// QueryResult holds one group of matched documents per query vector, nearest first.
// A nil Documents slice means the store reported no documents at all.
type QueryResult struct {
	Documents [][]string `json:"documents"`
}
