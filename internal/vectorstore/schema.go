package vectorstore

// schemaStatements provision the collection tables. Documents are written by external ingestion;
// this service only creates the structure and reads from it.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS vector_collections (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS vector_documents (
		id            UUID PRIMARY KEY,
		collection_id UUID NOT NULL REFERENCES vector_collections (id) ON DELETE CASCADE,
		document      TEXT NOT NULL,
		embedding     HALFVEC,
		metadata      JSONB,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS vector_documents_collection_id_idx ON vector_documents (collection_id)`,
}
