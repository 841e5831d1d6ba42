package store

import "time"

// Schema holds the compressed schema JSON an external collaborator produced
// for one ingested file version. The text is opaque to this system. FileHash
// identifies the ingested file, TextHash the schema text itself.
type Schema struct {
	DatasetID  string
	Version    string
	FileHash   string
	TextHash   string
	SchemaText string
}

// Analysis holds the compressed analysis-result JSON for a dataset version.
type Analysis struct {
	DatasetID    string
	Version      string
	TextHash     string
	AnalysisText string
	CreatedAt    time.Time
}

// Insight is a synthesized, deduplicated finding scoped to a dataset version.
// Records are never mutated after creation.
type Insight struct {
	ID           string
	DatasetID    string
	Version      string
	Summary      string
	Confidence   float64
	SemanticHash string
	Embedding    []float32
	CreatedAt    time.Time
}

// Query is a cached natural-language answer keyed by the question fingerprint.
type Query struct {
	DatasetID string
	Version   string
	QueryHash string
	Answer    string
	CreatedAt time.Time
}
