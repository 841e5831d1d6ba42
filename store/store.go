package store

import "context"

type Kind string

const (
	KindSchema     Kind = "schema"
	KindAnalysis   Kind = "analysis"
	KindInsightSet Kind = "insight-set"
	KindQuery      Kind = "query"
)

// Store is the authoritative record store behind the cache. Save operations
// are write-once: a key that already holds a value is never overwritten, and
// SaveInsight is a no-op when the (dataset, semantic hash) pair exists.
type Store interface {
	SaveSchema(ctx context.Context, schema Schema) error
	GetSchema(ctx context.Context, datasetID string, version string) (*Schema, error)
	ListVersions(ctx context.Context, datasetID string) ([]string, error)
	SaveAnalysis(ctx context.Context, analysis Analysis) error
	GetAnalysis(ctx context.Context, datasetID string, version string) (*Analysis, error)
	SaveInsight(ctx context.Context, insight Insight) error
	InsightExists(ctx context.Context, datasetID string, semanticHash string) (bool, error)
	ListInsights(ctx context.Context, datasetID string) ([]Insight, error)
	SaveQuery(ctx context.Context, query Query) error
	GetQuery(ctx context.Context, datasetID string, queryHash string) (*Query, error)
	GetEntry(ctx context.Context, kind Kind, key string) (string, bool, error)
	PutEntry(ctx context.Context, kind Kind, key string, value string) error
}
