package insight

import (
	"context"

	"github.com/w-h-a/insight/cache"
	"github.com/w-h-a/insight/internal/service/datasets"
	"github.com/w-h-a/insight/reasoner"
	"github.com/w-h-a/insight/store"
)

type IngestResult struct {
	DatasetID string
	Version   string
	FileHash  string
	Cached    bool
}

type AnalyzeResult struct {
	DatasetID       string
	Version         string
	SchemaCached    bool
	AnalysisCached  bool
	InsightsCached  bool
	InsightsCreated int
}

type QueryResult struct {
	DatasetID string
	Version   string
	QueryHash string
	Cached    bool
	Answer    string
}

// Pipeline is the embedding-friendly entry point: a record store plus a
// reasoner, with every operation served memory-first.
type Pipeline struct {
	datasets *datasets.Service
}

func (p *Pipeline) Ingest(ctx context.Context, datasetID string, fileHash string, schemaText string) (*IngestResult, error) {
	result, err := p.datasets.Ingest(ctx, datasetID, fileHash, schemaText)
	if err != nil {
		return nil, err
	}
	return &IngestResult{
		DatasetID: result.DatasetID,
		Version:   result.Version,
		FileHash:  result.FileHash,
		Cached:    result.Cached,
	}, nil
}

func (p *Pipeline) Analyze(ctx context.Context, datasetID string, version string, analysisText string) (*AnalyzeResult, error) {
	result, err := p.datasets.Analyze(ctx, datasetID, version, analysisText)
	if err != nil {
		return nil, err
	}
	return &AnalyzeResult{
		DatasetID:       result.DatasetID,
		Version:         result.Version,
		SchemaCached:    result.SchemaCached,
		AnalysisCached:  result.AnalysisCached,
		InsightsCached:  result.InsightsCached,
		InsightsCreated: result.InsightsCreated,
	}, nil
}

func (p *Pipeline) Query(ctx context.Context, datasetID string, version string, question string) (*QueryResult, error) {
	result, err := p.datasets.Query(ctx, datasetID, version, question)
	if err != nil {
		return nil, err
	}
	return &QueryResult{
		DatasetID: result.DatasetID,
		Version:   result.Version,
		QueryHash: result.QueryHash,
		Cached:    result.Cached,
		Answer:    result.Answer,
	}, nil
}

func (p *Pipeline) Versions(ctx context.Context, datasetID string) ([]string, error) {
	return p.datasets.Versions(ctx, datasetID)
}

func (p *Pipeline) Insights(ctx context.Context, datasetID string, version string) ([]store.Insight, error) {
	return p.datasets.Insights(ctx, datasetID, version)
}

func New(records store.Store, r *reasoner.Reasoner) *Pipeline {
	return &Pipeline{
		datasets: datasets.New(records, cache.New(records), r),
	}
}
