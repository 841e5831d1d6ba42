package datasets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/w-h-a/insight/cache"
	"github.com/w-h-a/insight/reasoner"
	"github.com/w-h-a/insight/store"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
)

const (
	maxIDLength       = 256
	maxQuestionLength = 8192
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

// Service orchestrates ingestion, analysis, insight synthesis and query
// answering. It is memory-first throughout: nothing already stored is ever
// recomputed, and all model calls go through the cache.
type Service struct {
	store    store.Store
	cache    *cache.Cache
	reasoner *reasoner.Reasoner
}

// Ingest registers a file version for a dataset. The schema text arrives
// pre-compressed from the caller. A file hash already ingested for the
// dataset resolves to its existing version without a new record.
func (s *Service) Ingest(ctx context.Context, datasetID string, fileHash string, schemaText string) (*IngestResult, error) {
	if err := validateID(datasetID, "dataset id"); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(fileHash)) == 0 {
		return nil, fmt.Errorf("%w: file hash is required", ErrInvalidRequest)
	}
	if len(strings.TrimSpace(schemaText)) == 0 {
		return nil, fmt.Errorf("%w: schema text is required", ErrInvalidRequest)
	}

	versions, err := s.store.ListVersions(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	for _, v := range versions {
		schema, err := s.store.GetSchema(ctx, datasetID, v)
		if err != nil {
			return nil, err
		}
		if schema != nil && schema.FileHash == fileHash {
			return &IngestResult{
				DatasetID: datasetID,
				Version:   v,
				FileHash:  fileHash,
				Cached:    true,
			}, nil
		}
	}

	version := nextVersion(versions)

	if err := s.store.SaveSchema(ctx, store.Schema{
		DatasetID:  datasetID,
		Version:    version,
		FileHash:   fileHash,
		TextHash:   cache.Fingerprint(schemaText),
		SchemaText: schemaText,
	}); err != nil {
		return nil, err
	}

	return &IngestResult{
		DatasetID: datasetID,
		Version:   version,
		FileHash:  fileHash,
	}, nil
}

// Analyze stores the analysis text for a version and synthesizes insights
// for it when none exist yet. Synthesis runs through the cache so concurrent
// identical requests collapse into one model call.
func (s *Service) Analyze(ctx context.Context, datasetID string, version string, analysisText string) (*AnalyzeResult, error) {
	if err := validateID(datasetID, "dataset id"); err != nil {
		return nil, err
	}

	version, err := s.resolveVersion(ctx, datasetID, version)
	if err != nil {
		return nil, err
	}

	schema, err := s.store.GetSchema(ctx, datasetID, version)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, fmt.Errorf("%w: no schema for dataset %s version %s", ErrNotFound, datasetID, version)
	}

	analysis, err := s.store.GetAnalysis(ctx, datasetID, version)
	if err != nil {
		return nil, err
	}

	analysisCached := analysis != nil

	if !analysisCached {
		if len(strings.TrimSpace(analysisText)) == 0 {
			return nil, fmt.Errorf("%w: analysis text is required for an unanalyzed version", ErrInvalidRequest)
		}

		if err := s.store.SaveAnalysis(ctx, store.Analysis{
			DatasetID:    datasetID,
			Version:      version,
			TextHash:     cache.Fingerprint(analysisText),
			AnalysisText: analysisText,
		}); err != nil {
			return nil, err
		}

		analysis, err = s.store.GetAnalysis(ctx, datasetID, version)
		if err != nil {
			return nil, err
		}
		if analysis == nil {
			return nil, errors.New("analysis missing after save")
		}
	}

	existing, err := s.store.ListInsights(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	insightsCached := false
	for _, insight := range existing {
		if insight.Version == version {
			insightsCached = true
			break
		}
	}

	result := &AnalyzeResult{
		DatasetID:      datasetID,
		Version:        version,
		SchemaCached:   true,
		AnalysisCached: analysisCached,
		InsightsCached: insightsCached,
	}

	if insightsCached {
		return result, nil
	}

	created, err := s.synthesize(ctx, datasetID, version, schema.SchemaText, analysis.AnalysisText, existing)
	if err != nil {
		return nil, err
	}

	result.InsightsCreated = created

	return result, nil
}

func (s *Service) synthesize(ctx context.Context, datasetID string, version string, schemaText string, analysisText string, existing []store.Insight) (int, error) {
	summaries := make([]string, 0, len(existing))
	priors := make([]reasoner.ExistingInsight, 0, len(existing))
	for _, insight := range existing {
		summaries = append(summaries, insight.Summary)
		priors = append(priors, reasoner.ExistingInsight{
			Summary:      insight.Summary,
			SemanticHash: insight.SemanticHash,
			Embedding:    insight.Embedding,
		})
	}

	key := cache.Fingerprint(
		datasetID,
		version,
		cache.Fingerprint(schemaText),
		cache.Fingerprint(analysisText),
		cache.Fingerprint(strings.Join(summaries, "\n")),
	)

	value, cached, err := s.cache.GetOrCompute(ctx, store.KindInsightSet, key, func(ctx context.Context) (string, error) {
		accepted, err := s.reasoner.SynthesizeInsights(ctx, reasoner.SynthesizeRequest{
			DatasetID:    datasetID,
			Version:      version,
			SchemaText:   schemaText,
			AnalysisText: analysisText,
			Existing:     priors,
		})
		if err != nil {
			return "", err
		}

		ids := make([]string, 0, len(accepted))
		for _, insight := range accepted {
			if err := s.store.SaveInsight(ctx, store.Insight{
				ID:           insight.ID,
				DatasetID:    datasetID,
				Version:      version,
				Summary:      insight.Summary(),
				Confidence:   insight.Confidence,
				SemanticHash: insight.SemanticHash,
				Embedding:    insight.Embedding,
			}); err != nil {
				return "", err
			}
			ids = append(ids, insight.ID)
		}

		encoded, err := json.Marshal(ids)
		if err != nil {
			return "", err
		}

		return string(encoded), nil
	})
	if err != nil {
		return 0, err
	}
	if cached {
		return 0, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(value), &ids); err != nil {
		return 0, err
	}

	return len(ids), nil
}

// Query answers a natural-language question against a version's stored
// context. Repeat questions are served from the cache without a model call.
func (s *Service) Query(ctx context.Context, datasetID string, version string, question string) (*QueryResult, error) {
	if err := validateID(datasetID, "dataset id"); err != nil {
		return nil, err
	}

	question = strings.TrimSpace(question)
	if len(question) == 0 {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidRequest)
	}
	if len(question) > maxQuestionLength {
		return nil, fmt.Errorf("%w: question exceeds %d characters", ErrInvalidRequest, maxQuestionLength)
	}

	version, err := s.resolveVersion(ctx, datasetID, version)
	if err != nil {
		return nil, err
	}

	schema, err := s.store.GetSchema(ctx, datasetID, version)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, fmt.Errorf("%w: no schema for dataset %s version %s", ErrNotFound, datasetID, version)
	}

	// analysis is optional for some questions
	analysis, err := s.store.GetAnalysis(ctx, datasetID, version)
	if err != nil {
		return nil, err
	}

	analysisText := ""
	if analysis != nil {
		analysisText = analysis.AnalysisText
	}

	insights, err := s.store.ListInsights(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	summaries := []string{}
	for _, insight := range insights {
		if insight.Version == version {
			summaries = append(summaries, insight.Summary)
		}
	}

	queryHash := cache.Fingerprint(datasetID, version, reasoner.Normalize(question))

	answer, cached, err := s.cache.GetOrCompute(ctx, store.KindQuery, queryHash, func(ctx context.Context) (string, error) {
		answer, err := s.reasoner.AnswerQuery(ctx, reasoner.QueryRequest{
			DatasetID:        datasetID,
			Version:          version,
			Question:         question,
			SchemaText:       schema.SchemaText,
			AnalysisText:     analysisText,
			InsightSummaries: summaries,
		})
		if err != nil {
			return "", err
		}

		if err := s.store.SaveQuery(ctx, store.Query{
			DatasetID: datasetID,
			Version:   version,
			QueryHash: queryHash,
			Answer:    answer,
		}); err != nil {
			return "", err
		}

		return answer, nil
	})
	if err != nil {
		return nil, err
	}

	return &QueryResult{
		DatasetID: datasetID,
		Version:   version,
		QueryHash: queryHash,
		Cached:    cached,
		Answer:    answer,
	}, nil
}

// Versions lists the ingested versions of a dataset.
func (s *Service) Versions(ctx context.Context, datasetID string) ([]string, error) {
	if err := validateID(datasetID, "dataset id"); err != nil {
		return nil, err
	}

	return s.store.ListVersions(ctx, datasetID)
}

// Insights lists stored insights for a dataset, optionally scoped to one
// version.
func (s *Service) Insights(ctx context.Context, datasetID string, version string) ([]store.Insight, error) {
	if err := validateID(datasetID, "dataset id"); err != nil {
		return nil, err
	}

	insights, err := s.store.ListInsights(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	if len(version) == 0 {
		return insights, nil
	}

	scoped := []store.Insight{}
	for _, insight := range insights {
		if insight.Version == version {
			scoped = append(scoped, insight)
		}
	}

	return scoped, nil
}

func (s *Service) resolveVersion(ctx context.Context, datasetID string, version string) (string, error) {
	version = strings.TrimSpace(version)
	if len(version) > maxIDLength {
		return "", fmt.Errorf("%w: version is too long", ErrInvalidRequest)
	}
	if len(version) > 0 {
		return version, nil
	}

	versions, err := s.store.ListVersions(ctx, datasetID)
	if err != nil {
		return "", err
	}

	latest := latestVersion(versions)
	if len(latest) == 0 {
		return "", fmt.Errorf("%w: no ingested versions for dataset %s", ErrNotFound, datasetID)
	}

	return latest, nil
}

func validateID(id string, label string) error {
	if len(strings.TrimSpace(id)) == 0 {
		return fmt.Errorf("%w: %s is required", ErrInvalidRequest, label)
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("%w: %s is too long", ErrInvalidRequest, label)
	}
	return nil
}

func New(s store.Store, c *cache.Cache, r *reasoner.Reasoner) *Service {
	return &Service{
		store:    s,
		cache:    c,
		reasoner: r,
	}
}
