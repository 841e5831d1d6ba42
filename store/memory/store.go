package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/w-h-a/insight/store"
)

type memoryStore struct {
	options       store.Options
	schemas       map[string]store.Schema
	analyses      map[string]store.Analysis
	insights      map[string][]store.Insight
	semanticIndex map[string]string
	queries       map[string]store.Query
	entries       map[string]string
	mtx           sync.RWMutex
}

func scopeKey(datasetID, version string) string {
	return datasetID + "|" + version
}

func (s *memoryStore) SaveSchema(ctx context.Context, schema store.Schema) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	key := scopeKey(schema.DatasetID, schema.Version)
	if _, exists := s.schemas[key]; exists {
		return nil
	}

	s.schemas[key] = schema

	return nil
}

func (s *memoryStore) GetSchema(ctx context.Context, datasetID string, version string) (*store.Schema, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	schema, exists := s.schemas[scopeKey(datasetID, version)]
	if !exists {
		return nil, nil
	}

	return &schema, nil
}

func (s *memoryStore) ListVersions(ctx context.Context, datasetID string) ([]string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	versions := []string{}
	for _, schema := range s.schemas {
		if schema.DatasetID == datasetID {
			versions = append(versions, schema.Version)
		}
	}

	sort.Strings(versions)

	return versions, nil
}

func (s *memoryStore) SaveAnalysis(ctx context.Context, analysis store.Analysis) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	key := scopeKey(analysis.DatasetID, analysis.Version)
	if _, exists := s.analyses[key]; exists {
		return nil
	}

	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now().UTC()
	}

	s.analyses[key] = analysis

	return nil
}

func (s *memoryStore) GetAnalysis(ctx context.Context, datasetID string, version string) (*store.Analysis, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	analysis, exists := s.analyses[scopeKey(datasetID, version)]
	if !exists {
		return nil, nil
	}

	return &analysis, nil
}

func (s *memoryStore) SaveInsight(ctx context.Context, insight store.Insight) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	key := scopeKey(insight.DatasetID, insight.SemanticHash)
	if _, exists := s.semanticIndex[key]; exists {
		return nil
	}

	if insight.CreatedAt.IsZero() {
		insight.CreatedAt = time.Now().UTC()
	}

	cpy := make([]float32, len(insight.Embedding))
	copy(cpy, insight.Embedding)
	insight.Embedding = cpy

	s.semanticIndex[key] = insight.ID
	s.insights[insight.DatasetID] = append(s.insights[insight.DatasetID], insight)

	return nil
}

func (s *memoryStore) InsightExists(ctx context.Context, datasetID string, semanticHash string) (bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	_, exists := s.semanticIndex[scopeKey(datasetID, semanticHash)]

	return exists, nil
}

func (s *memoryStore) ListInsights(ctx context.Context, datasetID string) ([]store.Insight, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	insights := s.insights[datasetID]

	cpy := make([]store.Insight, len(insights))
	copy(cpy, insights)

	return cpy, nil
}

func (s *memoryStore) SaveQuery(ctx context.Context, query store.Query) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	key := scopeKey(query.DatasetID, query.QueryHash)
	if _, exists := s.queries[key]; exists {
		return nil
	}

	if query.CreatedAt.IsZero() {
		query.CreatedAt = time.Now().UTC()
	}

	s.queries[key] = query

	return nil
}

func (s *memoryStore) GetQuery(ctx context.Context, datasetID string, queryHash string) (*store.Query, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	query, exists := s.queries[scopeKey(datasetID, queryHash)]
	if !exists {
		return nil, nil
	}

	return &query, nil
}

func (s *memoryStore) GetEntry(ctx context.Context, kind store.Kind, key string) (string, bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	value, exists := s.entries[string(kind)+"|"+key]

	return value, exists, nil
}

func (s *memoryStore) PutEntry(ctx context.Context, kind store.Kind, key string, value string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	entryKey := string(kind) + "|" + key
	if _, exists := s.entries[entryKey]; exists {
		return nil
	}

	s.entries[entryKey] = value

	return nil
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	s := &memoryStore{
		options:       options,
		schemas:       map[string]store.Schema{},
		analyses:      map[string]store.Analysis{},
		insights:      map[string][]store.Insight{},
		semanticIndex: map[string]string{},
		queries:       map[string]store.Query{},
		entries:       map[string]string{},
		mtx:           sync.RWMutex{},
	}

	return s
}
