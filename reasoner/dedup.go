package reasoner

import (
	"context"
	"log/slog"
	"strings"
)

// dedup walks candidates left to right and keeps the first representative of
// each semantic group. A candidate is discarded when its hash matches a prior
// insight or an earlier acceptance, or when its embedding sits within the
// similarity threshold of one. Accepted candidates keep their embeddings so
// later runs can compare against them without re-embedding.
func (r *Reasoner) dedup(ctx context.Context, candidates []Insight, existing []ExistingInsight) []Insight {
	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		if len(e.SemanticHash) > 0 {
			seen[e.SemanticHash] = struct{}{}
		}
	}

	candidateVecs, existingVecs := r.dedupEmbeddings(ctx, candidates, existing)

	accepted := make([]Insight, 0, len(candidates))
	acceptedVecs := make([][]float32, 0, len(candidates))

	for i, candidate := range candidates {
		if _, duplicate := seen[candidate.SemanticHash]; duplicate {
			continue
		}

		if candidateVecs != nil {
			vec := candidateVecs[i]

			if r.tooSimilar(vec, existingVecs) || r.tooSimilar(vec, acceptedVecs) {
				continue
			}

			candidate.Embedding = vec
			acceptedVecs = append(acceptedVecs, vec)
		}

		seen[candidate.SemanticHash] = struct{}{}
		accepted = append(accepted, candidate)
	}

	return accepted
}

func (r *Reasoner) tooSimilar(vec []float32, others [][]float32) bool {
	for _, other := range others {
		if CosineSimilarity(vec, other) >= r.options.SimilarityThreshold {
			return true
		}
	}
	return false
}

// dedupEmbeddings makes one batch call covering every candidate plus any
// prior insight that was stored without a vector. A failed or short batch
// downgrades this run to hash-only dedup.
func (r *Reasoner) dedupEmbeddings(ctx context.Context, candidates []Insight, existing []ExistingInsight) ([][]float32, [][]float32) {
	if r.options.Embedder == nil || len(candidates) == 0 {
		return nil, nil
	}

	texts := make([]string, 0, len(candidates)+len(existing))
	for _, c := range candidates {
		texts = append(texts, strings.TrimSpace(c.Title+" "+c.TechnicalSummary))
	}

	missing := []int{}
	for i, e := range existing {
		if len(e.Embedding) == 0 {
			missing = append(missing, i)
			texts = append(texts, e.Summary)
		}
	}

	vecs, err := r.options.Embedder.Embed(ctx, texts)
	if err != nil || len(vecs) != len(texts) {
		slog.WarnContext(ctx, "embedding dedup unavailable, falling back to hash dedup", "error", err)
		return nil, nil
	}

	existingVecs := make([][]float32, len(existing))
	for i, e := range existing {
		existingVecs[i] = e.Embedding
	}
	for j, idx := range missing {
		existingVecs[idx] = vecs[len(candidates)+j]
	}

	return vecs[:len(candidates)], existingVecs
}
