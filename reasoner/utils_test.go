package reasoner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, "sales peak in q4", Normalize("  Sales   Peak in Q4. "))
	require.Equal(t, "year-over-year growth", Normalize("Year-over-year growth!"))
	require.Equal(t, "", Normalize("   "))
}

func TestSemanticHashStableAcrossPhrasing(t *testing.T) {
	a := SemanticHash("Sales peak in Q4")
	b := SemanticHash("sales   peak in q4.")

	require.Equal(t, a, b)
	require.Len(t, a, 64)

	require.NotEqual(t, a, SemanticHash("margins shrink in q1"))
}

func TestInsightIDDeterministic(t *testing.T) {
	hash := SemanticHash("sales peak in q4")

	a := InsightID("sales", "v1", hash)
	b := InsightID("sales", "v1", hash)

	require.Equal(t, a, b)
	require.Len(t, a, 16)

	require.NotEqual(t, a, InsightID("sales", "v2", hash))
	require.NotEqual(t, a, InsightID("revenue", "v1", hash))
}

func TestCosineSimilarity(t *testing.T) {
	require.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	require.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	require.Equal(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	require.Equal(t, 0.0, CosineSimilarity(nil, []float32{1}))
	require.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
