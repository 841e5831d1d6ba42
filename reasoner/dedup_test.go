package reasoner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDedupDropsHashMatchWithinBatch(t *testing.T) {
	llm := &stubCompleter{
		response: candidateJSON(
			`{"title":"Sales peak in Q4","technical_summary":"December orders dominate","confidence":0.8,"dedup_key":"Sales peak in Q4"}`,
			`{"title":"Q4 peak","technical_summary":"Same signal, other words","confidence":0.7,"dedup_key":"sales   peak in q4."}`,
		),
	}

	r := New(WithCompleter(llm))

	insights, err := r.SynthesizeInsights(context.Background(), SynthesizeRequest{DatasetID: "sales", Version: "v1"})
	require.NoError(t, err)
	require.Len(t, insights, 1)
	require.Equal(t, "Sales peak in Q4", insights[0].Title)
}

func TestDedupDropsHashMatchAgainstPriorInsights(t *testing.T) {
	llm := &stubCompleter{
		response: candidateJSON(
			`{"title":"Sales peak in Q4","technical_summary":"December orders dominate","confidence":0.8,"dedup_key":"Sales peak in Q4"}`,
		),
	}

	r := New(WithCompleter(llm))

	insights, err := r.SynthesizeInsights(context.Background(), SynthesizeRequest{
		DatasetID: "sales",
		Version:   "v2",
		Existing: []ExistingInsight{
			{Summary: "Sales peak in Q4: December orders dominate", SemanticHash: SemanticHash("Sales peak in Q4")},
		},
	})
	require.NoError(t, err)
	require.Empty(t, insights)
}

func TestDedupDropsNearDuplicateByEmbedding(t *testing.T) {
	llm := &stubCompleter{
		response: candidateJSON(
			`{"title":"December revenue spike","technical_summary":"orders cluster late in the year","confidence":0.8,"dedup_key":"december revenue spike"}`,
			`{"title":"Refund rate rising","technical_summary":"returns trend upward","confidence":0.6,"dedup_key":"refund rate rising"}`,
		),
	}

	emb := &stubEmbedder{
		vectors: map[string][]float32{
			"December revenue spike orders cluster late in the year": {0.99, 0.14},
			"Refund rate rising returns trend upward":                {0, 1},
			"Sales peak in Q4: December orders dominate":             {1, 0},
		},
	}

	r := New(WithCompleter(llm), WithEmbedder(emb))

	insights, err := r.SynthesizeInsights(context.Background(), SynthesizeRequest{
		DatasetID: "sales",
		Version:   "v2",
		Existing: []ExistingInsight{
			{Summary: "Sales peak in Q4: December orders dominate", SemanticHash: SemanticHash("Sales peak in Q4")},
		},
	})
	require.NoError(t, err)
	require.Len(t, insights, 1)
	require.Equal(t, "Refund rate rising", insights[0].Title)
	require.Equal(t, []float32{0, 1}, insights[0].Embedding)

	// one batch call covers candidates plus the prior summary with no vector
	require.Equal(t, 1, emb.calls)
}

func TestDedupUsesStoredEmbeddingsWithoutReembedding(t *testing.T) {
	llm := &stubCompleter{
		response: candidateJSON(
			`{"title":"Revenue grows","technical_summary":"10% YoY","confidence":0.8,"dedup_key":"revenue grows yoy"}`,
		),
	}

	emb := &stubEmbedder{
		vectors: map[string][]float32{
			"Revenue grows 10% YoY": {1, 0},
		},
	}

	r := New(WithCompleter(llm), WithEmbedder(emb))

	insights, err := r.SynthesizeInsights(context.Background(), SynthesizeRequest{
		DatasetID: "sales",
		Version:   "v2",
		Existing: []ExistingInsight{
			{Summary: "Revenue grows: annual growth", SemanticHash: SemanticHash("annual revenue growth"), Embedding: []float32{0.99, 0.14}},
		},
	})
	require.NoError(t, err)
	require.Empty(t, insights)
}

func TestDedupDropsNearDuplicateWithinBatch(t *testing.T) {
	llm := &stubCompleter{
		response: candidateJSON(
			`{"title":"Revenue grows","technical_summary":"10% YoY","confidence":0.8,"dedup_key":"revenue grows yoy"}`,
			`{"title":"Annual growth","technical_summary":"revenue up every year","confidence":0.7,"dedup_key":"annual revenue growth"}`,
		),
	}

	emb := &stubEmbedder{
		vectors: map[string][]float32{
			"Revenue grows 10% YoY":               {1, 0},
			"Annual growth revenue up every year": {0.99, 0.14},
		},
	}

	r := New(WithCompleter(llm), WithEmbedder(emb))

	insights, err := r.SynthesizeInsights(context.Background(), SynthesizeRequest{DatasetID: "sales", Version: "v1"})
	require.NoError(t, err)
	require.Len(t, insights, 1)
	require.Equal(t, "Revenue grows", insights[0].Title)
}

func TestDedupFallsBackToHashOnlyWhenEmbedFails(t *testing.T) {
	llm := &stubCompleter{
		response: candidateJSON(
			`{"title":"Revenue grows","technical_summary":"10% YoY","confidence":0.8,"dedup_key":"revenue grows yoy"}`,
			`{"title":"Annual growth","technical_summary":"revenue up every year","confidence":0.7,"dedup_key":"annual revenue growth"}`,
		),
	}

	emb := &stubEmbedder{err: errors.New("embedding upstream down")}

	r := New(WithCompleter(llm), WithEmbedder(emb))

	insights, err := r.SynthesizeInsights(context.Background(), SynthesizeRequest{DatasetID: "sales", Version: "v1"})
	require.NoError(t, err)
	require.Len(t, insights, 2)

	for _, insight := range insights {
		require.Empty(t, insight.Embedding)
	}
}

func TestDedupIdempotentAcrossRuns(t *testing.T) {
	response := candidateJSON(
		`{"title":"Sales peak in Q4","technical_summary":"December orders dominate","confidence":0.8,"dedup_key":"Sales peak in Q4"}`,
	)

	r := New(WithCompleter(&stubCompleter{response: response}))

	first, err := r.SynthesizeInsights(context.Background(), SynthesizeRequest{DatasetID: "sales", Version: "v1"})
	require.NoError(t, err)
	require.Len(t, first, 1)

	priors := []ExistingInsight{{Summary: first[0].Summary(), SemanticHash: first[0].SemanticHash}}

	second, err := r.SynthesizeInsights(context.Background(), SynthesizeRequest{DatasetID: "sales", Version: "v1", Existing: priors})
	require.NoError(t, err)
	require.Empty(t, second)
}
