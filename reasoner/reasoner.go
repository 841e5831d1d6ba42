package reasoner

import (
	"context"
	"log/slog"
	"strings"

	getsafe "github.com/w-h-a/insight/util/get_safe"
)

// Insight is one synthesized, deduplicated finding.
type Insight struct {
	ID               string
	Title            string
	TechnicalSummary string
	BusinessImpact   string
	Confidence       float64
	SemanticHash     string
	Embedding        []float32
}

// Summary is the compact form passed back into later synthesis calls.
func (i Insight) Summary() string {
	technical := i.TechnicalSummary
	if len(technical) > 240 {
		technical = technical[:240]
	}
	return i.Title + ": " + technical
}

// ExistingInsight carries what prior runs already found. Embedding may be
// empty when the insight was stored without the embedding capability.
type ExistingInsight struct {
	Summary      string
	SemanticHash string
	Embedding    []float32
}

type SynthesizeRequest struct {
	DatasetID    string
	Version      string
	SchemaText   string
	AnalysisText string
	Existing     []ExistingInsight
}

type QueryRequest struct {
	DatasetID        string
	Version          string
	Question         string
	SchemaText       string
	AnalysisText     string
	InsightSummaries []string
}

// Reasoner turns compressed analytical artifacts into insights and answers.
// It never touches raw data and never computes statistics itself.
type Reasoner struct {
	options Options
}

// SynthesizeInsights makes one completion call from compressed context, then
// deduplicates the candidates against prior insights and each other.
func (r *Reasoner) SynthesizeInsights(ctx context.Context, req SynthesizeRequest) ([]Insight, error) {
	prompt := buildSynthesisPrompt(req, r.options.MaxNewInsights)
	prompt = r.maybeCompress(ctx, prompt)

	raw, err := r.options.Completer.Complete(ctx, prompt, r.options.Temperature)
	if err != nil {
		return nil, err
	}

	parsed := parseModelJSON(raw)
	items := getsafe.Maps(parsed, "insights")
	if len(items) > r.options.MaxNewInsights {
		items = items[:r.options.MaxNewInsights]
	}

	candidates := make([]Insight, 0, len(items))

	for _, item := range items {
		title := strings.TrimSpace(getsafe.String(item, "title"))

		dedupKey := strings.TrimSpace(getsafe.String(item, "dedup_key"))
		if len(dedupKey) == 0 {
			dedupKey = title
		}

		semanticHash := SemanticHash(dedupKey)

		candidates = append(candidates, Insight{
			ID:               InsightID(req.DatasetID, req.Version, semanticHash),
			Title:            title,
			TechnicalSummary: strings.TrimSpace(getsafe.String(item, "technical_summary")),
			BusinessImpact:   strings.TrimSpace(getsafe.String(item, "business_impact")),
			Confidence:       clamp01(getsafe.Float(item, "confidence", 0.5)),
			SemanticHash:     semanticHash,
		})
	}

	return r.dedup(ctx, candidates, req.Existing), nil
}

// AnswerQuery answers a natural-language question from compressed stored
// context only. When the model's output carries no parseable answer field,
// the trimmed raw text is returned so the response stays cacheable.
func (r *Reasoner) AnswerQuery(ctx context.Context, req QueryRequest) (string, error) {
	prompt := buildQueryPrompt(req)
	prompt = r.maybeCompress(ctx, prompt)

	raw, err := r.options.Completer.Complete(ctx, prompt, r.options.Temperature)
	if err != nil {
		return "", err
	}

	parsed := parseModelJSON(raw)

	if answer := strings.TrimSpace(getsafe.String(parsed, "answer")); len(answer) > 0 {
		return answer, nil
	}

	return strings.TrimSpace(raw), nil
}

func (r *Reasoner) maybeCompress(ctx context.Context, prompt string) string {
	if r.options.Compressor == nil {
		return prompt
	}

	compressed, err := r.options.Compressor.Compress(ctx, prompt)
	if err != nil {
		slog.WarnContext(ctx, "prompt compression failed, using original prompt", "error", err)
		return prompt
	}

	return compressed
}

func New(opts ...Option) *Reasoner {
	options := NewOptions(opts...)

	if options.Completer == nil {
		detail := "reasoner requires a completer"
		slog.ErrorContext(options.Context, detail)
		panic(detail)
	}

	return &Reasoner{
		options: options,
	}
}
