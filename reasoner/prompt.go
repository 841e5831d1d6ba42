package reasoner

import (
	"encoding/json"
	"fmt"
)

const systemRules = `You are an expert data analyst.
You must ONLY use the provided context. Do not invent data.
Do NOT compute statistics. Treat all numbers in the context as given.
Return valid JSON only, with no markdown, no commentary.`

const (
	maxExistingInSynthesis = 50
	maxInsightsInQuery     = 80
)

type constraints struct {
	MaxNewInsights    int  `json:"max_new_insights"`
	NoNewStatistics   bool `json:"no_new_statistics"`
	NoDataframeAccess bool `json:"no_dataframe_access"`
}

type synthesisPayload struct {
	DatasetID        string      `json:"dataset_id"`
	Version          string      `json:"version"`
	Schema           string      `json:"schema"`
	Analysis         string      `json:"analysis"`
	ExistingInsights []string    `json:"existing_insights"`
	Constraints      constraints `json:"constraints"`
}

type queryPayload struct {
	DatasetID string   `json:"dataset_id"`
	Version   string   `json:"version"`
	Question  string   `json:"question"`
	Schema    string   `json:"schema"`
	Analysis  string   `json:"analysis"`
	Insights  []string `json:"insights"`
}

func buildSynthesisPrompt(req SynthesizeRequest, maxNewInsights int) string {
	existing := make([]string, 0, maxExistingInSynthesis)
	for _, e := range req.Existing {
		if len(existing) == maxExistingInSynthesis {
			break
		}
		existing = append(existing, e.Summary)
	}

	payload, _ := json.Marshal(synthesisPayload{
		DatasetID:        req.DatasetID,
		Version:          req.Version,
		Schema:           req.SchemaText,
		Analysis:         req.AnalysisText,
		ExistingInsights: existing,
		Constraints: constraints{
			MaxNewInsights:    maxNewInsights,
			NoNewStatistics:   true,
			NoDataframeAccess: true,
		},
	})

	return fmt.Sprintf(`%s

Task:
Synthesize up to %d non-redundant insights by combining multiple signals when appropriate.

Each insight must include:
- title: short, specific
- technical_summary: explain signals and how they connect
- business_impact: why it matters in business terms (no made-up metrics)
- confidence: float 0..1 based on support/consistency/strength in provided signals
- dedup_key: a short normalized phrase capturing the semantic core (used for semantic hashing)

Avoid duplicates vs existing_insights. Deduplicate semantically (not string equality).

Return JSON in this exact shape:
{"insights":[{"title":..., "technical_summary":..., "business_impact":..., "confidence":..., "dedup_key":...}, ...]}

Context (JSON):
%s
`, systemRules, maxNewInsights, payload)
}

func buildQueryPrompt(req QueryRequest) string {
	insights := make([]string, 0, maxInsightsInQuery)
	for _, s := range req.InsightSummaries {
		if len(insights) == maxInsightsInQuery {
			break
		}
		insights = append(insights, s)
	}

	payload, _ := json.Marshal(queryPayload{
		DatasetID: req.DatasetID,
		Version:   req.Version,
		Question:  req.Question,
		Schema:    req.SchemaText,
		Analysis:  req.AnalysisText,
		Insights:  insights,
	})

	return fmt.Sprintf(`%s

Task:
Answer the user's question using ONLY the provided context.
If the context is insufficient, say what is missing and suggest the minimum additional analysis needed.
Do NOT compute new statistics or invent values.

Return JSON in this shape:
{"answer":string,"used":["schema"|"analysis"|"insights"],"limitations":string}

Context (JSON):
%s
`, systemRules, payload)
}
